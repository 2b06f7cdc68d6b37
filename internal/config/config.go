package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Discord
	DiscordToken string
	ChannelID    string

	// start.gg API
	StartggEndpoint string
	StartggToken    string
	TournamentSlug  string

	// Scoring
	MaxScore  int // per-side score range for the button grid, 0..MaxScore
	StreamMax int // stations 2..StreamMax get the sub-stream label

	// Timing
	PollInterval  time.Duration
	RemoteTimeout time.Duration

	// Rendering
	StationLabelsPath string

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DiscordToken: envStr("DISCORD_BOT_TOKEN", ""),
		ChannelID:    envStr("DISCORD_CHANNEL_ID", ""),

		StartggEndpoint: envStr("STARTGG_ENDPOINT", "https://api.start.gg/gql/alpha"),
		StartggToken:    envStr("STARTGG_API_TOKEN", ""),
		TournamentSlug:  envStr("TOURNAMENT_SLUG", ""),

		MaxScore:  envInt("MAX_SCORE", 3),
		StreamMax: envInt("STREAM_NUMBER", 1),

		PollInterval:  time.Duration(envInt("POLL_INTERVAL_SEC", 2)) * time.Second,
		RemoteTimeout: time.Duration(envInt("REMOTE_TIMEOUT_SEC", 10)) * time.Second,

		StationLabelsPath: envStr("STATION_LABELS_PATH", ""),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	required := []struct {
		key, val string
	}{
		{"DISCORD_BOT_TOKEN", c.DiscordToken},
		{"DISCORD_CHANNEL_ID", c.ChannelID},
		{"STARTGG_API_TOKEN", c.StartggToken},
		{"TOURNAMENT_SLUG", c.TournamentSlug},
	}
	for _, r := range required {
		if r.val == "" {
			return fmt.Errorf("missing required env var %s", r.key)
		}
	}
	// A button row holds five buttons, so the 0..MaxScore grid caps at 4.
	if c.MaxScore < 1 || c.MaxScore > 4 {
		return fmt.Errorf("MAX_SCORE must be between 1 and 4, got %d", c.MaxScore)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
