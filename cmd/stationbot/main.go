package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"stationbot/internal/adapters/inbound/discord_gateway"
	"stationbot/internal/adapters/outbound/startgg_gql"
	"stationbot/internal/config"
	"stationbot/internal/core/bracket"
	"stationbot/internal/core/reconcile"
	"stationbot/internal/core/session"
	"stationbot/internal/events"
	"stationbot/internal/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))
	telemetry.Infof("Starting stationbot for tournament %q", cfg.TournamentSlug)

	if err := cfg.Validate(); err != nil {
		telemetry.Errorf("Config: %v", err)
		os.Exit(1)
	}

	labels, err := config.LoadStationLabels(cfg.StationLabelsPath)
	if err != nil {
		telemetry.Warnf("Station labels: %v (using defaults)", err)
	}

	bus := events.NewBus()
	registry := session.NewRegistry()
	cache := bracket.NewStationCache()

	// ── start.gg client ────────────────────────────────────────
	startgg := startgg_gql.NewClient(cfg.StartggEndpoint, cfg.StartggToken)

	// ── Discord gateway ────────────────────────────────────────
	gateway, err := discord_gateway.New(cfg.DiscordToken, cfg.ChannelID, cfg.TournamentSlug, bus, startgg, cfg.RemoteTimeout)
	if err != nil {
		telemetry.Errorf("Discord: %v", err)
		os.Exit(1)
	}
	if err := gateway.Open(); err != nil {
		telemetry.Errorf("Discord: %v", err)
		os.Exit(1)
	}
	defer gateway.Close()

	// ── Reconcile engine ───────────────────────────────────────
	engine := reconcile.NewEngine(startgg, gateway, startgg, registry, cache, bus, reconcile.Options{
		Slug:          cfg.TournamentSlug,
		MaxScore:      cfg.MaxScore,
		StreamMax:     cfg.StreamMax,
		Labels:        labels,
		PollInterval:  cfg.PollInterval,
		RemoteTimeout: cfg.RemoteTimeout,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	telemetry.Infof("Polling every %s, announcing to channel %s", cfg.PollInterval, cfg.ChannelID)

	// ── Shutdown ───────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	telemetry.Infof("Shutting down...")
	cancel()

	telemetry.Infof("Shutdown complete  polls=%d  announces=%d  reports=%d  staff_finalizes=%d  errors=%d",
		telemetry.Metrics.PollsCompleted.Value(),
		telemetry.Metrics.Announcements.Value(),
		telemetry.Metrics.ReportsSubmitted.Value(),
		telemetry.Metrics.ExternalFinalizes.Value(),
		telemetry.Metrics.PollErrors.Value(),
	)
}
