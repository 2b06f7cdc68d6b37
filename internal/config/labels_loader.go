package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StationLabels controls how station lines are worded. The formats are
// fmt templates receiving the station number.
type StationLabels struct {
	MainStream string `yaml:"main_stream"`
	SubStream  string `yaml:"sub_stream"`
	Standard   string `yaml:"standard"`
}

// DefaultStationLabels mirrors the venue wording the bot shipped with.
func DefaultStationLabels() StationLabels {
	return StationLabels{
		MainStream: "🖥️ **Station %d** 🎥**Main Stream**",
		SubStream:  "🖥️ **Station %d** 🎥**Sub Stream**",
		Standard:   "🖥️ **Station %d**",
	}
}

// LoadStationLabels reads a YAML label table, falling back to defaults for
// any field the file leaves empty. An empty path returns the defaults.
func LoadStationLabels(path string) (StationLabels, error) {
	labels := DefaultStationLabels()
	if path == "" {
		return labels, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return labels, fmt.Errorf("read station labels: %w", err)
	}

	var loaded StationLabels
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return labels, fmt.Errorf("parse station labels: %w", err)
	}

	if loaded.MainStream != "" {
		labels.MainStream = loaded.MainStream
	}
	if loaded.SubStream != "" {
		labels.SubStream = loaded.SubStream
	}
	if loaded.Standard != "" {
		labels.Standard = loaded.Standard
	}
	return labels, nil
}
