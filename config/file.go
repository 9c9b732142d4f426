package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FeedConfig names one RSS or Atom feed to aggregate alongside the HTML
// sources.
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// FileConfig is the structure of the optional config.yaml: relevance
// keywords, extra feeds, and pipeline pacing.
type FileConfig struct {
	Keywords    []string     `yaml:"keywords"`
	Feeds       []FeedConfig `yaml:"feeds"`
	SourcePause string       `yaml:"source_pause"`
}

// Pause parses the configured inter-source pause. Unset or malformed values
// yield (0, false) so the caller keeps its default.
func (fc *FileConfig) Pause() (time.Duration, bool) {
	if fc == nil || fc.SourcePause == "" {
		return 0, false
	}
	d, err := time.ParseDuration(fc.SourcePause)
	if err != nil || d < 0 {
		return 0, false
	}
	return d, true
}

// LoadFile loads the YAML config from path. Returns nil if the file doesn't
// exist (not an error). Returns an error if the file exists but cannot be
// parsed.
func LoadFile(path string) (*FileConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	for _, feed := range cfg.Feeds {
		if feed.Name == "" || feed.URL == "" {
			return nil, fmt.Errorf("config file feeds require both name and url")
		}
	}

	return &cfg, nil
}
