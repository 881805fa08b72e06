// Package config holds the process-wide, immutable configuration for
// the fingerprinting pipeline and its CLI tooling.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is constructed once at startup and never mutated afterwards.
// Every numeric default mirrors the reference implementation this
// pipeline was distilled from.
type Config struct {
	// Live-capture tuning (capture.Source collaborator only).
	BufferSize      int `yaml:"buffer_size"`
	SampleRate      int `yaml:"sample_rate"`
	TargetSampleRate int `yaml:"target_sample_rate"`
	AudioDeviceIndex int `yaml:"audio_device_index"`

	// Signal processor.
	SilenceThreshold float64 `yaml:"silence_threshold"`
	NoiseFloorDB     float64 `yaml:"noise_floor_db"`
	STFTWindowSize   int     `yaml:"stft_window_size"`
	STFTHopSize      int     `yaml:"stft_hop_size"`
	NeighborhoodSize int     `yaml:"neighborhood_size"`
	PeakThresholdDB  float64 `yaml:"peak_threshold_db"`

	// Fingerprint builder.
	FanValue     int `yaml:"fan_value"`
	MinTimeDelta int `yaml:"min_time_delta"`
	MaxTimeDelta int `yaml:"max_time_delta"`

	// Matcher.
	MinMatchConfidence float64 `yaml:"min_match_confidence"`
	MinAbsoluteMatches int     `yaml:"min_absolute_matches"`

	// Catalog store.
	DBPath     string `yaml:"db_path"`
	DBMaxConns int    `yaml:"db_max_conns"`

	// Ingestion.
	MusicLibrary string `yaml:"music_library"`

	// Ambient / logging, not a domain concern but part of the frozen
	// struct so the whole process is configured from one file.
	LogLevel string `yaml:"log_level"`
}

// Default returns a Config populated with the reference defaults.
func Default() Config {
	return Config{
		BufferSize:       2048,
		SampleRate:       44100,
		TargetSampleRate: 44100,
		AudioDeviceIndex: -1,

		SilenceThreshold: 0.001,
		NoiseFloorDB:     -60,
		STFTWindowSize:   2048,
		STFTHopSize:      512,
		NeighborhoodSize: 20,
		PeakThresholdDB:  -60,

		FanValue:     15,
		MinTimeDelta: 0,
		MaxTimeDelta: 200,

		MinMatchConfidence: 0.1,
		MinAbsoluteMatches: 5,

		DBMaxConns: 10,

		LogLevel: "info",
	}
}

// Load reads a YAML config file at path and overlays it onto the
// reference defaults. A missing file is not an error: the defaults
// alone are a valid configuration.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %q: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Validate rejects configurations that would make the pipeline
// produce meaningless results.
func (c Config) Validate() error {
	if c.STFTWindowSize <= 0 || c.STFTHopSize <= 0 {
		return fmt.Errorf("config: stft window/hop size must be positive")
	}
	if c.NeighborhoodSize < 0 {
		return fmt.Errorf("config: neighborhood_size must be >= 0")
	}
	if c.FanValue <= 0 {
		return fmt.Errorf("config: fan_value must be positive")
	}
	if c.MaxTimeDelta < c.MinTimeDelta {
		return fmt.Errorf("config: max_time_delta must be >= min_time_delta")
	}
	if c.MinMatchConfidence < 0 || c.MinMatchConfidence > 1 {
		return fmt.Errorf("config: min_match_confidence must be in [0,1]")
	}
	return nil
}
