// Package config provides configuration loading and management.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the full configuration for compression-suite. CLI
// flags override values loaded from a file.
type Config struct {
	// Extraction
	Threshold  int    `yaml:"threshold"`
	Format     string `yaml:"format"` // webp or png
	MPDecimate bool   `yaml:"mpdecimate"`

	// Reconstruction
	Mode string  `yaml:"mode"` // vfr or cfr
	FPS  float64 `yaml:"fps"`

	// Encoding
	Codec        EncodeConfig `yaml:"encode"`
	AudioCodec   string       `yaml:"audio_codec"`
	AudioBitrate string       `yaml:"audio_bitrate"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// EncodeConfig represents video encoder settings.
type EncodeConfig struct {
	Codec  string `yaml:"codec"`
	CRF    int    `yaml:"crf"`
	Preset string `yaml:"preset"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		// Extraction
		Threshold:  5,
		Format:     "webp",
		MPDecimate: true,

		// Reconstruction
		Mode: "vfr",

		// Encoding
		Codec: EncodeConfig{
			Codec:  "libx264",
			CRF:    23,
			Preset: "medium",
		},

		// Logging
		LogLevel: "info",

		// Debug
		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
