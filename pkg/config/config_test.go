package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Threshold != 5 {
		t.Errorf("Threshold = %d, want 5", cfg.Threshold)
	}
	if cfg.Format != "webp" {
		t.Errorf("Format = %s, want webp", cfg.Format)
	}
	if !cfg.MPDecimate {
		t.Error("MPDecimate should default to true")
	}
	if cfg.Mode != "vfr" {
		t.Errorf("Mode = %s, want vfr", cfg.Mode)
	}
	if cfg.Codec.Codec != "libx264" || cfg.Codec.CRF != 23 || cfg.Codec.Preset != "medium" {
		t.Errorf("unexpected encode defaults: %+v", cfg.Codec)
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
threshold: 8
format: png
mode: cfr
fps: 10
encode:
  codec: libx265
  crf: 28
audio_codec: aac
log_level: debug
debug: true
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Threshold != 8 {
		t.Errorf("Threshold = %d, want 8", cfg.Threshold)
	}
	if cfg.Format != "png" {
		t.Errorf("Format = %s, want png", cfg.Format)
	}
	if cfg.Mode != "cfr" || cfg.FPS != 10 {
		t.Errorf("mode/fps = %s/%g", cfg.Mode, cfg.FPS)
	}
	if cfg.Codec.Codec != "libx265" || cfg.Codec.CRF != 28 {
		t.Errorf("encode = %+v", cfg.Codec)
	}
	// Unset keys keep their defaults.
	if cfg.Codec.Preset != "medium" {
		t.Errorf("Preset = %q, want default medium", cfg.Codec.Preset)
	}
	if cfg.AudioCodec != "aac" {
		t.Errorf("AudioCodec = %s", cfg.AudioCodec)
	}
	if cfg.LogLevel != "debug" || !cfg.Debug {
		t.Errorf("log_level/debug = %s/%v", cfg.LogLevel, cfg.Debug)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("threshold: [not a number"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}
