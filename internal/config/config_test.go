package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Pipeline.SampleRate != 16000 || cfg.Pipeline.WindowSize != 512 {
		t.Fatalf("unexpected pipeline defaults: %+v", cfg.Pipeline)
	}
	if cfg.STT.Mode != "mock" {
		t.Fatalf("expected mock recognizer by default, got %q", cfg.STT.Mode)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxd.yaml")
	body := `
pipeline:
  sample_rate: 8000
  window_size: 256
stt:
  mode: exec
  command: "whisper-cli --fast"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Pipeline.SampleRate != 8000 || cfg.Pipeline.WindowSize != 256 {
		t.Fatalf("yaml values not applied: %+v", cfg.Pipeline)
	}
	if cfg.STT.Command != "whisper-cli --fast" {
		t.Fatalf("stt command not applied: %q", cfg.STT.Command)
	}
	if cfg.HTTP.Port != 8080 {
		t.Fatalf("unset fields should keep defaults, got %d", cfg.HTTP.Port)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VOXD_PIPELINE_WINDOW_SIZE", "1024")
	t.Setenv("VOXD_PIPELINE_SPEECH_THRESHOLD", "0.7")
	t.Setenv("VOXD_BUS_SERVERS", "nats://a:4222, nats://b:4222")
	t.Setenv("VOXD_STORE_ENABLED", "false")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Pipeline.WindowSize != 1024 {
		t.Fatalf("int override not applied: %d", cfg.Pipeline.WindowSize)
	}
	if cfg.Pipeline.SpeechThreshold != 0.7 {
		t.Fatalf("float override not applied: %f", cfg.Pipeline.SpeechThreshold)
	}
	if len(cfg.Bus.Servers) != 2 || cfg.Bus.Servers[1] != "nats://b:4222" {
		t.Fatalf("slice override not applied: %v", cfg.Bus.Servers)
	}
	if cfg.Store.Enabled {
		t.Fatalf("bool override not applied")
	}
}

func TestValidateRejectsBadWindowGeometry(t *testing.T) {
	t.Setenv("VOXD_PIPELINE_WINDOW_SIZE", "500")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected window size validation error")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"threshold out of range": func(c *Config) { c.Pipeline.SpeechThreshold = 1.5 },
		"min silence zero":       func(c *Config) { c.Pipeline.MinSilenceMS = 0 },
		"cap below min speech":   func(c *Config) { c.Pipeline.MaxSpeechMS = c.Pipeline.MinSpeechMS },
		"parallelism zero":       func(c *Config) { c.Pipeline.MaxParallelTranscriptions = 0 },
		"unknown stt mode":       func(c *Config) { c.STT.Mode = "cloud" },
		"exec without command":   func(c *Config) { c.STT.Mode = "exec" },
		"whisper without model":  func(c *Config) { c.STT.Mode = "whisper" },
		"bad retention mode":     func(c *Config) { c.Store.RetentionMode = "forever" },
		"empty runtime name":     func(c *Config) { c.RuntimeName = "" },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := validate(cfg); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
