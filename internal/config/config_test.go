package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Bar.E != 1 || cfg.Bar.A != 1 || cfg.Bar.L != 1 {
		t.Errorf("unexpected bar defaults: %+v", cfg.Bar)
	}
	if len(cfg.Network.Hidden) != 2 || cfg.Network.Hidden[0] != 40 {
		t.Errorf("expected hidden [40 40], got %v", cfg.Network.Hidden)
	}
	if cfg.Optimizer.Name != "lbfgs" {
		t.Errorf("expected lbfgs, got %s", cfg.Optimizer.Name)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bar.yaml")
	data := []byte(`
bar:
  E: 200
  A: 0.01
  L: 2
  u0: 0.1
load:
  type: uniform
  params:
    q0: 3
optimizer:
  name: adam
  params:
    lr: 0.01
training:
  epochs: 7
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Bar.E != 200 || cfg.Bar.L != 2 || cfg.Bar.U0 != 0.1 {
		t.Errorf("bar not loaded: %+v", cfg.Bar)
	}
	if cfg.Load.Type != "uniform" || cfg.Load.Params["q0"] != 3 {
		t.Errorf("load not loaded: %+v", cfg.Load)
	}
	if cfg.Training.Epochs != 7 {
		t.Errorf("expected 7 epochs, got %d", cfg.Training.Epochs)
	}
	if cfg.Sampling.Points != DefaultPoints {
		t.Errorf("expected default points to survive, got %d", cfg.Sampling.Points)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config invalid: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	cfg := GetPreset("high-frequency")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Load.Params["frequency"] != 2 || len(loaded.Network.Hidden) != 3 {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero E", func(c *Config) { c.Bar.E = 0 }},
		{"one point", func(c *Config) { c.Sampling.Points = 1 }},
		{"bad strategy", func(c *Config) { c.Sampling.Strategy = "grid" }},
		{"no hidden", func(c *Config) { c.Network.Hidden = nil }},
		{"zero width", func(c *Config) { c.Network.Hidden = []int{10, 0} }},
		{"zero epochs", func(c *Config) { c.Training.Epochs = 0 }},
		{"negative weight", func(c *Config) { c.Training.WeightBC = -1 }},
		{"zero weights", func(c *Config) { c.Training.WeightPDE, c.Training.WeightBC = 0, 0 }},
		{"zero lr", func(c *Config) {
			c.Optimizer = OptimizerConfig{Name: "adam", Params: map[string]float64{"lr": 0}}
		}},
		{"unknown load", func(c *Config) { c.Load.Type = "point" }},
		{"unknown optimizer", func(c *Config) { c.Optimizer.Name = "newton" }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	cfg := DefaultConfig()
	c := cfg.Clone()
	c.Load.Params["amplitude"] = 5
	c.Network.Hidden[0] = 3
	c.Optimizer.Params["max_iter"] = 1

	if cfg.Load.Params["amplitude"] != 1 || cfg.Network.Hidden[0] != 40 || cfg.Optimizer.Params["max_iter"] == 1 {
		t.Error("clone shares state with original")
	}
}

func TestPresets(t *testing.T) {
	names := ListPresets()
	if len(names) == 0 {
		t.Fatal("expected presets")
	}
	for _, name := range names {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("preset %s is nil", name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}

	a, b := GetPreset("sgd"), GetPreset("sgd")
	a.Training.Epochs = 1
	if b.Training.Epochs == 1 {
		t.Error("presets must return fresh configs")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"INFO", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"", logrus.InfoLevel},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.input)
		if err != nil || got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, %v; want %v", tt.input, got, err, tt.want)
		}
	}
	if _, err := ParseLogLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
