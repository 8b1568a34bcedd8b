package config

import "sort"

// Presets are ready-made experiments keyed by name.
var Presets = map[string]func() *Config{
	// The reference setup: 1-40-40-1 network, 100 points, L-BFGS.
	"reference": DefaultConfig,
	"sgd": func() *Config {
		cfg := DefaultConfig()
		cfg.Optimizer = OptimizerConfig{Name: "sgd", Params: map[string]float64{"lr": 1e-4, "momentum": 0.9}}
		cfg.Training.Epochs = 5000
		cfg.Training.LogEvery = 500
		return cfg
	},
	"adam": func() *Config {
		cfg := DefaultConfig()
		cfg.Optimizer = OptimizerConfig{Name: "adam", Params: map[string]float64{"lr": 1e-3}}
		cfg.Training.Epochs = 5000
		cfg.Training.LogEvery = 500
		return cfg
	},
	"small": func() *Config {
		cfg := DefaultConfig()
		cfg.Network.Hidden = []int{16, 16}
		cfg.Sampling.Points = 40
		cfg.Training.Epochs = 30
		return cfg
	},
	"high-frequency": func() *Config {
		cfg := DefaultConfig()
		cfg.Load.Params = map[string]float64{"amplitude": 0.25, "frequency": 2}
		cfg.Network.Hidden = []int{50, 50, 50}
		cfg.Sampling.Points = 200
		cfg.Training.Epochs = 100
		return cfg
	},
	"uniform": func() *Config {
		cfg := DefaultConfig()
		cfg.Bar = BarConfig{E: 1, A: 1, L: 2, U0: 0.5, UL: 0}
		cfg.Load = LoadConfig{Type: "uniform", Params: map[string]float64{"q0": 1}}
		return cfg
	},
}

func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
