package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pinnbar/internal/nn"
	"github.com/san-kum/pinnbar/internal/optim"
	"github.com/san-kum/pinnbar/internal/physics"
	"github.com/san-kum/pinnbar/internal/train"
)

const (
	DefaultPoints    = 100
	DefaultOptimizer = "lbfgs"
	DefaultLoad      = "sinusoidal"
	DefaultLogLevel  = "info"
)

type Config struct {
	Bar       BarConfig       `yaml:"bar"`
	Load      LoadConfig      `yaml:"load"`
	Network   NetworkConfig   `yaml:"network"`
	Sampling  SamplingConfig  `yaml:"sampling"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Training  TrainingConfig  `yaml:"training"`
	Seed      int64           `yaml:"seed"`
	LogLevel  string          `yaml:"log_level"`
}

type BarConfig struct {
	E  float64 `yaml:"E"`
	A  float64 `yaml:"A"`
	L  float64 `yaml:"L"`
	U0 float64 `yaml:"u0"`
	UL float64 `yaml:"uL"`
}

type LoadConfig struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params"`
}

type NetworkConfig struct {
	Hidden []int `yaml:"hidden"`
}

type SamplingConfig struct {
	Points   int    `yaml:"points"`
	Strategy string `yaml:"strategy"`
}

type OptimizerConfig struct {
	Name   string             `yaml:"name"`
	Params map[string]float64 `yaml:"params"`
}

type TrainingConfig struct {
	Epochs     int     `yaml:"epochs"`
	LogEvery   int     `yaml:"log_every"`
	Tolerance  float64 `yaml:"tolerance"`
	EvalPoints int     `yaml:"eval_points"`
	WeightPDE  float64 `yaml:"weight_pde"`
	WeightBC   float64 `yaml:"weight_bc"`
}

func DefaultConfig() *Config {
	return &Config{
		Bar: BarConfig{
			E: physics.DefaultYoungsModulus,
			A: physics.DefaultArea,
			L: physics.DefaultLength,
		},
		Load: LoadConfig{
			Type:   DefaultLoad,
			Params: map[string]float64{"amplitude": 1, "frequency": 1},
		},
		Network: NetworkConfig{
			Hidden: append([]int(nil), nn.DefaultHidden...),
		},
		Sampling: SamplingConfig{
			Points:   DefaultPoints,
			Strategy: physics.SamplingLinspace,
		},
		Optimizer: OptimizerConfig{
			Name:   DefaultOptimizer,
			Params: map[string]float64{"max_iter": optim.DefaultLBFGSIter},
		},
		Training: TrainingConfig{
			Epochs:     train.DefaultEpochs,
			LogEvery:   train.DefaultLogEvery,
			EvalPoints: train.DefaultEvalPoints,
			WeightPDE:  1,
			WeightBC:   1,
		},
		LogLevel: DefaultLogLevel,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	out := *c
	out.Load.Params = cloneParams(c.Load.Params)
	out.Optimizer.Params = cloneParams(c.Optimizer.Params)
	out.Network.Hidden = append([]int(nil), c.Network.Hidden...)
	return &out
}

func cloneParams(p map[string]float64) map[string]float64 {
	if p == nil {
		return nil
	}
	out := make(map[string]float64, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func (c *Config) GetBar() *physics.Bar {
	return &physics.Bar{E: c.Bar.E, A: c.Bar.A, L: c.Bar.L, U0: c.Bar.U0, UL: c.Bar.UL}
}

func (c *Config) GetTrainConfig() train.Config {
	return train.Config{
		Epochs:     c.Training.Epochs,
		LogEvery:   c.Training.LogEvery,
		Tolerance:  c.Training.Tolerance,
		EvalPoints: c.Training.EvalPoints,
	}
}

func (c *Config) Validate() error {
	if err := c.GetBar().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Sampling.Points < 2 {
		return fmt.Errorf("%w: sampling.points must be at least 2, got %d", ErrInvalidConfig, c.Sampling.Points)
	}
	switch c.Sampling.Strategy {
	case "", physics.SamplingLinspace, physics.SamplingRandom:
	default:
		return fmt.Errorf("%w: unknown sampling strategy %q", ErrInvalidConfig, c.Sampling.Strategy)
	}
	if len(c.Network.Hidden) == 0 {
		return fmt.Errorf("%w: network needs at least one hidden layer", ErrInvalidConfig)
	}
	for _, h := range c.Network.Hidden {
		if h <= 0 {
			return fmt.Errorf("%w: hidden layer width must be positive, got %d", ErrInvalidConfig, h)
		}
	}
	if c.Training.Epochs <= 0 {
		return fmt.Errorf("%w: training.epochs must be positive, got %d", ErrInvalidConfig, c.Training.Epochs)
	}
	if c.Training.WeightPDE < 0 || c.Training.WeightBC < 0 {
		return fmt.Errorf("%w: loss weights must be non-negative", ErrInvalidConfig)
	}
	if c.Training.WeightPDE == 0 && c.Training.WeightBC == 0 {
		return fmt.Errorf("%w: at least one loss weight must be positive", ErrInvalidConfig)
	}
	if _, err := physics.NewLoad(c.Load.Type, c.Load.Params); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := optim.New(c.Optimizer.Name, c.Optimizer.Params); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
