package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/pinnbar/internal/config"
	"github.com/san-kum/pinnbar/internal/experiment"
	"github.com/san-kum/pinnbar/internal/nn"
	"github.com/san-kum/pinnbar/internal/train"
)

// Scenario is a scripted sequence of training runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (default config when empty), optionally
// swaps the load or optimizer, then applies sweep-style numeric overrides.
type ScenarioStep struct {
	Name      string             `yaml:"name"`
	Preset    string             `yaml:"preset"`
	Load      string             `yaml:"load"`
	LoadArgs  map[string]float64 `yaml:"load_params"`
	Optimizer string             `yaml:"optimizer"`
	Params    map[string]float64 `yaml:"params"`
}

// StepResult is the outcome of one scenario step.
type StepResult struct {
	Name   string
	Config *config.Config
	Result *train.Result
	Net    *nn.Network
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Config builds the run configuration of a step.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", s.Preset, config.ListPresets())
		}
	}
	if s.Load != "" {
		cfg.Load = config.LoadConfig{Type: s.Load}
	}
	if len(s.LoadArgs) > 0 {
		if cfg.Load.Params == nil {
			cfg.Load.Params = make(map[string]float64, len(s.LoadArgs))
		}
		for k, v := range s.LoadArgs {
			cfg.Load.Params[k] = v
		}
	}
	if s.Optimizer != "" {
		cfg.Optimizer = config.OptimizerConfig{Name: s.Optimizer}
	}
	for name, v := range s.Params {
		if err := experiment.ApplyParam(cfg, name, v); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

// RunScenario executes every step in order and stops at the first failure,
// returning the results gathered so far.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, log logrus.FieldLogger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", scenario.Name, i+1)
		}
		stepLog := log.WithFields(logrus.Fields{"step": i + 1, "name": name})
		stepLog.Infof("running step %d/%d", i+1, len(scenario.Steps))

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := experiment.New(cfg, registry, stepLog)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{
			Name:   name,
			Config: cfg,
			Result: result,
			Net:    exp.Model().Net,
		})
	}

	return results, nil
}
