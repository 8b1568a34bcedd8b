package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/pinnbar/internal/config"
	"github.com/san-kum/pinnbar/internal/nn"
)

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Network.Hidden = []int{8, 8}
	cfg.Sampling.Points = 20
	cfg.Optimizer = config.OptimizerConfig{Name: "adam", Params: map[string]float64{"lr": 5e-3}}
	cfg.Training.Epochs = 20
	cfg.Training.EvalPoints = 21
	cfg.Seed = 5
	return cfg
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	if _, err := r.GetLoad("sinusoidal", nil); err != nil {
		t.Errorf("expected sinusoidal load: %v", err)
	}
	if _, err := r.GetLoad("point", nil); err == nil {
		t.Error("expected error for unknown load")
	}
	if _, err := r.GetOptimizer("lbfgs", nil); err != nil {
		t.Errorf("expected lbfgs optimizer: %v", err)
	}
	if _, err := r.GetOptimizer("newton", nil); err == nil {
		t.Error("expected error for unknown optimizer")
	}
	if len(r.DefaultMetrics()) != 3 {
		t.Errorf("expected 3 default metrics, got %d", len(r.DefaultMetrics()))
	}
}

func TestExperimentRun(t *testing.T) {
	exp, err := New(smallConfig(), NewRegistry(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Epochs != 20 || len(res.History) != 20 {
		t.Errorf("expected 20 epochs, got %d (history %d)", res.Epochs, len(res.History))
	}
	for _, key := range []string{"best_loss", "loss_reduction", "bc_share", "rel_l2"} {
		if _, ok := res.Metrics[key]; !ok {
			t.Errorf("missing metric %s", key)
		}
	}
}

func TestExperimentDeterministic(t *testing.T) {
	a, err := New(smallConfig(), NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(smallConfig(), NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if a.Model().Net.Forward(0.4) != b.Model().Net.Forward(0.4) {
		t.Error("same seed produced different networks")
	}
}

func TestExperimentRejectsInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Bar.A = 0
	if _, err := New(cfg, NewRegistry(), nil); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestExperimentRestore(t *testing.T) {
	exp, err := New(smallConfig(), NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}

	saved := exp.Model().Net.Clone()
	saved.Params()[0] += 0.5
	if err := exp.Restore(saved); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if exp.Model().Net.Forward(0.2) != saved.Forward(0.2) {
		t.Error("restore did not copy weights")
	}

	other := smallConfig()
	other.Network.Hidden = []int{3}
	mismatched, err := New(other, NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := exp.Restore(mismatched.Model().Net); !errors.Is(err, nn.ErrInvalidShape) {
		t.Errorf("expected ErrInvalidShape, got %v", err)
	}
}

func TestParseRange(t *testing.T) {
	name, vals, err := ParseRange("lr=1e-3, 1e-2,0.1")
	if err != nil {
		t.Fatalf("ParseRange failed: %v", err)
	}
	if name != "lr" || len(vals) != 3 || vals[0] != 1e-3 || vals[2] != 0.1 {
		t.Errorf("got %s %v", name, vals)
	}

	for _, bad := range []string{"lr", "=1,2", "lr=", "lr=abc", "gamma=1"} {
		if _, _, err := ParseRange(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestApplyParam(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := ApplyParam(cfg, "width", 12); err != nil {
		t.Fatal(err)
	}
	if err := ApplyParam(cfg, "depth", 3); err != nil {
		t.Fatal(err)
	}
	if len(cfg.Network.Hidden) != 3 || cfg.Network.Hidden[2] != 12 {
		t.Errorf("hidden = %v, want [12 12 12]", cfg.Network.Hidden)
	}
	if err := ApplyParam(cfg, "lr", 0.5); err != nil || cfg.Optimizer.Params["lr"] != 0.5 {
		t.Errorf("lr not applied: %v", err)
	}
	if err := ApplyParam(cfg, "gamma", 1); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestSweep(t *testing.T) {
	base := smallConfig()
	base.Training.Epochs = 5

	best, val, trials, err := Sweep(context.Background(), base, NewRegistry(),
		map[string][]float64{"lr": {1e-3, 1e-2}, "width": {4, 6}}, "final_loss", nil)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(trials) != 4 {
		t.Errorf("expected 4 trials, got %d", len(trials))
	}
	if best == nil || trials[0].Value != val {
		t.Errorf("best %v (%g) does not match first trial %+v", best, val, trials[0])
	}
	if base.Network.Hidden[0] != 8 {
		t.Error("sweep mutated the base config")
	}
}
