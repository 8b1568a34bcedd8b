package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/pinnbar/internal/metrics"
	"github.com/san-kum/pinnbar/internal/optim"
	"github.com/san-kum/pinnbar/internal/physics"
	"github.com/san-kum/pinnbar/internal/train"
)

type Registry struct {
	loads      map[string]func(map[string]float64) (physics.Load, error)
	optimizers map[string]func(map[string]float64) (optim.Optimizer, error)
	metrics    map[string]func() train.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		loads:      make(map[string]func(map[string]float64) (physics.Load, error)),
		optimizers: make(map[string]func(map[string]float64) (optim.Optimizer, error)),
		metrics:    make(map[string]func() train.Metric),
	}

	for _, name := range physics.LoadNames() {
		name := name
		r.loads[name] = func(p map[string]float64) (physics.Load, error) { return physics.NewLoad(name, p) }
	}
	for _, name := range optim.Names() {
		name := name
		r.optimizers[name] = func(p map[string]float64) (optim.Optimizer, error) { return optim.New(name, p) }
	}

	r.metrics["best_loss"] = func() train.Metric { return metrics.NewBestLoss() }
	r.metrics["loss_reduction"] = func() train.Metric { return metrics.NewLossReduction() }
	r.metrics["bc_share"] = func() train.Metric { return metrics.NewBoundaryShare() }

	return r
}

func (r *Registry) GetLoad(name string, params map[string]float64) (physics.Load, error) {
	build, ok := r.loads[name]
	if !ok {
		return nil, fmt.Errorf("unknown load: %s (available: %v)", name, keys(r.loads))
	}
	return build(params)
}

func (r *Registry) GetOptimizer(name string, params map[string]float64) (optim.Optimizer, error) {
	build, ok := r.optimizers[name]
	if !ok {
		return nil, fmt.Errorf("unknown optimizer: %s (available: %v)", name, keys(r.optimizers))
	}
	return build(params)
}

func (r *Registry) DefaultMetrics() []train.Metric {
	out := make([]train.Metric, 0, len(r.metrics))
	for _, name := range keys(r.metrics) {
		out = append(out, r.metrics[name]())
	}
	return out
}

func (r *Registry) Loads() []string      { return keys(r.loads) }
func (r *Registry) Optimizers() []string { return keys(r.optimizers) }

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
