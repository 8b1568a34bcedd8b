package optim

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrConverged reports that an optimizer can make no further progress.
	ErrConverged = errors.New("optim: converged")

	// ErrUnknownOptimizer indicates a name with no registered constructor.
	ErrUnknownOptimizer = errors.New("optim: unknown optimizer")

	// ErrInvalidParam reports a hyperparameter outside its valid range.
	ErrInvalidParam = errors.New("optim: invalid parameter")
)

// Objective is a scalar function of a flat parameter vector. Params returns a
// live view: writing to it changes the point Evaluate sees.
type Objective interface {
	Params() []float64
	SetParams(p []float64) error
	Evaluate() float64
	EvaluateGrad(grad []float64) float64
}

// Optimizer advances an objective's parameters by one training step.
type Optimizer interface {
	Name() string
	Step(obj Objective) (float64, error)
	Reset()
}

const (
	DefaultLR          = 1e-3
	DefaultMomentum    = 0.0
	DefaultBeta1       = 0.9
	DefaultBeta2       = 0.999
	DefaultEps         = 1e-8
	DefaultLBFGSIter   = 20
	DefaultLBFGSMemory = 100
)

var constructors = map[string]func(params map[string]float64) Optimizer{
	"sgd": func(p map[string]float64) Optimizer {
		return NewSGD(param(p, "lr", DefaultLR), param(p, "momentum", DefaultMomentum))
	},
	"adam": func(p map[string]float64) Optimizer {
		a := NewAdam(param(p, "lr", DefaultLR))
		a.Beta1 = param(p, "beta1", DefaultBeta1)
		a.Beta2 = param(p, "beta2", DefaultBeta2)
		a.Eps = param(p, "eps", DefaultEps)
		return a
	},
	"lbfgs": func(p map[string]float64) Optimizer {
		return NewLBFGS(int(param(p, "max_iter", DefaultLBFGSIter)), int(param(p, "history_size", DefaultLBFGSMemory)))
	},
}

func param(p map[string]float64, name string, def float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return def
}

// New builds a named optimizer; params override its defaults.
func New(name string, params map[string]float64) (Optimizer, error) {
	build, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownOptimizer, name, Names())
	}
	if err := checkParams(params); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return build(params), nil
}

// paramRanges bounds each known hyperparameter to (lo, hi), or [lo, hi) when
// the low end is inclusive.
var paramRanges = map[string]struct {
	lo, hi      float64
	inclusiveLo bool
}{
	"lr":           {0, math.Inf(1), false},
	"momentum":     {0, 1, true},
	"beta1":        {0, 1, true},
	"beta2":        {0, 1, true},
	"eps":          {0, math.Inf(1), false},
	"max_iter":     {1, math.Inf(1), true},
	"history_size": {1, math.Inf(1), true},
}

func checkParams(params map[string]float64) error {
	for name, v := range params {
		r, ok := paramRanges[name]
		if !ok {
			continue
		}
		below := v < r.lo || (v == r.lo && !r.inclusiveLo)
		if below || v >= r.hi || math.IsNaN(v) {
			return fmt.Errorf("%w: %s = %g", ErrInvalidParam, name, v)
		}
	}
	return nil
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
