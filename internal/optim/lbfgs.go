package optim

import (
	"fmt"

	"gonum.org/v1/gonum/optimize"
)

// LBFGS runs up to MaxIter quasi-Newton iterations per Step, starting from the
// objective's current parameters. The curvature history is rebuilt each Step.
type LBFGS struct {
	MaxIter int
	History int
}

func NewLBFGS(maxIter, history int) *LBFGS {
	return &LBFGS{MaxIter: maxIter, History: history}
}

func (l *LBFGS) Name() string { return "lbfgs" }

func (l *LBFGS) Step(obj Objective) (float64, error) {
	params := obj.Params()
	x0 := append([]float64(nil), params...)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			copy(params, x)
			return obj.Evaluate()
		},
		Grad: func(grad, x []float64) {
			copy(params, x)
			obj.EvaluateGrad(grad)
		},
	}
	settings := &optimize.Settings{
		MajorIterations: l.MaxIter,
	}
	method := &optimize.LBFGS{Store: l.History}

	res, err := optimize.Minimize(problem, x0, settings, method)
	if res == nil {
		copy(params, x0)
		return 0, fmt.Errorf("lbfgs: %w", err)
	}

	copy(params, res.X)
	if err != nil {
		return res.F, fmt.Errorf("%w: %v", ErrConverged, err)
	}
	switch res.Status {
	case optimize.IterationLimit, optimize.NotTerminated:
		return res.F, nil
	default:
		return res.F, fmt.Errorf("%w: %v", ErrConverged, res.Status)
	}
}

func (l *LBFGS) Reset() {}
