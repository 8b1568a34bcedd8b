package optim

import (
	"context"
	"errors"
	"math"
	"testing"
)

// quadratic is f(p) = Σ c_i (p_i - t_i)².
type quadratic struct {
	p, c, target []float64
}

func newQuadratic() *quadratic {
	return &quadratic{
		p:      []float64{3, -2, 0.5},
		c:      []float64{1, 4, 0.5},
		target: []float64{1, 1, -1},
	}
}

func (q *quadratic) Params() []float64 { return q.p }

func (q *quadratic) SetParams(p []float64) error {
	copy(q.p, p)
	return nil
}

func (q *quadratic) Evaluate() float64 {
	f := 0.0
	for i := range q.p {
		d := q.p[i] - q.target[i]
		f += q.c[i] * d * d
	}
	return f
}

func (q *quadratic) EvaluateGrad(grad []float64) float64 {
	for i := range q.p {
		grad[i] = 2 * q.c[i] * (q.p[i] - q.target[i])
	}
	return q.Evaluate()
}

func TestOptimizersConverge(t *testing.T) {
	tests := []struct {
		name  string
		opt   Optimizer
		steps int
		tol   float64
	}{
		{"sgd", NewSGD(0.05, 0), 500, 1e-6},
		{"sgd momentum", NewSGD(0.02, 0.9), 500, 1e-6},
		{"adam", NewAdam(0.05), 2000, 1e-2},
		{"lbfgs", NewLBFGS(20, 10), 5, 1e-8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newQuadratic()
			start := q.Evaluate()

			for i := 0; i < tt.steps; i++ {
				if _, err := tt.opt.Step(q); err != nil {
					if errors.Is(err, ErrConverged) {
						break
					}
					t.Fatalf("step %d: %v", i, err)
				}
			}

			end := q.Evaluate()
			if end >= start {
				t.Errorf("loss did not decrease: %g -> %g", start, end)
			}
			if end > tt.tol {
				t.Errorf("final loss %g above %g (params %v)", end, tt.tol, q.p)
			}
		})
	}
}

func TestSGDSingleStep(t *testing.T) {
	q := newQuadratic()
	loss, err := NewSGD(0.1, 0).Step(q)
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if math.Abs(loss-(4+36+1.125)) > 1e-12 {
		t.Errorf("expected pre-step loss 41.125, got %g", loss)
	}
	// p0 = 3 - 0.1 * 2*1*(3-1)
	if math.Abs(q.p[0]-2.6) > 1e-12 {
		t.Errorf("expected p0 = 2.6, got %g", q.p[0])
	}
}

func TestAdamResetClearsState(t *testing.T) {
	a := NewAdam(0.1)
	q := newQuadratic()
	a.Step(q)
	a.Reset()
	if a.t != 0 || a.m != nil {
		t.Error("expected reset to clear moment state")
	}
}

func TestNewOptimizer(t *testing.T) {
	opt, err := New("adam", map[string]float64{"lr": 0.01})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if a := opt.(*Adam); a.LR != 0.01 || a.Beta1 != DefaultBeta1 {
		t.Errorf("unexpected adam config: %+v", a)
	}

	opt, err = New("lbfgs", nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if l := opt.(*LBFGS); l.MaxIter != DefaultLBFGSIter {
		t.Errorf("expected max_iter %d, got %d", DefaultLBFGSIter, l.MaxIter)
	}

	if _, err := New("rmsprop", nil); !errors.Is(err, ErrUnknownOptimizer) {
		t.Errorf("expected ErrUnknownOptimizer, got %v", err)
	}
}

func TestGridSearch(t *testing.T) {
	g := NewGridSearch([]string{"a", "b"}, [][]float64{{1, 2, 3}, {-1, 0, 1}})

	evaluate := func(_ context.Context, p map[string]float64) (float64, error) {
		if p["a"] == 3 {
			return 0, errors.New("boom")
		}
		return (p["a"]-2)*(p["a"]-2) + p["b"]*p["b"], nil
	}

	best, val, trials, err := g.Search(context.Background(), evaluate)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if best["a"] != 2 || best["b"] != 0 || val != 0 {
		t.Errorf("expected best a=2 b=0 value 0, got %v value %g", best, val)
	}
	if len(trials) != 9 {
		t.Errorf("expected 9 trials, got %d", len(trials))
	}
	if trials[0].Value != 0 || trials[len(trials)-1].Err == nil {
		t.Error("expected trials sorted best first with failures last")
	}
}

func TestGridSearchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGridSearch([]string{"a"}, [][]float64{{1, 2}})
	_, _, _, err := g.Search(ctx, func(context.Context, map[string]float64) (float64, error) { return 0, nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewKeepsExplicitParams(t *testing.T) {
	opt, err := New("sgd", map[string]float64{"lr": 0.05, "momentum": 0})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s := opt.(*SGD); s.LR != 0.05 || s.Momentum != 0 {
		t.Errorf("unexpected sgd config: %+v", s)
	}

	opt, err = New("adam", map[string]float64{"beta1": 0})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if a := opt.(*Adam); a.Beta1 != 0 {
		t.Errorf("explicit beta1 0 replaced by %g", a.Beta1)
	}
}

func TestNewRejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		opt    string
		params map[string]float64
	}{
		{"zero lr", "sgd", map[string]float64{"lr": 0}},
		{"negative lr", "adam", map[string]float64{"lr": -1e-3}},
		{"momentum one", "sgd", map[string]float64{"momentum": 1}},
		{"beta2 above one", "adam", map[string]float64{"beta2": 1.5}},
		{"zero eps", "adam", map[string]float64{"eps": 0}},
		{"zero max_iter", "lbfgs", map[string]float64{"max_iter": 0}},
		{"nan lr", "sgd", map[string]float64{"lr": math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opt, tt.params); !errors.Is(err, ErrInvalidParam) {
				t.Errorf("expected ErrInvalidParam, got %v", err)
			}
		})
	}
}
