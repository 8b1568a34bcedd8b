package pinn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/pinnbar/internal/nn"
	"github.com/san-kum/pinnbar/internal/physics"
)

func newTestModel(t *testing.T, bar *physics.Bar) *Model {
	t.Helper()
	net, err := nn.New([]int{6, 6}, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("nn.New failed: %v", err)
	}
	xs, err := physics.Collocation(bar.L, 12, physics.SamplingLinspace, nil)
	if err != nil {
		t.Fatalf("Collocation failed: %v", err)
	}
	m, err := NewModel(bar, physics.NewSinusoidal(), net, xs)
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}
	return m
}

func TestCostFunctionTerms(t *testing.T) {
	bar := &physics.Bar{E: 2, A: 1.5, L: 1, U0: 0.1, UL: -0.2}
	m := newTestModel(t, bar)

	loss := m.CostFunction()

	var pde float64
	for _, x := range m.X {
		_, _, uxx := m.Net.ForwardDerivs(x).U()
		r := 3 * (uxx + m.Load.Q(x))
		pde += r * r
	}
	pde /= float64(len(m.X))

	e0 := m.Net.Forward(0) - 0.1
	e1 := m.Net.Forward(1) + 0.2
	bc := (e0*e0 + e1*e1) / 2

	if math.Abs(loss.PDE-pde) > 1e-9*pde {
		t.Errorf("PDE loss = %g, want %g", loss.PDE, pde)
	}
	if math.Abs(loss.BC-bc) > 1e-12 {
		t.Errorf("BC loss = %g, want %g", loss.BC, bc)
	}
	if math.Abs(loss.Total-(pde+bc)) > 1e-9*(pde+bc) {
		t.Errorf("total = %g, want %g", loss.Total, pde+bc)
	}
}

func TestGradientMatchesFiniteDifferences(t *testing.T) {
	m := newTestModel(t, &physics.Bar{E: 1, A: 1, L: 1, U0: 0.3})
	m.Weights = Weights{PDE: 0.5, BC: 4}

	grad := make([]float64, m.Net.NumParams())
	loss := m.Gradient(grad)
	if plain := m.CostFunction(); math.Abs(loss.Total-plain.Total) > 1e-12*plain.Total {
		t.Errorf("Gradient loss %+v != CostFunction %+v", loss, plain)
	}

	params := m.Params()
	h := 1e-6
	for i := range params {
		orig := params[i]
		params[i] = orig + h
		fp := m.Evaluate()
		params[i] = orig - h
		fm := m.Evaluate()
		params[i] = orig

		want := (fp - fm) / (2 * h)
		if math.Abs(grad[i]-want) > 1e-4*(1+math.Abs(want)) {
			t.Errorf("param %d: gradient %g, finite difference %g", i, grad[i], want)
		}
	}
}

func TestGradientResetsBuffer(t *testing.T) {
	m := newTestModel(t, physics.NewBar())

	first := make([]float64, m.Net.NumParams())
	m.Gradient(first)

	second := make([]float64, m.Net.NumParams())
	for i := range second {
		second[i] = 99
	}
	m.Gradient(second)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("param %d: gradient depends on buffer contents", i)
		}
	}
}

func TestExactDisplacements(t *testing.T) {
	m := newTestModel(t, physics.NewBar())
	xs := []float64{0, 0.25, 0.5, 0.75, 1}
	exact := m.Exact(xs)
	want := []float64{0, 1, 0, -1, 0}
	for i := range xs {
		if math.Abs(exact[i]-want[i]) > 1e-12 {
			t.Errorf("exact(%g) = %g, want %g", xs[i], exact[i], want[i])
		}
	}
}

func TestNewModelValidates(t *testing.T) {
	net, _ := nn.New([]int{2}, rand.New(rand.NewSource(1)))
	if _, err := NewModel(&physics.Bar{E: -1, A: 1, L: 1}, physics.NewSinusoidal(), net, []float64{0, 1}); err == nil {
		t.Error("expected error for invalid bar")
	}
	if _, err := NewModel(physics.NewBar(), physics.NewSinusoidal(), net, nil); err == nil {
		t.Error("expected error for empty collocation set")
	}
	if _, err := NewModel(physics.NewBar(), nil, net, []float64{0, 1}); err == nil {
		t.Error("expected error for missing load")
	}
}

func TestLossIsFinite(t *testing.T) {
	if !(Loss{PDE: 1, BC: 2, Total: 3}).IsFinite() {
		t.Error("finite loss reported as non-finite")
	}
	if (Loss{PDE: math.NaN()}).IsFinite() {
		t.Error("NaN loss reported as finite")
	}
	if (Loss{Total: math.Inf(1)}).IsFinite() {
		t.Error("Inf loss reported as finite")
	}
}
