package pinn

import (
	"fmt"
	"math"

	"github.com/san-kum/pinnbar/internal/nn"
	"github.com/san-kum/pinnbar/internal/physics"
)

// Weights scales the two loss terms. The zero value is replaced by 1/1.
type Weights struct {
	PDE float64 `json:"pde" yaml:"pde"`
	BC  float64 `json:"bc" yaml:"bc"`
}

func DefaultWeights() Weights { return Weights{PDE: 1, BC: 1} }

// Loss holds the terms of the physics-informed cost.
type Loss struct {
	PDE   float64 `json:"pde"`
	BC    float64 `json:"bc"`
	Total float64 `json:"total"`
}

func (l Loss) IsFinite() bool {
	for _, v := range []float64{l.PDE, l.BC, l.Total} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Model couples a trial network with the bar it is meant to solve.
type Model struct {
	Bar     *physics.Bar
	Load    physics.Load
	Net     *nn.Network
	X       []float64
	Weights Weights
}

func NewModel(bar *physics.Bar, load physics.Load, net *nn.Network, x []float64) (*Model, error) {
	if err := bar.Validate(); err != nil {
		return nil, err
	}
	if load == nil || net == nil {
		return nil, fmt.Errorf("pinn: load and network are required")
	}
	if len(x) == 0 {
		return nil, fmt.Errorf("pinn: no collocation points")
	}
	return &Model{
		Bar:     bar,
		Load:    load,
		Net:     net,
		X:       append([]float64(nil), x...),
		Weights: DefaultWeights(),
	}, nil
}

func (m *Model) boundary() (xs, us [2]float64) {
	return [2]float64{0, m.Bar.L}, [2]float64{m.Bar.U0, m.Bar.UL}
}

// CostFunction evaluates the PDE residual loss mean(EA*(uxx+q))² over the
// collocation points and the boundary loss mean((u-ū)²) over both ends.
func (m *Model) CostFunction() Loss {
	return m.cost(nil)
}

// Gradient evaluates the cost and writes d(Total)/d(params) into grad.
func (m *Model) Gradient(grad []float64) Loss {
	for i := range grad {
		grad[i] = 0
	}
	return m.cost(grad)
}

func (m *Model) cost(grad []float64) Loss {
	ea := m.Bar.Stiffness()
	n := float64(len(m.X))

	var loss Loss
	for _, x := range m.X {
		tr := m.Net.ForwardDerivs(x)
		_, _, uxx := tr.U()
		r := ea * (uxx + m.Load.Q(x))
		loss.PDE += r * r
		if grad != nil {
			m.Net.Backward(tr, 0, 0, m.Weights.PDE*2*r*ea/n, grad)
		}
	}
	loss.PDE /= n

	xs, us := m.boundary()
	for i := range xs {
		var e float64
		if grad != nil {
			tr := m.Net.ForwardDerivs(xs[i])
			u, _, _ := tr.U()
			e = u - us[i]
			m.Net.Backward(tr, m.Weights.BC*2*e/float64(len(xs)), 0, 0, grad)
		} else {
			e = m.Net.Forward(xs[i]) - us[i]
		}
		loss.BC += e * e
	}
	loss.BC /= float64(len(xs))

	loss.Total = m.Weights.PDE*loss.PDE + m.Weights.BC*loss.BC
	return loss
}

// Displacements returns the network's predicted displacement at xs.
func (m *Model) Displacements(xs []float64) []float64 {
	return m.Net.ForwardSlice(xs)
}

// Exact returns the analytic displacement at xs.
func (m *Model) Exact(xs []float64) []float64 {
	return m.Bar.ExactSlice(m.Load, xs)
}

func (m *Model) Params() []float64 { return m.Net.Params() }

func (m *Model) SetParams(p []float64) error { return m.Net.SetParams(p) }

func (m *Model) Evaluate() float64 { return m.CostFunction().Total }

func (m *Model) EvaluateGrad(grad []float64) float64 { return m.Gradient(grad).Total }
