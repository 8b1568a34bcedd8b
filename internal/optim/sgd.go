package optim

import "gonum.org/v1/gonum/floats"

// SGD is gradient descent with optional heavy-ball momentum:
// v = μv + g, θ = θ - lr·v.
type SGD struct {
	LR       float64
	Momentum float64

	grad     []float64
	velocity []float64
}

func NewSGD(lr, momentum float64) *SGD {
	return &SGD{LR: lr, Momentum: momentum}
}

func (s *SGD) Name() string { return "sgd" }

func (s *SGD) Step(obj Objective) (float64, error) {
	params := obj.Params()
	if len(s.grad) != len(params) {
		s.grad = make([]float64, len(params))
		s.velocity = make([]float64, len(params))
	}

	loss := obj.EvaluateGrad(s.grad)

	if s.Momentum != 0 {
		floats.Scale(s.Momentum, s.velocity)
		floats.Add(s.velocity, s.grad)
		floats.AddScaled(params, -s.LR, s.velocity)
	} else {
		floats.AddScaled(params, -s.LR, s.grad)
	}
	return loss, nil
}

func (s *SGD) Reset() {
	s.grad = nil
	s.velocity = nil
}
