package optim

import "math"

type Adam struct {
	LR    float64
	Beta1 float64
	Beta2 float64
	Eps   float64

	grad []float64
	m, v []float64
	t    int
}

func NewAdam(lr float64) *Adam {
	return &Adam{LR: lr, Beta1: DefaultBeta1, Beta2: DefaultBeta2, Eps: DefaultEps}
}

func (a *Adam) Name() string { return "adam" }

func (a *Adam) Step(obj Objective) (float64, error) {
	params := obj.Params()
	if len(a.grad) != len(params) {
		a.grad = make([]float64, len(params))
		a.m = make([]float64, len(params))
		a.v = make([]float64, len(params))
		a.t = 0
	}

	loss := obj.EvaluateGrad(a.grad)

	a.t++
	bc1 := 1 - math.Pow(a.Beta1, float64(a.t))
	bc2 := 1 - math.Pow(a.Beta2, float64(a.t))
	for i, g := range a.grad {
		a.m[i] = a.Beta1*a.m[i] + (1-a.Beta1)*g
		a.v[i] = a.Beta2*a.v[i] + (1-a.Beta2)*g*g
		mHat := a.m[i] / bc1
		vHat := a.v[i] / bc2
		params[i] -= a.LR * mHat / (math.Sqrt(vHat) + a.Eps)
	}
	return loss, nil
}

func (a *Adam) Reset() {
	a.grad, a.m, a.v = nil, nil, nil
	a.t = 0
}
