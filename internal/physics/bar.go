package physics

import (
	"fmt"
	"math"
)

const (
	DefaultYoungsModulus = 1.0
	DefaultArea          = 1.0
	DefaultLength        = 1.0
)

// Bar is a 1-D linear elastic bar fixed by prescribed displacements at both ends.
type Bar struct {
	E  float64 // Young's modulus
	A  float64 // cross-sectional area
	L  float64 // length
	U0 float64 // displacement at x = 0
	UL float64 // displacement at x = L
}

func NewBar() *Bar {
	return &Bar{
		E: DefaultYoungsModulus,
		A: DefaultArea,
		L: DefaultLength,
	}
}

// Stiffness returns the axial stiffness EA.
func (b *Bar) Stiffness() float64 { return b.E * b.A }

func (b *Bar) Validate() error {
	for _, p := range []struct {
		name string
		v    float64
	}{{"E", b.E}, {"A", b.A}, {"L", b.L}} {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) || p.v <= 0 {
			return fmt.Errorf("%w: %s must be positive and finite, got %g", ErrParameterBounds, p.name, p.v)
		}
	}
	for _, p := range []struct {
		name string
		v    float64
	}{{"u0", b.U0}, {"uL", b.UL}} {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) {
			return fmt.Errorf("%w: %s must be finite", ErrParameterBounds, p.name)
		}
	}
	return nil
}

// Exact returns the analytic displacement u = P(x) + c1*x + c0, where P is the
// load's particular solution and c0, c1 match the prescribed end displacements.
func (b *Bar) Exact(load Load, x float64) float64 {
	c0 := b.U0 - load.Particular(0)
	c1 := (b.UL - load.Particular(b.L) - c0) / b.L
	return load.Particular(x) + c1*x + c0
}

func (b *Bar) ExactSlice(load Load, xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = b.Exact(load, x)
	}
	return out
}

// Residual returns EA * (uxx + q(x)), zero for an exact solution.
func (b *Bar) Residual(load Load, x, uxx float64) float64 {
	return b.Stiffness() * (uxx + load.Q(x))
}
