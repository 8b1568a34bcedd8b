// Package physics describes the elastic bar problem a PINN is trained against.
//
// A [Bar] of length L with axial stiffness EA carries a distributed [Load] q(x)
// and satisfies
//
//	u''(x) + q(x) = 0,  u(0) = u0,  u(L) = uL
//
// Every load provides a particular solution, so [Bar.Exact] returns the
// analytic displacement used to judge a trained network:
//
//	bar := physics.NewBar()
//	load := physics.NewSinusoidal()
//	u := bar.Exact(load, 0.25) // sin(π/2) = 1
package physics
