package nn

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Jet is a value together with its first and second derivative w.r.t. x.
type Jet struct {
	V, D1, D2 []float64
}

func newJet(n int) Jet {
	return Jet{V: make([]float64, n), D1: make([]float64, n), D2: make([]float64, n)}
}

type layerTrace struct {
	in  Jet
	pre Jet
	out Jet
}

// Trace records one derivative-augmented forward pass so Backward can reuse it.
type Trace struct {
	X      float64
	layers []layerTrace
}

// U returns u, du/dx and d²u/dx² at the traced point.
func (t *Trace) U() (u, ux, uxx float64) {
	out := t.layers[len(t.layers)-1].out
	return out.V[0], out.D1[0], out.D2[0]
}

// ForwardDerivs propagates (value, d/dx, d²/dx²) through every layer.
//
// For z = Wa + b the derivatives are linear: z_x = Wa_x, z_xx = Wa_xx.
// For h = tanh(z) with s = 1 - h²: h_x = s z_x, h_xx = s z_xx - 2 h s z_x².
func (n *Network) ForwardDerivs(x float64) *Trace {
	tr := &Trace{X: x, layers: make([]layerTrace, len(n.layers))}

	in := Jet{V: []float64{x}, D1: []float64{1}, D2: []float64{0}}
	last := len(n.layers) - 1
	for li, l := range n.layers {
		pre := newJet(l.Out)
		for o := 0; o < l.Out; o++ {
			row := l.row(o)
			pre.V[o] = floats.Dot(row, in.V) + l.B[o]
			pre.D1[o] = floats.Dot(row, in.D1)
			pre.D2[o] = floats.Dot(row, in.D2)
		}

		out := pre
		if li < last {
			out = newJet(l.Out)
			for o := 0; o < l.Out; o++ {
				h := math.Tanh(pre.V[o])
				s := 1 - h*h
				z1 := pre.D1[o]
				out.V[o] = h
				out.D1[o] = s * z1
				out.D2[o] = s*pre.D2[o] - 2*h*s*z1*z1
			}
		}

		tr.layers[li] = layerTrace{in: in, pre: pre, out: out}
		in = out
	}
	return tr
}

// Backward accumulates into grad the parameter gradient of an objective whose
// partials w.r.t. u, ux and uxx at the traced point are gu, gu1 and gu2.
// grad uses the same layout as Params.
func (n *Network) Backward(tr *Trace, gu, gu1, gu2 float64, grad []float64) {
	g := Jet{V: []float64{gu}, D1: []float64{gu1}, D2: []float64{gu2}}

	off := len(grad)
	last := len(n.layers) - 1
	for li := last; li >= 0; li-- {
		l := n.layers[li]
		lt := tr.layers[li]

		off -= l.In*l.Out + l.Out
		gW := grad[off : off+l.In*l.Out]
		gB := grad[off+l.In*l.Out : off+l.In*l.Out+l.Out]

		gz := g
		if li < last {
			gz = newJet(l.Out)
			for o := 0; o < l.Out; o++ {
				h := lt.out.V[o]
				s := 1 - h*h
				z1, z2 := lt.pre.D1[o], lt.pre.D2[o]
				gh, gh1, gh2 := g.V[o], g.D1[o], g.D2[o]

				gz.D2[o] = gh2 * s
				gz.D1[o] = gh1*s - 4*gh2*h*s*z1
				gz.V[o] = gh*s -
					2*gh1*h*s*z1 -
					2*gh2*(h*s*z2+z1*z1*s*(s-2*h*h))
			}
		}

		ga := newJet(l.In)
		for o := 0; o < l.Out; o++ {
			row := l.row(o)
			gRow := gW[o*l.In : (o+1)*l.In]
			floats.AddScaled(gRow, gz.V[o], lt.in.V)
			floats.AddScaled(gRow, gz.D1[o], lt.in.D1)
			floats.AddScaled(gRow, gz.D2[o], lt.in.D2)
			gB[o] += gz.V[o]

			if li > 0 {
				floats.AddScaled(ga.V, gz.V[o], row)
				floats.AddScaled(ga.D1, gz.D1[o], row)
				floats.AddScaled(ga.D2, gz.D2[o], row)
			}
		}
		g = ga
	}
}
