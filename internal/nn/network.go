package nn

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// DefaultHidden is the hidden layout of the reference bar model.
var DefaultHidden = []int{40, 40}

// Layer is a dense layer whose weights and biases are views into the owning
// network's flat parameter vector. W is row-major Out x In.
type Layer struct {
	In, Out int
	W       []float64
	B       []float64
}

func (l *Layer) row(o int) []float64 { return l.W[o*l.In : (o+1)*l.In] }

// Network is a scalar-in scalar-out MLP with tanh hidden layers and a linear
// output layer.
type Network struct {
	sizes  []int
	params []float64
	layers []*Layer
}

// New builds a 1 -> hidden... -> 1 network initialized uniformly in
// ±1/sqrt(fan_in).
func New(hidden []int, rng *rand.Rand) (*Network, error) {
	sizes := make([]int, 0, len(hidden)+2)
	sizes = append(sizes, 1)
	for _, h := range hidden {
		if h <= 0 {
			return nil, fmt.Errorf("%w: hidden layer width must be positive, got %d", ErrInvalidShape, h)
		}
		sizes = append(sizes, h)
	}
	sizes = append(sizes, 1)

	n := newNetwork(sizes)
	for _, l := range n.layers {
		bound := 1 / math.Sqrt(float64(l.In))
		for i := range l.W {
			l.W[i] = (2*rng.Float64() - 1) * bound
		}
		for i := range l.B {
			l.B[i] = (2*rng.Float64() - 1) * bound
		}
	}
	return n, nil
}

func newNetwork(sizes []int) *Network {
	total := 0
	for i := 1; i < len(sizes); i++ {
		total += sizes[i]*sizes[i-1] + sizes[i]
	}

	n := &Network{
		sizes:  append([]int(nil), sizes...),
		params: make([]float64, total),
		layers: make([]*Layer, 0, len(sizes)-1),
	}

	off := 0
	for i := 1; i < len(sizes); i++ {
		in, out := sizes[i-1], sizes[i]
		l := &Layer{In: in, Out: out}
		l.W = n.params[off : off+in*out]
		off += in * out
		l.B = n.params[off : off+out]
		off += out
		n.layers = append(n.layers, l)
	}
	return n
}

func (n *Network) Sizes() []int      { return append([]int(nil), n.sizes...) }
func (n *Network) Layers() []*Layer  { return n.layers }
func (n *Network) NumParams() int    { return len(n.params) }
func (n *Network) Params() []float64 { return n.params }

func (n *Network) SetParams(p []float64) error {
	if len(p) != len(n.params) {
		return fmt.Errorf("%w: got %d params, network has %d", ErrInvalidShape, len(p), len(n.params))
	}
	copy(n.params, p)
	return nil
}

func (n *Network) Clone() *Network {
	c := newNetwork(n.sizes)
	copy(c.params, n.params)
	return c
}

// Forward evaluates u(x).
func (n *Network) Forward(x float64) float64 {
	a := []float64{x}
	last := len(n.layers) - 1
	for li, l := range n.layers {
		h := make([]float64, l.Out)
		for o := 0; o < l.Out; o++ {
			z := floats.Dot(l.row(o), a) + l.B[o]
			if li < last {
				z = math.Tanh(z)
			}
			h[o] = z
		}
		a = h
	}
	return a[0]
}

func (n *Network) ForwardSlice(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = n.Forward(x)
	}
	return out
}
