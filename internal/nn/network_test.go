package nn

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"testing"
)

func newTestNetwork(t *testing.T, hidden []int) *Network {
	t.Helper()
	n, err := New(hidden, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return n
}

func TestNetworkShape(t *testing.T) {
	n := newTestNetwork(t, DefaultHidden)

	// 1*40+40 + 40*40+40 + 40*1+1
	if n.NumParams() != 1761 {
		t.Errorf("expected 1761 params, got %d", n.NumParams())
	}
	if len(n.Layers()) != 3 {
		t.Errorf("expected 3 layers, got %d", len(n.Layers()))
	}

	for _, l := range n.Layers() {
		bound := 1 / math.Sqrt(float64(l.In))
		for _, w := range l.W {
			if math.Abs(w) > bound {
				t.Fatalf("weight %g outside init bound %g", w, bound)
			}
		}
	}
}

func TestNewRejectsEmptyLayer(t *testing.T) {
	_, err := New([]int{10, 0}, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrInvalidShape) {
		t.Errorf("expected ErrInvalidShape, got %v", err)
	}
}

func TestForwardDerivsMatchFiniteDifferences(t *testing.T) {
	n := newTestNetwork(t, []int{8, 6})

	h := 1e-4
	for _, x := range []float64{-0.5, 0, 0.3, 1.2} {
		u, ux, uxx := n.ForwardDerivs(x).U()

		if math.Abs(u-n.Forward(x)) > 1e-12 {
			t.Errorf("x=%g: traced u %g != forward %g", x, u, n.Forward(x))
		}

		fp, f0, fm := n.Forward(x+h), n.Forward(x), n.Forward(x-h)
		wantUx := (fp - fm) / (2 * h)
		wantUxx := (fp - 2*f0 + fm) / (h * h)

		if math.Abs(ux-wantUx) > 1e-6 {
			t.Errorf("x=%g: u' = %g, finite difference %g", x, ux, wantUx)
		}
		if math.Abs(uxx-wantUxx) > 1e-4 {
			t.Errorf("x=%g: u'' = %g, finite difference %g", x, uxx, wantUxx)
		}
	}
}

func TestBackwardMatchesFiniteDifferences(t *testing.T) {
	n := newTestNetwork(t, []int{5, 4})
	x := 0.37
	// objective f = 0.7*u - 1.3*u' + 0.4*u''
	cu, cu1, cu2 := 0.7, -1.3, 0.4
	objective := func() float64 {
		u, ux, uxx := n.ForwardDerivs(x).U()
		return cu*u + cu1*ux + cu2*uxx
	}

	grad := make([]float64, n.NumParams())
	n.Backward(n.ForwardDerivs(x), cu, cu1, cu2, grad)

	params := n.Params()
	h := 1e-6
	for i := range params {
		orig := params[i]
		params[i] = orig + h
		fp := objective()
		params[i] = orig - h
		fm := objective()
		params[i] = orig

		want := (fp - fm) / (2 * h)
		if math.Abs(grad[i]-want) > 1e-5*(1+math.Abs(want)) {
			t.Errorf("param %d: backward %g, finite difference %g", i, grad[i], want)
		}
	}
}

func TestSetParamsLength(t *testing.T) {
	n := newTestNetwork(t, []int{3})
	if err := n.SetParams(make([]float64, 2)); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("expected ErrInvalidShape, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	n := newTestNetwork(t, []int{4})
	c := n.Clone()
	c.Params()[0] += 1
	if n.Params()[0] == c.Params()[0] {
		t.Error("clone shares parameters with original")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	n := newTestNetwork(t, []int{6, 3})

	var buf bytes.Buffer
	if err := n.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	restored, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}

	for _, x := range []float64{0, 0.25, 0.9} {
		if restored.Forward(x) != n.Forward(x) {
			t.Errorf("x=%g: restored %g != original %g", x, restored.Forward(x), n.Forward(x))
		}
	}
}

func TestFromSnapshotRejectsBadShape(t *testing.T) {
	tests := []Snapshot{
		{Sizes: []int{2, 3, 1}},
		{Sizes: []int{1}},
		{Sizes: []int{1, 2, 1}, Activation: "relu", Params: make([]float64, 7)},
		{Sizes: []int{1, 2, 1}, Params: make([]float64, 3)},
		{Sizes: []int{1, 0, 1}, Params: make([]float64, 1)},
		{Sizes: []int{1, -2, 1}, Params: make([]float64, 3)},
	}
	for _, s := range tests {
		if _, err := FromSnapshot(s); !errors.Is(err, ErrInvalidShape) {
			t.Errorf("expected ErrInvalidShape for snapshot %+v, got %v", s, err)
		}
	}
}
