package nn

import (
	"encoding/json"
	"fmt"
	"io"
)

// Snapshot is the serialized form of a network.
type Snapshot struct {
	Sizes      []int     `json:"sizes"`
	Activation string    `json:"activation"`
	Params     []float64 `json:"params"`
}

func (n *Network) Snapshot() Snapshot {
	return Snapshot{
		Sizes:      n.Sizes(),
		Activation: "tanh",
		Params:     append([]float64(nil), n.params...),
	}
}

func FromSnapshot(s Snapshot) (*Network, error) {
	if len(s.Sizes) < 2 || s.Sizes[0] != 1 || s.Sizes[len(s.Sizes)-1] != 1 {
		return nil, fmt.Errorf("%w: sizes %v", ErrInvalidShape, s.Sizes)
	}
	for _, size := range s.Sizes {
		if size <= 0 {
			return nil, fmt.Errorf("%w: non-positive layer width in %v", ErrInvalidShape, s.Sizes)
		}
	}
	if s.Activation != "" && s.Activation != "tanh" {
		return nil, fmt.Errorf("%w: unsupported activation %q", ErrInvalidShape, s.Activation)
	}
	n := newNetwork(s.Sizes)
	if err := n.SetParams(s.Params); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Network) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(n.Snapshot())
}

func ReadJSON(r io.Reader) (*Network, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, err
	}
	return FromSnapshot(s)
}
