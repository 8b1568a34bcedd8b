package physics

import (
	"fmt"
	"math/rand"
	"sort"
)

const (
	SamplingLinspace = "linspace"
	SamplingRandom   = "random"
)

// Collocation returns n sample points on [0, length]. Linspace includes both
// endpoints; random draws uniformly and returns the points sorted.
func Collocation(length float64, n int, strategy string, rng *rand.Rand) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 collocation points, got %d", ErrParameterBounds, n)
	}

	xs := make([]float64, n)
	switch strategy {
	case SamplingLinspace, "":
		step := length / float64(n-1)
		for i := range xs {
			xs[i] = float64(i) * step
		}
		xs[n-1] = length
	case SamplingRandom:
		if rng == nil {
			return nil, fmt.Errorf("random sampling requires a random source")
		}
		for i := range xs {
			xs[i] = rng.Float64() * length
		}
		sort.Float64s(xs)
	default:
		return nil, fmt.Errorf("%w: unknown sampling strategy %q", ErrParameterBounds, strategy)
	}
	return xs, nil
}
