package physics

import (
	"fmt"
	"math"
	"sort"
)

// Load is a distributed axial load q(x) with a closed-form particular solution
// P satisfying P_xx = -q.
type Load interface {
	Name() string
	Q(x float64) float64
	Particular(x float64) float64
	GetParams() map[string]float64
}

// Sinusoidal is q(x) = a (2πk)² sin(2πk x). The defaults give 4π² sin(2πx).
type Sinusoidal struct {
	Amplitude float64
	Frequency float64
}

func NewSinusoidal() *Sinusoidal {
	return &Sinusoidal{Amplitude: 1, Frequency: 1}
}

func (s *Sinusoidal) Name() string { return "sinusoidal" }

func (s *Sinusoidal) Q(x float64) float64 {
	w := 2 * math.Pi * s.Frequency
	return s.Amplitude * w * w * math.Sin(w*x)
}

func (s *Sinusoidal) Particular(x float64) float64 {
	return s.Amplitude * math.Sin(2*math.Pi*s.Frequency*x)
}

func (s *Sinusoidal) GetParams() map[string]float64 {
	return map[string]float64{"amplitude": s.Amplitude, "frequency": s.Frequency}
}

// Uniform is a constant load q(x) = q0.
type Uniform struct {
	Q0 float64
}

func NewUniform(q0 float64) *Uniform { return &Uniform{Q0: q0} }

func (u *Uniform) Name() string                 { return "uniform" }
func (u *Uniform) Q(float64) float64            { return u.Q0 }
func (u *Uniform) Particular(x float64) float64 { return -0.5 * u.Q0 * x * x }

func (u *Uniform) GetParams() map[string]float64 {
	return map[string]float64{"q0": u.Q0}
}

var loads = map[string]func(params map[string]float64) Load{
	"sinusoidal": func(p map[string]float64) Load {
		s := NewSinusoidal()
		if v, ok := p["amplitude"]; ok {
			s.Amplitude = v
		}
		if v, ok := p["frequency"]; ok {
			s.Frequency = v
		}
		return s
	},
	"uniform": func(p map[string]float64) Load {
		return NewUniform(p["q0"])
	},
}

// NewLoad builds a named load. Missing parameters fall back to the load's defaults.
func NewLoad(name string, params map[string]float64) (Load, error) {
	build, ok := loads[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownLoad, name, LoadNames())
	}
	return build(params), nil
}

func LoadNames() []string {
	names := make([]string, 0, len(loads))
	for name := range loads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
