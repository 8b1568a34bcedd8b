package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Spectrum is the one-sided amplitude spectrum of a signal sampled on
// [0, L]. Amplitude[k] belongs to wavenumber k/L.
type Spectrum struct {
	Length    float64
	Amplitude []float64
}

// PowerSpectrum returns the one-sided amplitude spectrum of evenly spaced
// samples over a domain of the given length. The samples are assumed to
// cover one period, so the last point is dropped when it repeats the first.
func PowerSpectrum(data []float64, length float64) (Spectrum, error) {
	if len(data) < 4 {
		return Spectrum{}, fmt.Errorf("spectrum needs at least 4 samples, got %d", len(data))
	}
	if length <= 0 {
		return Spectrum{}, fmt.Errorf("spectrum length must be positive, got %g", length)
	}

	n := len(data)
	seq := make([]float64, n)
	copy(seq, data)

	// Remove the linear trend so the jump between the two ends does not
	// leak into every mode.
	base := seq[0]
	slope := (seq[n-1] - base) / float64(n-1)
	for i := range seq {
		seq[i] -= base + slope*float64(i)
	}
	seq = seq[:n-1]

	coeff := fourier.NewFFT(len(seq)).Coefficients(nil, seq)
	amp := make([]float64, len(coeff))
	scale := 2 / float64(len(seq))
	for i, c := range coeff {
		amp[i] = cmplx.Abs(c) * scale
	}
	amp[0] /= 2
	return Spectrum{Length: length, Amplitude: amp}, nil
}

// Dominant returns the wavenumber and amplitude of the strongest non-constant
// mode.
func (s Spectrum) Dominant() (wavenumber, amplitude float64) {
	if len(s.Amplitude) < 2 {
		return 0, 0
	}
	best := 1
	for k := 2; k < len(s.Amplitude); k++ {
		if s.Amplitude[k] > s.Amplitude[best] {
			best = k
		}
	}
	return float64(best) / s.Length, s.Amplitude[best]
}

// HighFrequencyShare is the fraction of spectral energy above wavenumber
// cutoff. Networks fit low frequencies first, so a high share in the error
// means training has not yet resolved the fine scales.
func (s Spectrum) HighFrequencyShare(cutoff float64) float64 {
	var total, high float64
	for k := 1; k < len(s.Amplitude); k++ {
		e := s.Amplitude[k] * s.Amplitude[k]
		total += e
		if float64(k)/s.Length > cutoff {
			high += e
		}
	}
	if total == 0 {
		return 0
	}
	return high / total
}

// ErrorSpectrum is the spectrum of predicted minus exact.
func ErrorSpectrum(predicted, exact []float64, length float64) (Spectrum, error) {
	if len(predicted) != len(exact) {
		return Spectrum{}, fmt.Errorf("length mismatch: %d predicted, %d exact", len(predicted), len(exact))
	}
	diff := make([]float64, len(predicted))
	for i := range diff {
		diff[i] = predicted[i] - exact[i]
		if math.IsNaN(diff[i]) || math.IsInf(diff[i], 0) {
			return Spectrum{}, fmt.Errorf("non-finite error at sample %d", i)
		}
	}
	return PowerSpectrum(diff, length)
}
