// Package analysis inspects trained displacement fields.
//
// [ErrorSpectrum] decomposes the pointwise error of a prediction into
// Fourier modes. Neural networks fit low wavenumbers first, so the dominant
// error mode and [Spectrum.HighFrequencyShare] show which scales of the load
// the network has not resolved yet.
package analysis
