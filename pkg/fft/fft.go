// Package fft wraps the two-dimensional transform internal/maxwell's
// spectral Poisson solve needs, trimmed from the teacher's general-purpose
// CPU FFT processor down to the one axis pair it actually drives (1-D
// Poisson reduces to a single-row 2-D transform rather than a separate
// code path).
package fft

import (
	"github.com/mjibson/go-dsp/fft"
)

// FFT2D performs a two-dimensional forward FFT, the spectral step
// SolvePoissonFFT2D uses to turn rho into its wavenumber representation.
func FFT2D(input [][]complex128) [][]complex128 {
	return fft.FFT2(input)
}

// IFFT2D performs the matching two-dimensional inverse FFT, turning the
// divided wavenumber spectrum back into the real-space potential.
func IFFT2D(input [][]complex128) [][]complex128 {
	return fft.IFFT2(input)
}
