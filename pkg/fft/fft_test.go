package fft

import (
	"math/cmplx"
	"testing"
)

// TestFFT2D tests two-dimensional FFT
func TestFFT2D(t *testing.T) {
	// Create a 2x2 test grid
	input := [][]complex128{
		{1, 0},
		{0, 0},
	}

	result := FFT2D(input)

	// Check dimensions
	if len(result) != 2 || len(result[0]) != 2 {
		t.Fatalf("Expected 2x2 grid, got %dx%d", len(result), len(result[0]))
	}

	// Check DC component (sum of all elements)
	dcComponent := result[0][0]
	expectedDC := complex(1, 0)
	if !complexApproxEqual(dcComponent, expectedDC, 1e-10) {
		t.Errorf("DC component: expected %v, got %v", expectedDC, dcComponent)
	}
}

// TestIFFT2D tests two-dimensional inverse FFT
func TestIFFT2D(t *testing.T) {
	// Test that IFFT2D(FFT2D(x)) = x
	input := [][]complex128{
		{1, 2},
		{3, 4},
	}

	fftResult := FFT2D(input)
	ifftResult := IFFT2D(fftResult)

	// Check dimensions
	if len(ifftResult) != len(input) || len(ifftResult[0]) != len(input[0]) {
		t.Fatalf("Dimension mismatch")
	}

	// Check values
	for i := range ifftResult {
		for j := range ifftResult[i] {
			if !complexApproxEqual(ifftResult[i][j], input[i][j], 1e-10) {
				t.Errorf("Position [%d][%d]: expected %v, got %v",
					i, j, input[i][j], ifftResult[i][j])
			}
		}
	}
}

// Helper function to compare complex numbers with tolerance
func complexApproxEqual(a, b complex128, tolerance float64) bool {
	return cmplx.Abs(a-b) < tolerance
}
