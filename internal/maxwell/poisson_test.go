package maxwell

import (
	"math"
	"testing"
)

// TestSolvePoissonCGMatchesKnownSineSolution uses rho = sin(pi*x/L),
// whose exact Dirichlet solution on [0,L] is phi = (L/pi)^2 sin(pi*x/L).
func TestSolvePoissonCGMatchesKnownSineSolution(t *testing.T) {
	n := 64
	length := 1.0
	dx := length / float64(n-1)
	rho := make([]float64, n)
	for i := 0; i < n; i++ {
		x := float64(i) * dx
		rho[i] = math.Sin(math.Pi * x / length)
	}
	rho[0] = 0
	rho[n-1] = 0

	phi := SolvePoissonCG(rho, dx, 1e-14, 10000)

	scale := (length / math.Pi) * (length / math.Pi)
	var maxErr float64
	for i := 1; i < n-1; i++ {
		x := float64(i) * dx
		want := scale * math.Sin(math.Pi*x/length)
		if err := math.Abs(phi[i] - want); err > maxErr {
			maxErr = err
		}
	}
	if maxErr > 1e-2 {
		t.Fatalf("CG Poisson solution deviates from analytic sine solution by %e", maxErr)
	}
}

func TestSolvePoissonFFT2DZerosDCComponent(t *testing.T) {
	n := 8
	rho := make([][]float64, n)
	for i := range rho {
		rho[i] = make([]float64, n)
		for j := range rho[i] {
			rho[i][j] = 1.0 // uniform charge: pure DC, no physical solution
		}
	}
	phi := SolvePoissonFFT2D(rho, 1.0, 1.0)
	for i := range phi {
		for j := range phi[i] {
			if math.Abs(phi[i][j]) > 1e-9 {
				t.Fatalf("expected DC component to be dropped, got phi[%d][%d]=%e", i, j, phi[i][j])
			}
		}
	}
}

// TestSolvePoissonCGNDMatchesKnownSineProductSolution checks the 2-D
// generalization against rho = sin(pi*x/Lx)*sin(pi*y/Ly), whose exact
// Dirichlet solution is phi = rho / (pi/Lx)^2+(pi/Ly)^2).
func TestSolvePoissonCGNDMatchesKnownSineProductSolution(t *testing.T) {
	nx, ny := 24, 24
	lx, ly := 1.0, 1.0
	dx, dy := lx/float64(nx-1), ly/float64(ny-1)
	dims := []int{nx, ny}
	strides := ndStrides(dims)
	rho := make([]float64, nx*ny)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			x, y := float64(i)*dx, float64(j)*dy
			rho[i*strides[0]+j*strides[1]] = math.Sin(math.Pi*x/lx) * math.Sin(math.Pi*y/ly)
		}
	}

	phi := SolvePoissonCGND(rho, dims, []float64{dx, dy}, 1e-14, 20000)

	kx, ky := math.Pi/lx, math.Pi/ly
	scale := 1.0 / (kx*kx + ky*ky)
	var maxErr float64
	for i := 1; i < nx-1; i++ {
		for j := 1; j < ny-1; j++ {
			x, y := float64(i)*dx, float64(j)*dy
			want := scale * math.Sin(math.Pi*x/lx) * math.Sin(math.Pi*y/ly)
			if err := math.Abs(phi[i*strides[0]+j*strides[1]] - want); err > maxErr {
				maxErr = err
			}
		}
	}
	if maxErr > 5e-2 {
		t.Fatalf("2-D CG Poisson solution deviates from analytic sine-product solution by %e", maxErr)
	}
}

// TestInitializeFromRhoBoundedAxes2D checks the end-to-end Grid path:
// a 2-D grid with every axis bounded seeds Ex/Ey from a CG Poisson
// solve rather than leaving them at their cold-start zero.
func TestInitializeFromRhoBoundedAxes2D(t *testing.T) {
	g := NewGrid(2, []int{16, 16}, 2, []float64{0.1, 0.1})
	lo, hi := g.Rho.InteriorBounds()
	cx, cy := (lo[0]+hi[0])/2, (lo[1]+hi[1])/2
	g.Rho.Set(1.0, cx, cy)

	if err := g.InitializeFromRho([]bool{false, false}, 1e-10, 5000); err != nil {
		t.Fatalf("InitializeFromRho: %v", err)
	}

	var anyNonzero bool
	for i := lo[0]; i < hi[0]; i++ {
		for j := lo[1]; j < hi[1]; j++ {
			if g.Ex.At(i, j) != 0 || g.Ey.At(i, j) != 0 {
				anyNonzero = true
			}
		}
	}
	if !anyNonzero {
		t.Fatalf("InitializeFromRho left E entirely zero for a nonzero charge density")
	}
}

// TestInitializeFromRhoRejectsMixedPeriodicity checks that a grid with
// one periodic and one bounded axis reports an error instead of
// silently leaving E untouched.
func TestInitializeFromRhoRejectsMixedPeriodicity(t *testing.T) {
	g := NewGrid(2, []int{8, 8}, 2, []float64{0.1, 0.1})
	if err := g.InitializeFromRho([]bool{true, false}, 1e-10, 1000); err == nil {
		t.Fatalf("expected an error for mixed periodic/bounded axes, got nil")
	}
}

// TestInitializeFromRhoRejectsWrongFlagCount checks the argument-count
// guard independent of periodicity.
func TestInitializeFromRhoRejectsWrongFlagCount(t *testing.T) {
	g := NewGrid(1, []int{8}, 2, []float64{0.1})
	if err := g.InitializeFromRho([]bool{true, false}, 1e-10, 1000); err == nil {
		t.Fatalf("expected an error for a periodic-flag count mismatch, got nil")
	}
}
