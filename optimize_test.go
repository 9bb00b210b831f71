package edl

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestMinimizeScalarBounded(t *testing.T) {
	quad := func(x float64) float64 { return (x - 2) * (x - 2) }
	x, fx, converged := minimizeScalarBounded(quad, 0, 5, 1e-6, 100)
	if !converged {
		t.Fatal("quadratic did not converge")
	}
	if !scalar.EqualWithinAbs(x, 2, 1e-4) {
		t.Fatalf("minimum at %f, want 2", x)
	}
	if fx > 1e-8 {
		t.Fatalf("minimum value is %e", fx)
	}
	// Minimum at the lower bound.
	x, _, converged = minimizeScalarBounded(func(x float64) float64 { return x }, 1, 3, 1e-6, 100)
	if !converged || !scalar.EqualWithinAbs(x, 1, 1e-3) {
		t.Fatalf("boundary minimum at %f (converged=%v)", x, converged)
	}
	// Non-smooth but unimodal.
	x, _, converged = minimizeScalarBounded(func(x float64) float64 { return math.Abs(x - 0.7) }, 0, 2, 1e-6, 100)
	if !converged || !scalar.EqualWithinAbs(x, 0.7, 1e-4) {
		t.Fatalf("kinked minimum at %f (converged=%v)", x, converged)
	}
}

func TestMinimizeVector(t *testing.T) {
	bowl := func(x []float64) float64 {
		return (x[0]-1)*(x[0]-1) + 2*(x[1]+3)*(x[1]+3)
	}
	x, fx, converged, err := minimizeVector(bowl, []float64{0, 0}, 1e-9)
	if err != nil {
		t.Fatalf("minimize failed: %s", err)
	}
	if !converged {
		t.Fatal("bowl did not converge")
	}
	if !scalar.EqualWithinAbs(x[0], 1, 1e-3) || !scalar.EqualWithinAbs(x[1], -3, 1e-3) {
		t.Fatalf("minimum at %v", x)
	}
	if fx > 1e-5 {
		t.Fatalf("minimum value is %e", fx)
	}
}

func TestBoxed(t *testing.T) {
	f := func(x []float64) float64 { return x[0] } // unbounded below
	g := boxed(f, 0, 1)
	if got := g([]float64{0.5}); got != 0.5 {
		t.Fatalf("interior point modified: %f", got)
	}
	if got := g([]float64{-1}); got <= f([]float64{0}) {
		t.Fatalf("exterior point not penalized: %f", got)
	}
	// The penalized minimum stays at the bound.
	x, _, _, err := minimizeVector(g, []float64{0.5}, 1e-9)
	if err != nil {
		t.Fatalf("minimize failed: %s", err)
	}
	if clamped := clampTo(x, 0, 1); !scalar.EqualWithinAbs(clamped[0], 0, 1e-2) {
		t.Fatalf("bounded minimum at %f, want 0", clamped[0])
	}
}
