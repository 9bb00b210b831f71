package edl

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

/* Bounded minimizers backing the controller and the offline planner. The
vector path is gonum's Nelder-Mead; the scalar path is Brent's bounded
method, which the ecosystem does not provide. */

// minimizeScalarBounded minimizes f over [lo, hi] using Brent's method
// (golden-section bracketing with successive parabolic interpolation).
// It returns the best point found and whether the tolerance was met within
// maxIter iterations.
func minimizeScalarBounded(f func(float64) float64, lo, hi, tol float64, maxIter int) (x, fx float64, converged bool) {
	const golden = 0.3819660112501051 // 2 - φ
	a, b := lo, hi
	x = a + golden*(b-a)
	w, v := x, x
	fx = f(x)
	fw, fv := fx, fx
	var d, e float64
	for i := 0; i < maxIter; i++ {
		m := 0.5 * (a + b)
		tol1 := tol*math.Abs(x) + 1e-11
		tol2 := 2 * tol1
		if math.Abs(x-m) <= tol2-0.5*(b-a) {
			return x, fx, true
		}
		useGolden := true
		if math.Abs(e) > tol1 {
			// Try a parabolic fit through x, w, v.
			r := (x - w) * (fx - fv)
			q := (x - v) * (fx - fw)
			p := (x-v)*q - (x-w)*r
			q = 2 * (q - r)
			if q > 0 {
				p = -p
			}
			q = math.Abs(q)
			eTmp := e
			e = d
			if math.Abs(p) < math.Abs(0.5*q*eTmp) && p > q*(a-x) && p < q*(b-x) {
				d = p / q
				u := x + d
				if u-a < tol2 || b-u < tol2 {
					d = math.Copysign(tol1, m-x)
				}
				useGolden = false
			}
		}
		if useGolden {
			if x < m {
				e = b - x
			} else {
				e = a - x
			}
			d = golden * e
		}
		var u float64
		if math.Abs(d) >= tol1 {
			u = x + d
		} else {
			u = x + math.Copysign(tol1, d)
		}
		fu := f(u)
		if fu <= fx {
			if u < x {
				b = x
			} else {
				a = x
			}
			v, fv = w, fw
			w, fw = x, fx
			x, fx = u, fu
		} else {
			if u < x {
				a = u
			} else {
				b = u
			}
			if fu <= fw || w == x {
				v, fv = w, fw
				w, fw = u, fu
			} else if fu <= fv || v == x || v == w {
				v, fv = u, fu
			}
		}
	}
	return x, fx, false
}

// minimizeVector minimizes f from x0 with Nelder-Mead. It returns the best
// point, its cost, and whether the optimizer reported convergence — the
// caller decides what to do with a non-converged point, the best found value
// is always usable.
func minimizeVector(f func([]float64) float64, x0 []float64, tol float64) ([]float64, float64, bool, error) {
	problem := optimize.Problem{Func: f}
	settings := &optimize.Settings{
		Converger: &optimize.FunctionConverge{Absolute: tol, Iterations: 50},
	}
	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if result == nil {
		return append([]float64{}, x0...), f(x0), false, err
	}
	converged := result.Status == optimize.FunctionConvergence || result.Status == optimize.GradientThreshold
	if err != nil && !converged {
		return result.X, result.F, false, err
	}
	return result.X, result.F, converged, nil
}

// boxed wraps f so that candidates outside [lo, hi]^n are clamped into the
// box and charged a quadratic penalty, letting an unconstrained method
// respect bounds.
func boxed(f func([]float64) float64, lo, hi float64) func([]float64) float64 {
	if hi <= lo {
		panic(fmt.Errorf("invalid bounds [%f, %f]", lo, hi))
	}
	return func(x []float64) float64 {
		xc := make([]float64, len(x))
		pen := 0.0
		for i, v := range x {
			c := v
			if c < lo {
				pen += (lo - c) * (lo - c)
				c = lo
			} else if c > hi {
				pen += (c - hi) * (c - hi)
				c = hi
			}
			xc[i] = c
		}
		return f(xc) + 1e4*pen
	}
}

// clampTo clamps every component of x into [lo, hi].
func clampTo(x []float64, lo, hi float64) []float64 {
	xc := make([]float64, len(x))
	for i, v := range x {
		xc[i] = math.Min(hi, math.Max(lo, v))
	}
	return xc
}
