package edl

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/mat"
)

// Reference is the immutable drag (and bank) profile tracked by the
// receding-horizon controller, as a mapping from planet-relative velocity.
// It is built once from an offline trajectory and never mutated.
type Reference struct {
	drag       interp.PiecewiseLinear
	bank       interp.PiecewiseLinear
	vMin, vMax float64
}

// NewReference builds a reference from a propagated history. The velocity
// must decrease along the trajectory (samples where it does not are skipped);
// it is an error if fewer than two usable samples remain.
func NewReference(h *History) (*Reference, error) {
	n := len(h.States)
	if n < 2 {
		return nil, fmt.Errorf("reference needs at least 2 states, got %d", n)
	}
	// Columns: velocity, drag, bank — newest first so velocity ascends.
	cols := mat.NewDense(n, 3, nil)
	for i, st := range h.States {
		row := n - 1 - i
		cols.Set(row, 0, st.X[ixVel])
		cols.Set(row, 1, st.Drag)
		cols.Set(row, 2, st.Bank)
	}
	vs := make([]float64, 0, n)
	ds := make([]float64, 0, n)
	bs := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		v := cols.At(i, 0)
		if len(vs) > 0 && v <= vs[len(vs)-1] {
			continue // interpolation needs strictly increasing abscissae
		}
		vs = append(vs, v)
		ds = append(ds, cols.At(i, 1))
		bs = append(bs, cols.At(i, 2))
	}
	if len(vs) < 2 {
		return nil, fmt.Errorf("velocity is not monotonic over the history")
	}
	ref := &Reference{vMin: vs[0], vMax: vs[len(vs)-1]}
	if err := ref.drag.Fit(vs, ds); err != nil {
		return nil, err
	}
	if err := ref.bank.Fit(vs, bs); err != nil {
		return nil, err
	}
	return ref, nil
}

func (r *Reference) clamp(v float64) float64 {
	if v < r.vMin {
		return r.vMin
	}
	if v > r.vMax {
		return r.vMax
	}
	return v
}

// Drag returns the reference specific drag at a velocity, in m/s^2.
// Velocities outside the profiled span are clamped to its ends.
func (r *Reference) Drag(v float64) float64 {
	return r.drag.Predict(r.clamp(v))
}

// Bank returns the reference bank angle at a velocity, in radians.
func (r *Reference) Bank(v float64) float64 {
	return r.bank.Predict(r.clamp(v))
}

// Span returns the velocity interval covered by the reference.
func (r *Reference) Span() (vMin, vMax float64) {
	return r.vMin, r.vMax
}
