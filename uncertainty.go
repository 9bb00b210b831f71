package edl

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// UncertaintySample is one realization of the dispersed entry parameters, as
// fractional deviations from the nominal drag coefficient, lift coefficient,
// surface density and atmospheric scale height. The zero value is nominal.
type UncertaintySample struct {
	CD          float64
	CL          float64
	Density     float64
	ScaleHeight float64
}

// Dispersions draws correlated normal samples of the uncertain entry
// parameters. One generator feeds a whole Monte Carlo campaign; each sample
// builds its own System, so concurrent trajectories never share models.
type Dispersions struct {
	dist *distmv.Normal
}

// Default 1-σ fractional dispersions.
var dispersionSigmas = []float64{0.03, 0.03, 0.05, 0.02}

// NewDispersions returns a seeded dispersion generator with the default
// standard deviations on (ΔCD, ΔCL, Δρ0, Δhs).
func NewDispersions(seed uint64) *Dispersions {
	mu := []float64{0, 0, 0, 0}
	sigma := mat.NewSymDense(4, nil)
	for i, s := range dispersionSigmas {
		sigma.SetSym(i, i, s*s)
	}
	dist, ok := distmv.NewNormal(mu, sigma, rand.NewSource(seed))
	if !ok {
		panic(fmt.Errorf("dispersion covariance is not positive definite"))
	}
	return &Dispersions{dist: dist}
}

// Sample draws one realization of the uncertain parameters.
func (d *Dispersions) Sample() UncertaintySample {
	x := d.dist.Rand(nil)
	return UncertaintySample{CD: x[0], CL: x[1], Density: x[2], ScaleHeight: x[3]}
}
