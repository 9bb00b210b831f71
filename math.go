package edl

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

const (
	deg2rad = math.Pi / 180
	g0      = 9.80665 // standard gravity, for Isp conversions (m/s^2)
)

// State vector component indices, shared by the truth and nav sub-states.
const (
	ixRad   = iota // radius from planet center (m)
	ixLon          // longitude θ (rad)
	ixLat          // latitude φ (rad)
	ixVel          // planet-relative speed (m/s)
	ixFPA          // flight-path angle γ (rad)
	ixHead         // heading ψ (rad)
	ixRange        // along-track range s (m)
	ixMass         // vehicle mass (kg)
)

// stateSize is the number of scalar components of a single vehicle state.
const stateSize = 8

// Radians converts degrees to radians, keeping the sign.
func Radians(deg float64) float64 {
	return deg * deg2rad
}

// Degrees converts radians to degrees, keeping the sign.
func Degrees(rad float64) float64 {
	return rad / deg2rad
}

// sign returns the sign of a given number, with sign(0) = 1.
func sign(v float64) float64 {
	if scalar.EqualWithinAbs(v, 0, 1e-12) {
		return 1
	}
	return v / math.Abs(v)
}

// linspace returns num evenly spaced samples over [start, stop].
func linspace(start, stop float64, num int) []float64 {
	if num < 2 {
		panic("linspace needs at least two samples")
	}
	s := make([]float64, num)
	step := (stop - start) / float64(num-1)
	for i := range s {
		s[i] = start + float64(i)*step
	}
	s[num-1] = stop
	return s
}

// ValidateState checks that a vehicle state is inside the envelope on which
// the equations of motion are defined: positive radius and speed, flight-path
// angle and latitude both strictly within ±π/2. The derivatives divide by
// v, cos γ and cos φ, so states outside this envelope produce NaNs.
func ValidateState(x []float64) error {
	if len(x) < stateSize {
		return fmt.Errorf("state has %d components, need %d", len(x), stateSize)
	}
	if x[ixRad] <= 0 {
		return fmt.Errorf("non-positive radius r=%f", x[ixRad])
	}
	if x[ixVel] <= 0 {
		return fmt.Errorf("non-positive speed v=%f", x[ixVel])
	}
	if math.Abs(x[ixFPA]) >= math.Pi/2 {
		return fmt.Errorf("flight-path angle out of (-π/2, π/2): γ=%f", x[ixFPA])
	}
	if math.Abs(x[ixLat]) >= math.Pi/2 {
		return fmt.Errorf("latitude out of (-π/2, π/2): φ=%f", x[ixLat])
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("state component %d is not finite: %f", i, v)
		}
	}
	return nil
}
