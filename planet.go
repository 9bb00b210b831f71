package edl

import (
	"fmt"
	"math"
	"strings"
)

// Planet defines the central body of an entry trajectory, including its
// exponential atmosphere. The density and scale height stored here may carry
// a dispersion from the nominal values, cf. NewMars.
type Planet struct {
	Name   string
	Radius float64 // equatorial radius (m)
	μ      float64 // gravitational parameter (m^3/s^2)
	ω      float64 // rotation rate (rad/s)
	ρ0     float64 // surface atmospheric density (kg/m^3)
	hs     float64 // atmospheric scale height (m)
	γgas   float64 // ratio of specific heats of the atmosphere
	rgas   float64 // specific gas constant (J/kg/K)
}

// GM returns μ (which is unexported because it's a lowercase letter).
func (p Planet) GM() float64 {
	return p.μ
}

// RotationRate returns ω in rad/s.
func (p Planet) RotationRate() float64 {
	return p.ω
}

// SurfaceGravity returns the gravitational acceleration at the surface.
func (p Planet) SurfaceGravity() float64 {
	return p.μ / (p.Radius * p.Radius)
}

// Gravity returns the gravitational acceleration at radius r.
func (p Planet) Gravity(r float64) float64 {
	return p.μ / (r * r)
}

// String implements the Stringer interface.
func (p Planet) String() string {
	return p.Name + " body"
}

// Atmosphere returns the density and speed of sound at a given altitude.
// Density follows the exponential law ρ0 exp(-h/hs); the speed of sound uses
// a two-regime linear temperature profile (NASA Glenn model for Mars).
func (p Planet) Atmosphere(h float64) (ρ, a float64) {
	ρ = p.ρ0 * math.Exp(-h/p.hs)
	var tc float64 // temperature in Celsius
	switch p.Name {
	case "Mars":
		if h < 7000 {
			tc = -31 - 0.000998*h
		} else {
			tc = -23.4 - 0.00222*h
		}
	default:
		// Linear lapse up to the tropopause, isothermal above.
		tc = 15 - 0.0065*math.Min(h, 11000)
	}
	tk := tc + 273.15
	if tk < 100 {
		tk = 100 // temperature floor keeps the speed of sound defined at high altitudes
	}
	a = math.Sqrt(p.γgas * p.rgas * tk)
	return
}

// Range returns the downrange and crossrange distances from the start point
// (θ0, φ0) with initial heading ψ0 to the point (θ, φ), by decomposing the
// great-circle arc into along-heading and cross-heading components.
func (p Planet) Range(θ0, φ0, ψ0, θ, φ float64, km bool) (dr, cr float64) {
	Δθ := θ - θ0
	sφ0, cφ0 := math.Sincos(φ0)
	sφ, cφ := math.Sincos(φ)
	sΔ, cΔ := math.Sincos(Δθ)
	d := math.Acos(math.Min(1, math.Max(-1, sφ0*sφ+cφ0*cφ*cΔ)))
	// Bearing to the target measured like the heading ψ (from East, positive North).
	b := math.Atan2(cφ0*sφ-sφ0*cφ*cΔ, cφ*sΔ)
	sd, cd := math.Sincos(d)
	sb, cb := math.Sincos(b - ψ0)
	cr = math.Asin(sd*sb) * p.Radius
	dr = math.Atan2(sd*cb, cd) * p.Radius
	if km {
		dr /= 1000
		cr /= 1000
	}
	return
}

// NewMars returns Mars with fractional dispersions applied to the surface
// density and scale height. NewMars(0, 0) is the nominal planet.
func NewMars(Δρ0, Δhs float64) Planet {
	return Planet{"Mars", 3397e3, 4.2830e13, 7.095e-5, (1 + Δρ0) * 0.0158, (1 + Δhs) * 9354.5, 1.29, 188.92}
}

// NewEarth returns Earth with fractional dispersions applied to the surface
// density and scale height.
func NewEarth(Δρ0, Δhs float64) Planet {
	return Planet{"Earth", 6378.1e3, 3.98600433e14, 7.2921150e-5, (1 + Δρ0) * 1.225, (1 + Δhs) * 8500.0, 1.4, 287.058}
}

// Mars is where this vehicle is headed.
var Mars = NewMars(0, 0)

// Earth is home.
var Earth = NewEarth(0, 0)

// PlanetFromString returns the nominal planet from its name.
func PlanetFromString(name string) (Planet, error) {
	switch strings.ToLower(name) {
	case "mars":
		return Mars, nil
	case "earth":
		return Earth, nil
	default:
		return Planet{}, fmt.Errorf("undefined planet '%s'", name)
	}
}
