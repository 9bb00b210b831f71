package edl

import (
	"fmt"
	"math"
)

// DynamicsMode defines an enum of the entry dynamics fidelities.
type DynamicsMode uint8

const (
	// NonRotating3DOF is the 3-degree-of-freedom model without Coriolis terms.
	NonRotating3DOF DynamicsMode = iota + 1
	// Rotating3DOF adds the planet-rotation correction terms to γ̇ and ψ̇.
	Rotating3DOF
	// Reduced2DOF is a planned longitudinal-only model, not yet supported.
	Reduced2DOF
)

func (m DynamicsMode) String() string {
	switch m {
	case NonRotating3DOF:
		return "3-DOF non-rotating"
	case Rotating3DOF:
		return "3-DOF rotating"
	case Reduced2DOF:
		return "2-DOF reduced"
	}
	panic("cannot stringify unknown dynamics mode")
}

// Control is the command vector applied to the equations of motion: bank
// angle σ, throttle fraction in [0,1], and the thrust-vector angle relative
// to the local horizontal (ignored while unpowered).
type Control struct {
	Bank        float64
	Throttle    float64
	ThrustAngle float64
}

// Ratios are the multiplicative corrections applied to the nominal
// aerodynamic model. They are threaded through every derivative call as
// values; nothing stores them between calls.
type Ratios struct {
	Lift float64
	Drag float64
}

// NominalRatios is a perfect model-truth match.
var NominalRatios = Ratios{1, 1}

// Entry holds the equations of motion for unpowered and powered flight
// through an atmosphere.
type Entry struct {
	Planet  Planet
	Vehicle EntryVehicle
	mode    DynamicsMode
	powered bool
}

// NewEntry returns the entry dynamics for a planet, vehicle and fidelity mode.
// Selecting Reduced2DOF is an error: that mode is reserved but not implemented.
func NewEntry(p Planet, v EntryVehicle, mode DynamicsMode) (*Entry, error) {
	switch mode {
	case NonRotating3DOF, Rotating3DOF:
		return &Entry{Planet: p, Vehicle: v, mode: mode}, nil
	case Reduced2DOF:
		return nil, fmt.Errorf("dynamics mode %s is not yet supported", mode)
	default:
		return nil, fmt.Errorf("unknown dynamics mode %d", mode)
	}
}

// EDL returns an entry model for a given realization of the uncertain
// parameters. EDL(UncertaintySample{}) is the nominal model.
func EDL(s UncertaintySample) *Entry {
	e, err := NewEntry(NewMars(s.Density, s.ScaleHeight), NewEntryVehicle(s.CD, s.CL), NonRotating3DOF)
	if err != nil {
		panic(err) // unreachable: the mode is hardcoded valid
	}
	return e
}

// Mode returns the fidelity this engine was constructed with.
func (e *Entry) Mode() DynamicsMode {
	return e.mode
}

// Ignite starts powered flight. This transition is one-way.
func (e *Entry) Ignite() {
	e.powered = true
}

// Powered returns whether the engines have been ignited.
func (e *Entry) Powered() bool {
	return e.powered
}

// Derivatives returns the state derivative for the given state, control and
// aero-ratio corrections. The state layout is [r θ φ v γ ψ s m].
//
// Callers must keep the state within the valid envelope (see ValidateState):
// the equations divide by v, cos γ and cos φ and are undefined outside it.
func (e *Entry) Derivatives(x []float64, u Control, ratios Ratios) []float64 {
	var dx []float64
	switch e.mode {
	case NonRotating3DOF:
		dx = e.derivatives3DOF(x, u, ratios)
	case Rotating3DOF:
		// The Coriolis corrections are added onto the non-rotating derivative
		// evaluated with the same control vector.
		dx = e.derivatives3DOF(x, u, ratios)
		γ, ψ, φ := x[ixFPA], x[ixHead], x[ixLat]
		ω := e.Planet.RotationRate()
		sψ, cψ := math.Sincos(ψ)
		sφ, cφ := math.Sincos(φ)
		// Vinh's rotating-planet correction terms. The exact form is pending
		// confirmation; see the design notes.
		dx[ixFPA] += 2 * ω * cψ * cφ
		dx[ixHead] += 2 * ω * (math.Tan(γ)*cφ*sψ - sφ)
	default:
		panic(fmt.Errorf("dynamics mode %s cannot be propagated", e.mode))
	}
	if e.powered {
		e.addThrust3DOF(dx, x, u)
	}
	return dx
}

// derivatives3DOF is the 3-DOF non-rotating planet model.
func (e *Entry) derivatives3DOF(x []float64, u Control, ratios Ratios) []float64 {
	r, θ, φ, v, γ, ψ := x[ixRad], x[ixLon], x[ixLat], x[ixVel], x[ixFPA], x[ixHead]
	_ = θ // longitude does not appear on the right-hand side

	h := r - e.Planet.Radius
	g := e.Planet.Gravity(r)
	L, D := e.aeroforce(h, v, ratios)

	sγ, cγ := math.Sincos(γ)
	sψ, cψ := math.Sincos(ψ)
	sφ, cφ := math.Sincos(φ)
	sσ, cσ := math.Sincos(u.Bank)

	dx := make([]float64, stateSize)
	dx[ixRad] = v * sγ
	dx[ixLon] = v * cγ * cψ / (r * cφ)
	dx[ixLat] = v * cγ * sψ / r
	dx[ixVel] = -D - g*sγ
	dx[ixFPA] = L/v*cσ + cγ*(v/r-g/v)
	dx[ixHead] = -L*sσ/(v*cγ) - v*cγ*cψ*(sφ/cφ)/r
	dx[ixRange] = -v / r * e.Planet.Radius * cγ
	dx[ixMass] = e.Vehicle.Mdot(u.Throttle)
	return dx
}

// addThrust3DOF adds the powered-flight contributions to v̇ and γ̇. Mass flow
// is already accounted for in the base derivative.
func (e *Entry) addThrust3DOF(dx, x []float64, u Control) {
	v, γ, m := x[ixVel], x[ixFPA], x[ixMass]
	T := e.Vehicle.ThrustApplied() * u.Throttle
	sδ, cδ := math.Sincos(u.ThrustAngle - γ)
	dx[ixVel] += T * cδ / m
	dx[ixFPA] += T * sδ / (m * v)
}

// aeroforce returns the specific lift and drag (m/s^2) at one altitude and
// speed, scaled by the provided correction ratios.
func (e *Entry) aeroforce(h, v float64, ratios Ratios) (L, D float64) {
	ρ, a := e.Planet.Atmosphere(h)
	cD, cL := e.Vehicle.AeroCoefficients(machNumber(v, a))
	f := 0.5 * ρ * e.Vehicle.Area * v * v / e.Vehicle.Mass
	return f * cL * ratios.Lift, f * cD * ratios.Drag
}

// Altitude computes the altitude from the radius, in meters or kilometers.
func (e *Entry) Altitude(r float64, km bool) float64 {
	h := r - e.Planet.Radius
	if km {
		return h / 1000
	}
	return h
}

// Energy computes the specific energy along radius/velocity samples. When
// normalized, each sample is scaled against the initial and final energies,
// which reparametrizes a trajectory on [0, 1].
func (e *Entry) Energy(r, v []float64, normalized bool) []float64 {
	if len(r) != len(v) {
		panic(fmt.Errorf("energy needs matching sample counts, got %d and %d", len(r), len(v)))
	}
	E := make([]float64, len(r))
	for i := range r {
		E[i] = 0.5*v[i]*v[i] + e.Planet.μ/e.Planet.Radius - e.Planet.μ/r[i]
	}
	if !normalized {
		return E
	}
	E0, Ef := E[0], E[len(E)-1]
	for i := range E {
		E[i] = (E[i] - E0) / (Ef - E0)
	}
	return E
}

// Aeroforces returns the nominal specific lift and drag magnitudes for
// sequences of radius and velocity samples, without ratio corrections.
func (e *Entry) Aeroforces(r, v []float64) (L, D []float64) {
	if len(r) != len(v) {
		panic(fmt.Errorf("aeroforces needs matching sample counts, got %d and %d", len(r), len(v)))
	}
	L = make([]float64, len(r))
	D = make([]float64, len(r))
	for i := range r {
		L[i], D[i] = e.aeroforce(r[i]-e.Planet.Radius, v[i], NominalRatios)
	}
	return
}
