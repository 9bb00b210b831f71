package edl

import "math"

// Engine defines a throttleable descent engine.
type Engine interface {
	// Thrust returns the maximum thrust in Newtons.
	Thrust() float64
	// Isp returns the specific impulse in seconds.
	Isp() float64
}

/* Available engines */

// MR80B is the Aerojet MR-80B monopropellant engine flown on the MSL descent stage.
type MR80B struct{}

// Thrust implements the Engine interface.
func (e MR80B) Thrust() float64 {
	return 3100
}

// Isp implements the Engine interface.
func (e MR80B) Isp() float64 {
	return 221
}

// GenericEngine is a generic throttleable engine.
type GenericEngine struct {
	thrust float64
	isp    float64
}

// Thrust implements the Engine interface.
func (e GenericEngine) Thrust() float64 {
	return e.thrust
}

// Isp implements the Engine interface.
func (e GenericEngine) Isp() float64 {
	return e.isp
}

// NewGenericEngine returns a generic engine from its max thrust and Isp.
func NewGenericEngine(thrust, isp float64) GenericEngine {
	return GenericEngine{thrust, isp}
}

// EntryVehicle defines a lifting entry vehicle. The aerodynamic coefficients
// stored here may carry a dispersion from the nominal values, cf. NewEntryVehicle.
type EntryVehicle struct {
	Name    string
	Area    float64 // aerodynamic reference area (m^2)
	Mass    float64 // reference mass used in the specific aeroforces (kg)
	cD      float64 // hypersonic drag coefficient
	cL      float64 // hypersonic lift coefficient
	Engine  Engine
	Engines int // number of descent engines
}

// AeroCoefficients returns the drag and lift coefficients at a given Mach
// number. The coefficients are constant in the hypersonic regime this model
// covers.
func (v EntryVehicle) AeroCoefficients(mach float64) (cD, cL float64) {
	return v.cD, v.cL
}

// Mdot returns the mass flow rate for a given throttle fraction, in kg/s.
// It is negative or zero: mass never increases.
func (v EntryVehicle) Mdot(throttle float64) float64 {
	if throttle <= 0 || v.Engine == nil {
		return 0
	}
	return -float64(v.Engines) * v.Engine.Thrust() * throttle / (v.Engine.Isp() * g0)
}

// ThrustApplied returns the total thrust at full throttle, in Newtons.
func (v EntryVehicle) ThrustApplied() float64 {
	if v.Engine == nil {
		return 0
	}
	return float64(v.Engines) * v.Engine.Thrust()
}

// BallisticCoefficient returns m/(cD·A) in kg/m^2.
func (v EntryVehicle) BallisticCoefficient() float64 {
	return v.Mass / (v.cD * v.Area)
}

// LiftToDrag returns the hypersonic lift-to-drag ratio.
func (v EntryVehicle) LiftToDrag() float64 {
	return v.cL / v.cD
}

// NewEntryVehicle returns an MSL-class entry vehicle with fractional
// dispersions applied to the aerodynamic coefficients.
// NewEntryVehicle(0, 0) is the nominal vehicle.
func NewEntryVehicle(ΔcD, ΔcL float64) EntryVehicle {
	return EntryVehicle{
		Name:    "MSL-class",
		Area:    15.8,
		Mass:    2804,
		cD:      (1 + ΔcD) * 1.408,
		cL:      (1 + ΔcL) * 0.357,
		Engine:  MR80B{},
		Engines: 8,
	}
}

// machNumber returns v/a, guarding against a zero speed of sound.
func machNumber(v, a float64) float64 {
	if a <= 0 {
		return math.Inf(1)
	}
	return v / a
}
