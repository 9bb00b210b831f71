package edl

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

// entryInterface is the reference initial condition used across the tests.
func entryInterface() []float64 {
	return []float64{3540e3, Radians(-90.07), Radians(-43.90), 5505, Radians(-14.15), Radians(4.99), 1000e3, 8500}
}

func TestNewEntryModes(t *testing.T) {
	if _, err := NewEntry(Mars, NewEntryVehicle(0, 0), NonRotating3DOF); err != nil {
		t.Fatalf("3-DOF non-rotating rejected: %s", err)
	}
	if _, err := NewEntry(Mars, NewEntryVehicle(0, 0), Rotating3DOF); err != nil {
		t.Fatalf("3-DOF rotating rejected: %s", err)
	}
	if _, err := NewEntry(Mars, NewEntryVehicle(0, 0), Reduced2DOF); err == nil {
		t.Fatal("2-DOF reduced mode must be rejected")
	}
	if _, err := NewEntry(Mars, NewEntryVehicle(0, 0), DynamicsMode(42)); err == nil {
		t.Fatal("unknown mode must be rejected")
	}
}

func TestIgniteOneWay(t *testing.T) {
	e := EDL(UncertaintySample{})
	if e.Powered() {
		t.Fatal("new model is powered")
	}
	e.Ignite()
	e.Ignite()
	if !e.Powered() {
		t.Fatal("ignition did not stick")
	}
}

func TestDerivativesKinematics(t *testing.T) {
	e := EDL(UncertaintySample{})
	x := entryInterface()
	u := Control{Bank: Radians(-15)}
	dx := e.Derivatives(x, u, NominalRatios)

	r, v, γ, ψ, φ := x[ixRad], x[ixVel], x[ixFPA], x[ixHead], x[ixLat]
	if want := v * math.Sin(γ); !scalar.EqualWithinAbs(dx[ixRad], want, 1e-9) {
		t.Fatalf("ṙ = %f, want %f", dx[ixRad], want)
	}
	if want := v * math.Cos(γ) * math.Cos(ψ) / (r * math.Cos(φ)); !scalar.EqualWithinAbs(dx[ixLon], want, 1e-15) {
		t.Fatalf("θ̇ = %e, want %e", dx[ixLon], want)
	}
	if want := v * math.Cos(γ) * math.Sin(ψ) / r; !scalar.EqualWithinAbs(dx[ixLat], want, 1e-15) {
		t.Fatalf("φ̇ = %e, want %e", dx[ixLat], want)
	}
	if want := -v / r * e.Planet.Radius * math.Cos(γ); !scalar.EqualWithinAbs(dx[ixRange], want, 1e-9) {
		t.Fatalf("ṡ = %f, want %f", dx[ixRange], want)
	}
	if dx[ixMass] != 0 {
		t.Fatalf("unpowered flight burns mass: %f", dx[ixMass])
	}
	// At 143 km the atmosphere is negligible: v̇ is gravity along the path.
	if want := -e.Planet.Gravity(r) * math.Sin(γ); !scalar.EqualWithinAbs(dx[ixVel], want, 1e-3) {
		t.Fatalf("v̇ = %f, want about %f", dx[ixVel], want)
	}
}

func TestDerivativesDeterministic(t *testing.T) {
	e := EDL(UncertaintySample{})
	x := entryInterface()
	u := Control{Bank: Radians(30)}
	a := e.Derivatives(x, u, NominalRatios)
	b := e.Derivatives(x, u, NominalRatios)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("component %d not deterministic: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestDerivativesFinite(t *testing.T) {
	e := EDL(UncertaintySample{})
	for _, h := range []float64{1e3, 20e3, 60e3, 127e3} {
		for _, v := range []float64{300, 1500, 5505} {
			for _, γdeg := range []float64{-89, -14.15, 0, 10} {
				x := entryInterface()
				x[ixRad] = Mars.Radius + h
				x[ixVel] = v
				x[ixFPA] = Radians(γdeg)
				dx := e.Derivatives(x, Control{Bank: Radians(45)}, NominalRatios)
				for i, d := range dx {
					if math.IsNaN(d) || math.IsInf(d, 0) {
						t.Fatalf("dx[%d] not finite at h=%f v=%f γ=%f°: %f", i, h, v, γdeg, d)
					}
				}
			}
		}
	}
}

func TestDerivativesRatios(t *testing.T) {
	e := EDL(UncertaintySample{})
	x := entryInterface()
	x[ixRad] = Mars.Radius + 30e3 // inside the sensible atmosphere
	u := Control{}
	nominal := e.Derivatives(x, u, NominalRatios)
	doubled := e.Derivatives(x, u, Ratios{Lift: 1, Drag: 2})
	_, D := e.Aeroforces([]float64{x[ixRad]}, []float64{x[ixVel]})
	if !scalar.EqualWithinAbs(doubled[ixVel]-nominal[ixVel], -D[0], 1e-9) {
		t.Fatalf("doubling the drag ratio changed v̇ by %f, want %f", doubled[ixVel]-nominal[ixVel], -D[0])
	}
	if doubled[ixFPA] != nominal[ixFPA] {
		t.Fatal("drag ratio leaked into γ̇")
	}
}

func TestRotatingCorrections(t *testing.T) {
	still, _ := NewEntry(Mars, NewEntryVehicle(0, 0), NonRotating3DOF)
	rot, _ := NewEntry(Mars, NewEntryVehicle(0, 0), Rotating3DOF)
	x := entryInterface()
	u := Control{Bank: Radians(-15)}
	a := still.Derivatives(x, u, NominalRatios)
	b := rot.Derivatives(x, u, NominalRatios)
	for _, ix := range []int{ixRad, ixLon, ixLat, ixVel, ixRange, ixMass} {
		if a[ix] != b[ix] {
			t.Fatalf("rotation leaked into component %d", ix)
		}
	}
	γ, ψ, φ := x[ixFPA], x[ixHead], x[ixLat]
	ω := Mars.RotationRate()
	if want := 2 * ω * math.Cos(ψ) * math.Cos(φ); !scalar.EqualWithinAbs(b[ixFPA]-a[ixFPA], want, 1e-15) {
		t.Fatalf("γ̇ correction is %e, want %e", b[ixFPA]-a[ixFPA], want)
	}
	if want := 2 * ω * (math.Tan(γ)*math.Cos(φ)*math.Sin(ψ) - math.Sin(φ)); !scalar.EqualWithinAbs(b[ixHead]-a[ixHead], want, 1e-15) {
		t.Fatalf("ψ̇ correction is %e, want %e", b[ixHead]-a[ixHead], want)
	}
}

func TestPoweredDerivatives(t *testing.T) {
	e := EDL(UncertaintySample{})
	x := entryInterface()
	x[ixRad] = Mars.Radius + 2e3
	x[ixVel] = 400
	u := Control{Throttle: 1, ThrustAngle: x[ixFPA] + math.Pi} // retrograde
	coast := e.Derivatives(x, Control{}, NominalRatios)
	e.Ignite()
	burn := e.Derivatives(x, u, NominalRatios)
	T := e.Vehicle.ThrustApplied()
	if want := coast[ixVel] - T/x[ixMass]; !scalar.EqualWithinAbs(burn[ixVel], want, 1e-9) {
		t.Fatalf("retrograde burn v̇ = %f, want %f", burn[ixVel], want)
	}
	if burn[ixMass] >= 0 {
		t.Fatalf("burn does not consume mass: %f", burn[ixMass])
	}
	if want := e.Vehicle.Mdot(1); !scalar.EqualWithinAbs(burn[ixMass], want, 1e-12) {
		t.Fatalf("ṁ = %f, want %f", burn[ixMass], want)
	}
}

func TestEnergy(t *testing.T) {
	e := EDL(UncertaintySample{})
	r := []float64{3540e3, 3500e3, 3420e3}
	v := []float64{5505, 4000, 500}
	E := e.Energy(r, v, false)
	for i := 1; i < len(E); i++ {
		if E[i] >= E[i-1] {
			t.Fatalf("energy not decreasing along a slowing descent: %f >= %f", E[i], E[i-1])
		}
	}
	En := e.Energy(r, v, true)
	if En[0] != 0 || En[len(En)-1] != 1 {
		t.Fatalf("normalized energy endpoints are %f and %f", En[0], En[len(En)-1])
	}
}

func TestAltitude(t *testing.T) {
	e := EDL(UncertaintySample{})
	if h := e.Altitude(Mars.Radius+125e3, true); !scalar.EqualWithinAbs(h, 125, 1e-9) {
		t.Fatalf("altitude is %f km", h)
	}
	if h := e.Altitude(Mars.Radius+125e3, false); !scalar.EqualWithinAbs(h, 125e3, 1e-6) {
		t.Fatalf("altitude is %f m", h)
	}
}
