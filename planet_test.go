package edl

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestPlanetGravity(t *testing.T) {
	if !scalar.EqualWithinAbs(Mars.SurfaceGravity(), 3.71, 0.01) {
		t.Fatalf("Mars surface gravity is %f", Mars.SurfaceGravity())
	}
	if !scalar.EqualWithinAbs(Earth.SurfaceGravity(), 9.8, 0.02) {
		t.Fatalf("Earth surface gravity is %f", Earth.SurfaceGravity())
	}
	if g := Mars.Gravity(Mars.Radius + 125e3); g >= Mars.SurfaceGravity() {
		t.Fatal("gravity does not decrease with altitude")
	}
}

func TestAtmosphere(t *testing.T) {
	prev, _ := Mars.Atmosphere(0)
	for _, h := range []float64{1e3, 7e3, 10e3, 40e3, 80e3, 125e3} {
		ρ, a := Mars.Atmosphere(h)
		if ρ >= prev {
			t.Fatalf("density not decreasing at h=%f: %e >= %e", h, ρ, prev)
		}
		if a <= 0 {
			t.Fatalf("non-positive speed of sound at h=%f", h)
		}
		prev = ρ
	}
	ρ0, _ := Mars.Atmosphere(0)
	if !scalar.EqualWithinAbs(ρ0, 0.0158, 1e-9) {
		t.Fatalf("surface density is %f", ρ0)
	}
	// Speed of sound stays defined far above the temperature model's range.
	if _, a := Mars.Atmosphere(200e3); a <= 0 {
		t.Fatal("speed of sound collapsed at high altitude")
	}
}

func TestAtmosphereDispersion(t *testing.T) {
	dense := NewMars(0.05, 0)
	ρNom, _ := Mars.Atmosphere(10e3)
	ρDisp, _ := dense.Atmosphere(10e3)
	if !scalar.EqualWithinAbs(ρDisp/ρNom, 1.05, 1e-9) {
		t.Fatalf("density dispersion not applied: ratio %f", ρDisp/ρNom)
	}
}

func TestRangeDueEast(t *testing.T) {
	// Flying due east along the equator: all downrange, no crossrange.
	dr, cr := Mars.Range(0, 0, 0, Radians(10), 0, true)
	want := Radians(10) * Mars.Radius / 1000
	if !scalar.EqualWithinAbs(dr, want, 1e-6) {
		t.Fatalf("downrange is %f km, want %f km", dr, want)
	}
	if !scalar.EqualWithinAbs(cr, 0, 1e-6) {
		t.Fatalf("crossrange is %f km for a due-east arc", cr)
	}
}

func TestRangeCrossrangeSign(t *testing.T) {
	// Heading east, target displaced north: positive crossrange, tiny downrange.
	dr, cr := Mars.Range(0, 0, 0, 0, Radians(1), true)
	if cr <= 0 {
		t.Fatalf("northward offset gave crossrange %f km", cr)
	}
	if !scalar.EqualWithinAbs(dr, 0, 1e-6) {
		t.Fatalf("northward offset gave downrange %f km", dr)
	}
	// Mirror it south.
	_, crS := Mars.Range(0, 0, 0, 0, Radians(-1), true)
	if !scalar.EqualWithinAbs(cr, -crS, 1e-6) {
		t.Fatalf("crossrange is not antisymmetric: %f vs %f", cr, crS)
	}
}

func TestPlanetFromString(t *testing.T) {
	for _, name := range []string{"Mars", "mars", "MARS"} {
		p, err := PlanetFromString(name)
		if err != nil {
			t.Fatalf("%s not found: %s", name, err)
		}
		if p.Name != "Mars" {
			t.Fatalf("got %s", p.Name)
		}
	}
	if _, err := PlanetFromString("Vulcan"); err == nil {
		t.Fatal("expected an error for an undefined planet")
	}
}
