package edl

import (
	"fmt"

	"github.com/spf13/viper"
)

// Scenario bundles everything a driver needs for one guided-entry run, read
// from a TOML file.
type Scenario struct {
	Planet      Planet
	Vehicle     EntryVehicle
	X0          []float64 // initial truth state [r θ φ v γ ψ s m]
	SwitchGuess []float64 // planner initial guess (s)
	Target      Target
	MPC         MPCOptions
	BankLo      float64 // bank magnitude bounds for the controller (rad)
	BankHi      float64
	FilterGain  float64
	TMax        float64 // propagation horizon (s)
	PreEntryAcc float64 // deceleration starting the guided phase (m/s^2)
	Seed        uint64
	Output      string
}

// floatSlice reads a TOML array of numbers.
func floatSlice(v *viper.Viper, key string) ([]float64, error) {
	raw, ok := v.Get(key).([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s is not an array", key)
	}
	out := make([]float64, len(raw))
	for i, r := range raw {
		switch x := r.(type) {
		case float64:
			out[i] = x
		case int64:
			out[i] = float64(x)
		case int:
			out[i] = float64(x)
		default:
			return nil, fmt.Errorf("%s[%d] is not a number: %v", key, i, r)
		}
	}
	return out, nil
}

// LoadScenario reads a scenario TOML file (without extension) from the given
// directory. Angular quantities in the file are in degrees.
func LoadScenario(name, path string) (*Scenario, error) {
	v := viper.New()
	v.SetConfigName(name)
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%s/%s.toml: %s", path, name, err)
	}

	planet, err := PlanetFromString(v.GetString("planet.name"))
	if err != nil {
		return nil, err
	}
	vehicle := NewEntryVehicle(0, 0)
	if m := v.GetFloat64("vehicle.mass"); m > 0 {
		vehicle.Mass = m
	}
	if a := v.GetFloat64("vehicle.area"); a > 0 {
		vehicle.Area = a
	}

	mass := vehicle.Mass
	if m := v.GetFloat64("initial.mass"); m > 0 {
		mass = m
	}
	x0 := []float64{
		planet.Radius + v.GetFloat64("initial.altitude"),
		Radians(v.GetFloat64("initial.longitude")),
		Radians(v.GetFloat64("initial.latitude")),
		v.GetFloat64("initial.velocity"),
		Radians(v.GetFloat64("initial.fpa")),
		Radians(v.GetFloat64("initial.heading")),
		v.GetFloat64("initial.range"),
		mass,
	}
	if err := ValidateState(x0); err != nil {
		return nil, fmt.Errorf("scenario initial state: %s", err)
	}

	guess, err := floatSlice(v, "planner.guess")
	if err != nil {
		return nil, err
	}

	opts, err := NewMPCOptions(v.GetInt("guidance.segments"), v.GetFloat64("guidance.horizon"))
	if err != nil {
		return nil, err
	}

	return &Scenario{
		Planet:      planet,
		Vehicle:     vehicle,
		X0:          x0,
		SwitchGuess: guess,
		Target:      Target{DR: v.GetFloat64("target.downrange"), CR: v.GetFloat64("target.crossrange")},
		MPC:         opts,
		BankLo:      Radians(v.GetFloat64("guidance.bank_min")),
		BankHi:      Radians(v.GetFloat64("guidance.bank_max")),
		FilterGain:  v.GetFloat64("guidance.filter_gain"),
		TMax:        v.GetFloat64("mission.tmax"),
		PreEntryAcc: v.GetFloat64("mission.pre_entry_acc"),
		Seed:        uint64(v.GetInt64("mission.seed")),
		Output:      v.GetString("mission.output"),
	}, nil
}
