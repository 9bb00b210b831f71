package edl

import "fmt"

// Trigger defines a termination condition evaluated on propagated states.
type Trigger interface {
	// Fired returns whether the condition is satisfied at this state.
	Fired(st EntryState) bool
	String() string
}

// AccelerationTrigger fires when the sensed drag deceleration exceeds a
// threshold, in m/s^2.
type AccelerationTrigger struct {
	Threshold float64
}

// Fired implements the Trigger interface.
func (t AccelerationTrigger) Fired(st EntryState) bool {
	return st.Drag >= t.Threshold
}

func (t AccelerationTrigger) String() string {
	return fmt.Sprintf("drag ≥ %.2f m/s²", t.Threshold)
}

// VelocityTrigger fires when the planet-relative speed drops below a
// threshold, in m/s. Typically a parachute-deploy condition.
type VelocityTrigger struct {
	Velocity float64
}

// Fired implements the Trigger interface.
func (t VelocityTrigger) Fired(st EntryState) bool {
	return st.X[ixVel] <= t.Velocity
}

func (t VelocityTrigger) String() string {
	return fmt.Sprintf("v ≤ %.0f m/s", t.Velocity)
}

// AltitudeTrigger fires when the altitude drops below a threshold, in meters.
type AltitudeTrigger struct {
	Altitude float64
	Planet   Planet
}

// Fired implements the Trigger interface.
func (t AltitudeTrigger) Fired(st EntryState) bool {
	return st.X[ixRad]-t.Planet.Radius <= t.Altitude
}

func (t AltitudeTrigger) String() string {
	return fmt.Sprintf("h ≤ %.0f m", t.Altitude)
}

// RangeToGoTrigger fires when the along-track range-to-go reaches a
// threshold, in meters.
type RangeToGoTrigger struct {
	RangeToGo float64
}

// Fired implements the Trigger interface.
func (t RangeToGoTrigger) Fired(st EntryState) bool {
	return st.X[ixRange] <= t.RangeToGo
}

func (t RangeToGoTrigger) String() string {
	return fmt.Sprintf("s ≤ %.0f m", t.RangeToGo)
}

// TimeTrigger fires at a given elapsed time, in seconds.
type TimeTrigger struct {
	Time float64
}

// Fired implements the Trigger interface.
func (t TimeTrigger) Fired(st EntryState) bool {
	return st.T >= t.Time
}

func (t TimeTrigger) String() string {
	return fmt.Sprintf("t ≥ %.1f s", t.Time)
}

// FirstTriggered returns the index of the first state in the history at which
// the trigger fires. It is an error when the trigger never fires: indexing
// past the end of a trajectory is undefined and must not be silent.
func FirstTriggered(h *History, trig Trigger) (int, error) {
	for i, st := range h.States {
		if trig.Fired(st) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("trigger %s never fired over %d states", trig, len(h.States))
}
