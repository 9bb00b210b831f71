package edl

import (
	"strings"
	"testing"
)

func trajState(t, v, h, rtg, drag float64) EntryState {
	x := make([]float64, stateSize)
	x[ixRad] = Mars.Radius + h
	x[ixVel] = v
	x[ixRange] = rtg
	return EntryState{T: t, X: x, Drag: drag}
}

func TestTriggers(t *testing.T) {
	st := trajState(100, 470, 9e3, 20e3, 8)
	for _, c := range []struct {
		trig  Trigger
		fired bool
	}{
		{AccelerationTrigger{Threshold: 5}, true},
		{AccelerationTrigger{Threshold: 10}, false},
		{VelocityTrigger{Velocity: 500}, true},
		{VelocityTrigger{Velocity: 400}, false},
		{AltitudeTrigger{Altitude: 10e3, Planet: Mars}, true},
		{AltitudeTrigger{Altitude: 5e3, Planet: Mars}, false},
		{RangeToGoTrigger{RangeToGo: 25e3}, true},
		{RangeToGoTrigger{RangeToGo: 10e3}, false},
		{TimeTrigger{Time: 100}, true},
		{TimeTrigger{Time: 200}, false},
	} {
		if got := c.trig.Fired(st); got != c.fired {
			t.Fatalf("%s fired=%v, want %v", c.trig, got, c.fired)
		}
	}
}

func TestFirstTriggered(t *testing.T) {
	h := &History{}
	for i := 0; i < 10; i++ {
		h.add(trajState(float64(i), 5505-float64(i)*600, 143e3, 1000e3, 0))
	}
	idx, err := FirstTriggered(h, VelocityTrigger{Velocity: 3000})
	if err != nil {
		t.Fatalf("trigger not found: %s", err)
	}
	// v(5) = 2505 is the first sample at or below 3000.
	if idx != 5 {
		t.Fatalf("first trigger at index %d, want 5", idx)
	}
	if _, err = FirstTriggered(h, VelocityTrigger{Velocity: 10}); err == nil {
		t.Fatal("expected an error when the trigger never fires")
	} else if !strings.Contains(err.Error(), "never fired") {
		t.Fatalf("unexpected error: %s", err)
	}
}
