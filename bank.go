package edl

import (
	"fmt"
	"math"
)

// Default bank profile limits, in radians.
var (
	DefaultMinBank      = Radians(15)
	DefaultMaxBank      = Radians(85)
	DefaultMaxBankRate  = Radians(20) // rad/s
	DefaultMaxBankAccel = Radians(5)  // rad/s^2
)

// BankProfile defines an open-loop bank-angle schedule over an independent
// variable (time, or negative velocity for the velocity parametrization).
type BankProfile interface {
	// Bank returns the bank angle at one sample of the independent variable.
	Bank(t float64) float64
	// Banks returns the bank angle at a sequence of samples.
	Banks(ts []float64) []float64
	// SwitchTimes returns the switch points this profile was built from.
	SwitchTimes() []float64
}

// banks is the common sequence implementation.
func banks(p BankProfile, ts []float64) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = p.Bank(t)
	}
	return out
}

// RectBankProfile is the three-switch rectangular profile: hold at -min, ramp
// at the maximum rate to +max, hold, ramp down to -max, hold, ramp back up to
// the +min tail. Ramps are rate-limited but not acceleration-limited.
type RectBankProfile struct {
	T1, T2, T3       float64
	MinBank, MaxBank float64
	MaxRate          float64
	ti1, ti2, ti3    float64 // ramp completion times
}

// NewRectBankProfile returns a rectangular profile over the default bank
// limits, or an error when the switch times do not leave room for the ramps.
func NewRectBankProfile(t1, t2, t3 float64) (*RectBankProfile, error) {
	p := &RectBankProfile{T1: t1, T2: t2, T3: t3, MinBank: DefaultMinBank, MaxBank: DefaultMaxBank, MaxRate: DefaultMaxBankRate}
	p.ti1 = t1 + (p.MaxBank+p.MinBank)/p.MaxRate
	p.ti2 = t2 + 2*p.MaxBank/p.MaxRate
	p.ti3 = t3 + (p.MaxBank+p.MinBank)/p.MaxRate
	if p.ti1 > t2 || p.ti2 > t3 {
		return nil, fmt.Errorf("switch times (%f, %f, %f) do not leave room for rate-limited ramps", t1, t2, t3)
	}
	return p, nil
}

// Bank implements the BankProfile interface.
func (p *RectBankProfile) Bank(t float64) float64 {
	switch {
	case t < p.T1:
		return -p.MinBank
	case t <= p.ti1:
		return -p.MinBank + p.MaxRate*(t-p.T1)
	case t <= p.T2:
		return p.MaxBank
	case t <= p.ti2:
		return p.MaxBank - p.MaxRate*(t-p.T2)
	case t <= p.T3:
		return -p.MaxBank
	case t <= p.ti3:
		return -p.MaxBank + p.MaxRate*(t-p.T3)
	default:
		return p.MinBank
	}
}

// Banks implements the BankProfile interface.
func (p *RectBankProfile) Banks(ts []float64) []float64 {
	return banks(p, ts)
}

// SwitchTimes implements the BankProfile interface.
func (p *RectBankProfile) SwitchTimes() []float64 {
	return []float64{p.T1, p.T2, p.T3}
}

// ReducedBankProfile is the two-switch variant of the rectangular profile:
// hold at +max, ramp down to -max, hold, ramp up to the +min tail.
type ReducedBankProfile struct {
	T1, T2           float64
	MinBank, MaxBank float64
	MaxRate          float64
	ti1, ti2         float64
}

// NewReducedBankProfile returns a two-switch profile over the default bank
// limits, or an error when the switch times do not leave room for the ramps.
func NewReducedBankProfile(t1, t2 float64) (*ReducedBankProfile, error) {
	p := &ReducedBankProfile{T1: t1, T2: t2, MinBank: DefaultMinBank, MaxBank: DefaultMaxBank, MaxRate: DefaultMaxBankRate}
	p.ti1 = t1 + 2*p.MaxBank/p.MaxRate
	p.ti2 = t2 + (p.MaxBank+p.MinBank)/p.MaxRate
	if p.ti1 > t2 {
		return nil, fmt.Errorf("switch times (%f, %f) do not leave room for rate-limited ramps", t1, t2)
	}
	return p, nil
}

// Bank implements the BankProfile interface.
func (p *ReducedBankProfile) Bank(t float64) float64 {
	switch {
	case t <= p.T1:
		return p.MaxBank
	case t <= p.ti1:
		return p.MaxBank - p.MaxRate*(t-p.T1)
	case t <= p.T2:
		return -p.MaxBank
	case t <= p.ti2:
		return -p.MaxBank + p.MaxRate*(t-p.T2)
	default:
		return p.MinBank
	}
}

// Banks implements the BankProfile interface.
func (p *ReducedBankProfile) Banks(ts []float64) []float64 {
	return banks(p, ts)
}

// SwitchTimes implements the BankProfile interface.
func (p *ReducedBankProfile) SwitchTimes() []float64 {
	return []float64{p.T1, p.T2}
}

// SmoothBankProfile is the two-switch profile with acceleration-limited
// S-curve transitions: each reversal accelerates the bank rate to the maximum,
// holds it, then decelerates back to zero, so the rate is continuous.
type SmoothBankProfile struct {
	T1, T2           float64
	MinBank, MaxBank float64
	MaxRate          float64
	MaxAccel         float64
	// Breakpoints of the two S-curves: end of acceleration phase, end of
	// constant-rate phase, end of deceleration phase.
	t1a, t1v, t1d float64
	t2a, t2v, t2d float64
	dt            float64 // time to ramp the bank rate from 0 to MaxRate
	dbank         float64 // angle traversed during that ramp
}

// NewSmoothBankProfile returns a smoothed two-switch profile over the default
// limits. It is an error when the constant-rate plateau of the first reversal
// is not reached before the second switch: the two S-curves would merge and
// the piecewise construction is no longer defined.
func NewSmoothBankProfile(t1, t2 float64) (*SmoothBankProfile, error) {
	p := &SmoothBankProfile{T1: t1, T2: t2, MinBank: DefaultMinBank, MaxBank: DefaultMaxBank, MaxRate: DefaultMaxBankRate, MaxAccel: DefaultMaxBankAccel}
	p.dt = p.MaxRate / p.MaxAccel
	p.dbank = 0.5 * p.MaxRate * p.MaxRate / p.MaxAccel
	p.t1a = t1 + p.dt
	p.t1v = t1 + 2*p.MaxBank/p.MaxRate
	p.t1d = p.t1v + p.dt
	p.t2a = t2 + p.dt
	p.t2v = t2 + (p.MinBank+p.MaxBank)/p.MaxRate
	p.t2d = p.t2v + p.dt
	if p.t1d >= t2 {
		return nil, fmt.Errorf("max-rate plateau not reached before second switch (t1d=%f >= t2=%f)", p.t1d, t2)
	}
	return p, nil
}

// Bank implements the BankProfile interface.
func (p *SmoothBankProfile) Bank(t float64) float64 {
	acc := p.MaxAccel
	switch {
	case t <= p.T1:
		return p.MaxBank
	case t <= p.t1a:
		return p.MaxBank - 0.5*acc*(t-p.T1)*(t-p.T1)
	case t <= p.t1v:
		return p.MaxBank - p.dbank - p.MaxRate*(t-p.t1a)
	case t <= p.t1d:
		return p.dbank - p.MaxBank - p.MaxRate*(t-p.t1v) + 0.5*acc*(t-p.t1v)*(t-p.t1v)
	case t <= p.T2:
		return -p.MaxBank
	case t <= p.t2a:
		return -p.MaxBank + 0.5*acc*(t-p.T2)*(t-p.T2)
	case t <= p.t2v:
		return p.dbank - p.MaxBank + p.MaxRate*(t-p.t2a)
	case t <= p.t2d:
		return p.MinBank - p.dbank + p.MaxRate*(t-p.t2v) - 0.5*acc*(t-p.t2v)*(t-p.t2v)
	default:
		return p.MinBank
	}
}

// Banks implements the BankProfile interface.
func (p *SmoothBankProfile) Banks(ts []float64) []float64 {
	return banks(p, ts)
}

// SwitchTimes implements the BankProfile interface.
func (p *SmoothBankProfile) SwitchTimes() []float64 {
	return []float64{p.T1, p.T2}
}

// FeasibilityPenalty returns a cost that is exactly zero when all switch
// points are non-negative and ordered according to the sign convention
// (sgn=-1 requires ascending order, sgn=+1 descending), and at least 1e7,
// growing linearly with the violation magnitude, otherwise. It lets an
// unconstrained optimizer explore ordering violations without propagating
// a physically meaningless profile.
func FeasibilityPenalty(times []float64, sgn float64) float64 {
	cost := 0.0
	for i := 0; i+1 < len(times); i++ {
		d := sgn * (times[i+1] - times[i])
		cost += d + math.Abs(d)
	}
	for _, t := range times {
		cost += math.Abs(t) - t
	}
	cost *= 1e5
	if cost > 0 {
		return math.Max(cost, 1e7)
	}
	return 0
}
