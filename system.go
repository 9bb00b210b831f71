package edl

import (
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/ChristopherRabotin/ode"
	kitlog "github.com/go-kit/kit/log"
)

var wg sync.WaitGroup

/* Handles the entry propagations. */

// Composite state layout: truth state, navigated state, then the two
// aero-ratio filter estimates. Two further slots are reserved for bank-angle
// actuator dynamics, which are not integrated yet.
const (
	truthOffset   = 0
	navOffset     = stateSize
	ratioOffset   = 2 * stateSize
	compositeSize = 2*stateSize + 2
)

// EntryState is one propagated sample of an entry trajectory.
type EntryState struct {
	T      float64
	X      []float64 // vehicle state [r θ φ v γ ψ s m]
	Bank   float64   // applied bank command (rad)
	Lift   float64   // specific lift at this state (m/s^2)
	Drag   float64   // specific drag at this state (m/s^2)
	Ratios Ratios    // filter estimates at this state
}

// History is an append-only record of propagated states.
type History struct {
	States []EntryState
}

func (h *History) add(st EntryState) {
	h.States = append(h.States, st)
}

// Last returns the final recorded state.
func (h *History) Last() EntryState {
	return h.States[len(h.States)-1]
}

// Times returns the time column of the history.
func (h *History) Times() []float64 {
	ts := make([]float64, len(h.States))
	for i, st := range h.States {
		ts[i] = st.T
	}
	return ts
}

// Column returns one state component across the history.
func (h *History) Column(ix int) []float64 {
	col := make([]float64, len(h.States))
	for i, st := range h.States {
		col[i] = st.X[ix]
	}
	return col
}

// Drags returns the specific drag column of the history.
func (h *History) Drags() []float64 {
	ds := make([]float64, len(h.States))
	for i, st := range h.States {
		ds[i] = st.Drag
	}
	return ds
}

// BankControl defines a bank-angle command source. Implementations receive
// the navigated state and the current aero-ratio estimates; open-loop
// profiles ignore both.
type BankControl interface {
	BankAngle(t float64, x []float64, ratios Ratios) float64
}

// ConstantBank holds a fixed bank angle.
type ConstantBank struct {
	Value float64
}

// BankAngle implements the BankControl interface.
func (c ConstantBank) BankAngle(t float64, x []float64, ratios Ratios) float64 {
	return c.Value
}

// IndependentVar defines the independent variable of a profile-driven control.
type IndependentVar uint8

const (
	// TimeIV parametrizes a profile by elapsed time.
	TimeIV IndependentVar = iota + 1
	// VelocityIV parametrizes a profile by negative planet-relative speed,
	// which increases monotonically along an entry.
	VelocityIV
)

func (iv IndependentVar) String() string {
	switch iv {
	case TimeIV:
		return "time"
	case VelocityIV:
		return "velocity"
	}
	panic("cannot stringify unknown independent variable")
}

// ProfileControl commands the bank angle from an open-loop profile.
type ProfileControl struct {
	Profile BankProfile
	IV      IndependentVar
}

// BankAngle implements the BankControl interface.
func (c ProfileControl) BankAngle(t float64, x []float64, ratios Ratios) float64 {
	switch c.IV {
	case VelocityIV:
		return c.Profile.Bank(-x[ixVel])
	default:
		return c.Profile.Bank(t)
	}
}

// openLoop propagates a single 8-state trajectory under a BankControl.
// It implements ode.Integrable.
type openLoop struct {
	entry  *Entry
	ctrl   BankControl
	ratios Ratios
	x      []float64
	t      float64
	step   float64
	tEnd   float64
	hist   *History
}

func (o *openLoop) record() {
	L, D := o.entry.aeroforce(o.x[ixRad]-o.entry.Planet.Radius, o.x[ixVel], o.ratios)
	xc := make([]float64, stateSize)
	copy(xc, o.x)
	o.hist.add(EntryState{T: o.t, X: xc, Bank: o.ctrl.BankAngle(o.t, o.x, o.ratios), Lift: L, Drag: D, Ratios: o.ratios})
}

// GetState implements the ode.Integrable interface.
func (o *openLoop) GetState() []float64 {
	s := make([]float64, stateSize)
	copy(s, o.x)
	return s
}

// SetState implements the ode.Integrable interface.
func (o *openLoop) SetState(t float64, s []float64) {
	copy(o.x, s)
	o.t += o.step
	o.record()
}

// Stop implements the ode.Integrable interface.
func (o *openLoop) Stop(t float64) bool {
	return o.t >= o.tEnd-1e-9
}

// Func implements the ode.Integrable interface. The control is held constant
// over each step, evaluated at the step start time.
func (o *openLoop) Func(t float64, x []float64) []float64 {
	u := Control{Bank: o.ctrl.BankAngle(o.t, x, o.ratios)}
	dx := o.entry.Derivatives(x, u, o.ratios)
	for i, d := range dx {
		if math.IsNaN(d) {
			panic(fmt.Errorf("dx[%d]=NaN @ t=%f\nx=%+v\tu=%+v", i, t, x, u))
		}
	}
	return dx
}

// PropagateOpenLoop integrates a single trajectory from x0 under the given
// control until tEnd, with a fixed RK4 step, and returns its history. The
// aero ratios are applied to the dynamics for the whole run.
func PropagateOpenLoop(entry *Entry, x0 []float64, ctrl BankControl, ratios Ratios, step, tEnd float64) (*History, error) {
	if err := ValidateState(x0); err != nil {
		return nil, err
	}
	if step <= 0 || tEnd <= 0 {
		return nil, fmt.Errorf("step and horizon must be positive, got %f and %f", step, tEnd)
	}
	o := &openLoop{entry: entry, ctrl: ctrl, ratios: ratios, x: append([]float64{}, x0...), step: step, tEnd: tEnd, hist: &History{}}
	o.record()
	ode.NewRK4(0, step, o).Solve()
	return o.hist, nil
}

// Phase is one leg of a guided entry: a command source flown until its
// termination trigger fires.
type Phase struct {
	Name     string
	Control  BankControl
	Throttle float64
	Ignition bool // ignite the engines when this phase starts
	Done     Trigger
}

// System couples a nominal model, a perturbed truth model and a navigated
// model with the first-order lift/drag ratio filters into one composite
// state, and exposes the single derivative entry point handed to the
// integrator. Nav currently equals truth: no knowledge error is modeled.
type System struct {
	Model, Truth, Nav *Entry
	phases            []Phase
	phase             int
	gain              float64
	cycle             float64 // guidance cycle (s)
	step              float64 // integration step (s)
	state             []float64
	t, lastCmd        float64
	σ                 float64
	tMax              float64
	hist              *History
	histChan          chan (EntryState)
	logger            kitlog.Logger
	done              bool
}

// NewSystem returns a composite system for one realization of the uncertain
// parameters. The model is nominal; truth and nav share the sample.
func NewSystem(sample UncertaintySample, phases []Phase, conf ExportConfig) (*System, error) {
	if len(phases) == 0 {
		return nil, fmt.Errorf("at least one phase is required")
	}
	for _, p := range phases {
		if p.Control == nil || p.Done == nil {
			return nil, fmt.Errorf("phase %s needs both a control and a trigger", p.Name)
		}
	}
	var histChan chan (EntryState)
	if !conf.IsUseless() {
		histChan = make(chan (EntryState), 1000) // a 1k entry buffer
		wg.Add(1)
		go func() {
			defer wg.Done()
			StreamStates(conf, histChan)
		}()
	}
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "subsys", "edl")
	return &System{
		Model:    EDL(UncertaintySample{}),
		Truth:    EDL(sample),
		Nav:      EDL(sample),
		phases:   phases,
		cycle:    1,
		step:     0.1,
		hist:     &History{},
		histChan: histChan,
		logger:   klog,
	}, nil
}

// SetFilterGain sets the gain used in the first-order lift and drag ratio
// filters. It may be changed mid-propagation; zero freezes the estimates.
func (s *System) SetFilterGain(gain float64) {
	s.gain = gain
}

// SetGNC sets the guidance cycle and integration step, in seconds.
func (s *System) SetGNC(cycle, step float64) error {
	if step <= 0 || cycle < step {
		return fmt.Errorf("need step > 0 and cycle ≥ step, got cycle=%f step=%f", cycle, step)
	}
	s.cycle = cycle
	s.step = step
	return nil
}

// Ratios returns the current filter estimates.
func (s *System) Ratios() Ratios {
	return Ratios{Lift: s.state[ratioOffset], Drag: s.state[ratioOffset+1]}
}

func (s *System) truthState() []float64 {
	return s.state[truthOffset : truthOffset+stateSize]
}

func (s *System) navState() []float64 {
	return s.state[navOffset : navOffset+stateSize]
}

func (s *System) control() Control {
	return Control{Bank: s.σ, Throttle: s.phases[s.phase].Throttle}
}

func (s *System) snapshot() EntryState {
	x := s.truthState()
	L, D := s.Truth.aeroforce(x[ixRad]-s.Truth.Planet.Radius, x[ixVel], NominalRatios)
	xc := make([]float64, stateSize)
	copy(xc, x)
	return EntryState{T: s.t, X: xc, Bank: s.σ, Lift: L, Drag: D, Ratios: s.Ratios()}
}

// LogStatus logs the current propagation state.
func (s *System) LogStatus() {
	x := s.truthState()
	s.logger.Log("level", "info", "phase", s.phases[s.phase].Name, "t(s)", fmt.Sprintf("%.1f", s.t),
		"h(km)", fmt.Sprintf("%.2f", s.Truth.Altitude(x[ixRad], true)), "v(m/s)", fmt.Sprintf("%.1f", x[ixVel]),
		"s(km)", fmt.Sprintf("%.1f", x[ixRange]/1000))
}

// Propagate runs the closed-loop simulation from the initial truth state
// until the last phase trigger fires or tMax elapses, and returns the
// history. The composite state is created here and owned by the integrator
// loop for the whole run.
func (s *System) Propagate(x0 []float64, tMax float64) (*History, error) {
	if err := ValidateState(x0); err != nil {
		return nil, err
	}
	if tMax <= 0 {
		return nil, fmt.Errorf("tMax must be positive, got %f", tMax)
	}
	s.state = make([]float64, compositeSize)
	copy(s.state[truthOffset:], x0[:stateSize])
	copy(s.state[navOffset:], x0[:stateSize])
	s.state[ratioOffset] = 1
	s.state[ratioOffset+1] = 1
	s.t = 0
	s.tMax = tMax
	s.phase = 0
	s.done = false
	s.startPhase()
	s.σ = s.phases[s.phase].Control.BankAngle(0, s.navState(), s.Ratios())
	s.lastCmd = 0
	s.record()
	s.LogStatus()
	ode.NewRK4(0, s.step, s).Solve() // Blocking.
	s.LogStatus()
	if s.histChan != nil {
		close(s.histChan)
	}
	wg.Wait() // Don't return until we're done writing all the files.
	if !s.done {
		return s.hist, fmt.Errorf("trigger %s never fired within %.1f s", s.phases[s.phase].Done, tMax)
	}
	return s.hist, nil
}

func (s *System) startPhase() {
	p := s.phases[s.phase]
	if p.Ignition {
		s.Truth.Ignite()
		s.Nav.Ignite()
	}
	s.logger.Log("level", "notice", "phase", p.Name, "until", p.Done, "t(s)", fmt.Sprintf("%.1f", s.t))
}

func (s *System) record() {
	st := s.snapshot()
	s.hist.add(st)
	if s.histChan != nil {
		s.histChan <- st
	}
}

// GetState implements the ode.Integrable interface.
func (s *System) GetState() []float64 {
	st := make([]float64, compositeSize)
	copy(st, s.state)
	return st
}

// SetState implements the ode.Integrable interface.
func (s *System) SetState(t float64, x []float64) {
	copy(s.state, x)
	s.t += s.step
	// Phase sequencing on the truth state.
	for s.phases[s.phase].Done.Fired(s.snapshot()) {
		if s.phase == len(s.phases)-1 {
			s.done = true
			break
		}
		s.phase++
		s.startPhase()
		s.lastCmd = -s.cycle // force a fresh command
	}
	// Guidance update on the nav state, once per cycle.
	if !s.done && s.t-s.lastCmd >= s.cycle-1e-9 {
		s.σ = s.phases[s.phase].Control.BankAngle(s.t, s.navState(), s.Ratios())
		s.lastCmd = s.t
	}
	s.record()
}

// Stop implements the ode.Integrable interface.
func (s *System) Stop(t float64) bool {
	return s.done || s.t >= s.tMax-1e-9
}

// Func implements the ode.Integrable interface: the derivative of the full
// composite state. This is the sole integration entry point.
func (s *System) Func(t float64, x []float64) []float64 {
	u := s.control()
	f := make([]float64, compositeSize)
	copy(f[truthOffset:], s.Truth.Derivatives(x[truthOffset:truthOffset+stateSize], u, NominalRatios))
	copy(f[navOffset:], s.Nav.Derivatives(x[navOffset:navOffset+stateSize], u, NominalRatios))
	dRL, dRD := s.filterUpdate(x)
	f[ratioOffset] = dRL
	f[ratioOffset+1] = dRD
	for i, d := range f {
		if math.IsNaN(d) {
			panic(fmt.Errorf("f[%d]=NaN @ t=%f\nx=%+v\tσ=%f", i, t, x, s.σ))
		}
	}
	return f
}

// filterUpdate computes the derivatives of the aerodynamic ratio estimates
// from the instantaneous nominal-model and nav-model aeroforces at the
// navigated radius/velocity pair.
func (s *System) filterUpdate(x []float64) (dRL, dRD float64) {
	r := []float64{x[navOffset+ixRad]}
	v := []float64{x[navOffset+ixVel]}
	L, D := s.Model.Aeroforces(r, v)
	Lm, Dm := s.Nav.Aeroforces(r, v)
	dRL = FadingMemory(x[ratioOffset], Lm[0]/L[0], s.gain)
	dRD = FadingMemory(x[ratioOffset+1], Dm[0]/D[0], s.gain)
	return
}
