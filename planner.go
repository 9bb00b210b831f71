package edl

import (
	"fmt"
	"math"
	"os"

	kitlog "github.com/go-kit/kit/log"
)

// Target is the landing point bookkeeping the offline planner aims for,
// expressed as downrange and crossrange from the entry interface, in km.
type Target struct {
	DR float64
	CR float64
}

// BankPlan is the result of an offline switch-time search: the optimized
// switch points, the resulting profile, and the terminal cost.
type BankPlan struct {
	Times     []float64
	Profile   BankProfile
	IV        IndependentVar
	Cost      float64
	Converged bool
}

// Control returns the open-loop control flying this plan.
func (p *BankPlan) Control() ProfileControl {
	return ProfileControl{Profile: p.Profile, IV: p.IV}
}

// Planner searches bank-profile switch times minimizing a terminal cost: a
// weighted altitude-at-trigger penalty plus the Euclidean miss distance
// between achieved and target downrange/crossrange.
type Planner struct {
	entry   *Entry
	target  Target
	trigger Trigger
	iv      IndependentVar
	tMax    float64 // trajectory horizon (s)
	grid    int     // number of integration samples over the horizon
	wh      float64 // altitude weight (1/km)
	logger  kitlog.Logger
}

// NewPlanner returns a planner rolling out the given entry model until the
// trigger fires.
func NewPlanner(entry *Entry, target Target, trigger Trigger) *Planner {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "subsys", "planner")
	return &Planner{entry: entry, target: target, trigger: trigger, iv: TimeIV, tMax: 450, grid: 1000, wh: 0.8e-6, logger: klog}
}

// SetIndependentVar switches the profile parametrization between elapsed
// time and negative velocity.
func (p *Planner) SetIndependentVar(iv IndependentVar) {
	p.iv = iv
}

// feasibility returns the ordering penalty for a candidate switch vector
// under the active parametrization: ascending non-negative times, or
// descending switch velocities.
func (p *Planner) feasibility(T []float64) float64 {
	if p.iv == VelocityIV {
		// Switch points are negative velocities; feasibility is checked on
		// the (positive) velocities, which must descend.
		vs := make([]float64, len(T))
		for i, t := range T {
			vs[i] = -t
		}
		return FeasibilityPenalty(vs, 1)
	}
	return FeasibilityPenalty(T, -1)
}

// profile builds the bank profile for a candidate switch vector: the
// three-switch rectangular profile, or the smoothed two-switch profile.
func (p *Planner) profile(T []float64) (BankProfile, error) {
	switch len(T) {
	case 3:
		return NewRectBankProfile(T[0], T[1], T[2])
	case 2:
		return NewSmoothBankProfile(T[0], T[1])
	default:
		return nil, fmt.Errorf("unsupported number of switch points: %d", len(T))
	}
}

// Cost evaluates the terminal cost of a candidate switch vector. Infeasible
// orderings short-circuit to the feasibility penalty without propagating.
func (p *Planner) Cost(T []float64, x0 []float64) float64 {
	if J := p.feasibility(T); J > 300 {
		return J
	}
	prof, err := p.profile(T)
	if err != nil {
		// Ordered but geometrically infeasible (ramps overlap).
		return 1e7
	}
	step := p.tMax / float64(p.grid-1)
	hist, err := PropagateOpenLoop(p.entry, x0, ProfileControl{Profile: prof, IV: p.iv}, NominalRatios, step, p.tMax)
	if err != nil {
		return 1e7
	}
	idx, err := FirstTriggered(hist, p.trigger)
	if err != nil {
		return 1e7 // never fired: dominating penalty, not an index past the end
	}
	st := hist.States[idx]
	h := p.entry.Altitude(st.X[ixRad], true)
	dr, cr := p.entry.Planet.Range(x0[ixLon], x0[ixLat], x0[ixHead], st.X[ixLon], st.X[ixLat], true)
	return -h*p.wh + math.Hypot(p.target.DR-dr, p.target.CR-cr)
}

// Optimize searches the switch times from the provided guess (3 entries for
// the rectangular profile, 2 for the smoothed one) and returns the best plan
// found, surfacing the optimizer's convergence status.
func (p *Planner) Optimize(x0 []float64, guess []float64) (*BankPlan, error) {
	if err := ValidateState(x0); err != nil {
		return nil, err
	}
	if n := len(guess); n != 2 && n != 3 {
		return nil, fmt.Errorf("guess needs 2 or 3 switch points, got %d", n)
	}
	if J := p.feasibility(guess); J > 0 {
		return nil, fmt.Errorf("infeasible initial guess %v (penalty %.0f)", guess, J)
	}
	f := func(T []float64) float64 {
		return p.Cost(T, x0)
	}
	p.logger.Log("level", "info", "status", "searching", "guess", fmt.Sprintf("%v", guess), "cost", fmt.Sprintf("%.4f", f(guess)))
	best, cost, converged, err := minimizeVector(f, guess, 1e-5)
	if err != nil && !converged {
		p.logger.Log("level", "warning", "status", "search did not converge", "err", err)
	}
	prof, perr := p.profile(best)
	if perr != nil {
		return nil, fmt.Errorf("search ended on an infeasible profile %v: %s", best, perr)
	}
	p.logger.Log("level", "notice", "status", "finished", "switches", fmt.Sprintf("%v", best), "cost", fmt.Sprintf("%.4f", cost), "converged", converged)
	return &BankPlan{Times: best, Profile: prof, IV: p.iv, Cost: cost, Converged: converged}, nil
}
