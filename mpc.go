package edl

import (
	"fmt"
	"math"
	"os"

	kitlog "github.com/go-kit/kit/log"
	"gonum.org/v1/gonum/integrate"
)

// MPCOptions defines the receding-horizon parameters: N constant-value
// control segments over a prediction horizon of T seconds.
type MPCOptions struct {
	N int
	T float64
}

// Dt returns the length of one control segment.
func (o MPCOptions) Dt() float64 {
	return o.T / float64(o.N)
}

// NewMPCOptions validates the horizon parameters.
func NewMPCOptions(n int, t float64) (MPCOptions, error) {
	if n < 1 {
		return MPCOptions{}, fmt.Errorf("need at least one control segment, got %d", n)
	}
	if t <= 0 {
		return MPCOptions{}, fmt.Errorf("prediction horizon must be positive, got %f", t)
	}
	return MPCOptions{N: n, T: t}, nil
}

// segmentControl holds one constant bank value per prediction segment.
type segmentControl struct {
	values []float64
	dt     float64
}

// BankAngle implements the BankControl interface.
func (c segmentControl) BankAngle(t float64, x []float64, ratios Ratios) float64 {
	i := int(t / c.dt)
	if i >= len(c.values) {
		i = len(c.values) - 1
	}
	if i < 0 {
		i = 0
	}
	return c.values[i]
}

// MPC is the receding-horizon drag-tracking controller. It is stateless
// between invocations apart from the immutable reference profile: each call
// re-optimizes a short control sequence from the provided state and returns
// only the first segment's value.
type MPC struct {
	prediction *Entry // prediction model, shares the nav planet/vehicle models
	opts       MPCOptions
	lo, hi     float64 // bank magnitude bounds (rad)
	ref        *Reference
	step       float64 // prediction integration step (s)
	tol        float64
	logger     kitlog.Logger
}

// NewMPC returns a controller predicting with the given entry model against
// an immutable reference. Bounds are on the bank magnitude, in radians.
func NewMPC(prediction *Entry, opts MPCOptions, lo, hi float64, ref *Reference) (*MPC, error) {
	if prediction == nil || ref == nil {
		return nil, fmt.Errorf("prediction model and reference are required")
	}
	if lo < 0 || hi <= lo {
		return nil, fmt.Errorf("invalid bank magnitude bounds [%f, %f]", lo, hi)
	}
	step := opts.Dt() / 5
	if step > 0.5 {
		step = 0.5
	}
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "subsys", "mpc")
	return &MPC{prediction: prediction, opts: opts, lo: lo, hi: hi, ref: ref, step: step, tol: 1e-4, logger: klog}, nil
}

// Command returns the bank-angle command for the current navigated state and
// aero-ratio estimates. The magnitude minimizes the predicted drag-tracking
// cost over the bounded control domain; the sign follows the reference bank
// at the linearized end-of-horizon velocity.
func (c *MPC) Command(x []float64, ratios Ratios) (float64, error) {
	if err := ValidateState(x); err != nil {
		return 0, fmt.Errorf("cannot command from invalid state: %s", err)
	}
	costFn := func(u []float64) float64 {
		return c.cost(u, x, ratios)
	}
	var best float64
	if c.opts.N == 1 {
		σ, _, converged := minimizeScalarBounded(func(v float64) float64 {
			return costFn([]float64{v})
		}, c.lo, c.hi, c.tol, 100)
		if !converged {
			c.logger.Log("level", "warning", "status", "scalar search hit iteration cap", "σ", σ)
		}
		best = σ
	} else {
		guess := make([]float64, c.opts.N)
		for i := range guess {
			guess[i] = math.Pi / 6
		}
		xBest, _, converged, err := minimizeVector(boxed(costFn, c.lo, c.hi), guess, c.tol)
		if !converged {
			c.logger.Log("level", "warning", "status", "optimizer did not converge, using best found", "σ", xBest[0], "err", err)
		}
		best = clampTo(xBest, c.lo, c.hi)[0]
	}
	return math.Abs(best) * sign(c.ref.Bank(c.lateral(x))), nil
}

// BankAngle implements the BankControl interface so the controller can drive
// a closed-loop phase directly.
func (c *MPC) BankAngle(t float64, x []float64, ratios Ratios) float64 {
	σ, err := c.Command(x, ratios)
	if err != nil {
		panic(err)
	}
	return σ
}

// lateral returns the linearized end-of-horizon velocity used for the bank
// sign decision: v + T·(D sinγ − g).
func (c *MPC) lateral(x []float64) float64 {
	h := x[ixRad] - c.prediction.Planet.Radius
	_, D := c.prediction.aeroforce(h, x[ixVel], NominalRatios)
	vdot := D*math.Sin(x[ixFPA]) - c.prediction.Planet.SurfaceGravity()
	return x[ixVel] + c.opts.T*vdot
}

// cost integrates the prediction model over the horizon under the candidate
// segment values and returns the time integral of the squared drag-tracking
// error, by the trapezoidal rule.
func (c *MPC) cost(u []float64, x0 []float64, ratios Ratios) float64 {
	ctrl := segmentControl{values: u, dt: c.opts.Dt()}
	hist, err := PropagateOpenLoop(c.prediction, x0, ctrl, ratios, c.step, c.opts.T)
	if err != nil {
		// Candidate drove the prediction out of the valid envelope.
		return 1e7
	}
	times := hist.Times()
	vel := hist.Column(ixVel)
	drag := hist.Drags()
	integrand := make([]float64, len(times))
	for i := range times {
		e := drag[i] - c.ref.Drag(vel[i])
		integrand[i] = e * e
	}
	return integrate.Trapezoidal(times, integrand)
}
