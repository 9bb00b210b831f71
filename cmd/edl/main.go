package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strings"

	edl "github.com/cescjf/entryguidance"
	kitlog "github.com/go-kit/kit/log"
)

// This driver plans a reference bank profile offline, then flies a dispersed
// closed-loop entry under the receding-horizon controller.

const defaultScenario = "~~unset~~"

var (
	scenario string
	verbose  bool
)

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "entry scenario TOML file")
	flag.BoolVar(&verbose, "verbose", false, "really verbose (esp. for configuration)")
}

func main() {
	flag.Parse()
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}
	scenario = strings.Replace(scenario, ".toml", "", 1)
	scn, err := edl.LoadScenario(scenario, ".")
	if err != nil {
		log.Fatalf("could not load scenario: %s", err)
	}
	if verbose {
		log.Printf("[conf] planet: %s, x0: %+v, guess: %v", scn.Planet, scn.X0, scn.SwitchGuess)
	}
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	logger = kitlog.With(logger, "subsys", "driver")

	nominal := edl.EDL(edl.UncertaintySample{})

	// Offline: search the switch times and build the reference drag profile.
	deploy := edl.VelocityTrigger{Velocity: 500}
	planner := edl.NewPlanner(nominal, scn.Target, deploy)
	plan, err := planner.Optimize(scn.X0, scn.SwitchGuess)
	if err != nil {
		log.Fatalf("planning failed: %s", err)
	}
	refHist, err := edl.PropagateOpenLoop(nominal, scn.X0, plan.Control(), edl.NominalRatios, scn.TMax/1000, scn.TMax)
	if err != nil {
		log.Fatalf("reference propagation failed: %s", err)
	}
	ref, err := edl.NewReference(refHist)
	if err != nil {
		log.Fatalf("reference profile: %s", err)
	}

	// Closed loop: dispersed truth, nominal prediction model.
	mpc, err := edl.NewMPC(edl.EDL(edl.UncertaintySample{}), scn.MPC, scn.BankLo, scn.BankHi, ref)
	if err != nil {
		log.Fatalf("controller: %s", err)
	}
	sample := edl.NewDispersions(scn.Seed).Sample()
	if verbose {
		log.Printf("[dispersions] %+v", sample)
	}
	phases := []edl.Phase{
		{Name: "PreEntry", Control: edl.ConstantBank{Value: plan.Profile.Bank(0)}, Done: edl.AccelerationTrigger{Threshold: scn.PreEntryAcc}},
		{Name: "Entry", Control: mpc, Done: edl.RangeToGoTrigger{RangeToGo: 0}},
	}
	sys, err := edl.NewSystem(sample, phases, edl.ExportConfig{Filename: scn.Output, AsCSV: scn.Output != "", Planet: scn.Planet})
	if err != nil {
		log.Fatalf("system: %s", err)
	}
	sys.SetFilterGain(scn.FilterGain)
	hist, err := sys.Propagate(scn.X0, scn.TMax)
	if err != nil {
		log.Fatalf("propagation failed: %s", err)
	}

	final := hist.Last()
	dr, cr := scn.Planet.Range(scn.X0[1], scn.X0[2], scn.X0[5], final.X[1], final.X[2], true)
	logger.Log("level", "notice", "status", "finished",
		"t(s)", fmt.Sprintf("%.1f", final.T),
		"h(km)", fmt.Sprintf("%.2f", (final.X[0]-scn.Planet.Radius)/1000),
		"downrange(km)", fmt.Sprintf("%.2f", dr),
		"crossrange(km)", fmt.Sprintf("%.2f", cr),
		"missTarget(km)", fmt.Sprintf("%.2f", math.Hypot(scn.Target.DR-dr, scn.Target.CR-cr)))
}
