package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/springsim/internal/analysis"
	"github.com/san-kum/springsim/internal/automation"
	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/export"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/viz"
)

func sweepParam(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	sw := &automation.Sweep{Base: cfg, Param: sweepName, Min: sweepFrom, Max: sweepTo, Points: sweepPoints}
	points, err := automation.RunSweep(ctx, experiment.NewRegistry(), sw, nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "sweeping %s over [%g, %g] for %s (%s)\n\n", sweepName, sweepFrom, sweepTo, cfg.Model, cfg.Integrator)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tsteps\tenergy_drift\tstability\tmax_speed\tstatus\n", sweepName)
	for _, p := range points {
		status := "ok"
		if p.Failed() {
			status = "diverged"
		}
		fmt.Fprintf(tw, "%g\t%d\t%.3e\t%.3f\t%.4f\t%s\n", p.Value, p.Steps, p.Drift, p.Stability, p.MaxSpeed, status)
	}
	return tw.Flush()
}

func monteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if cfg.Jitter == 0 {
		return fmt.Errorf("monte carlo needs --jitter > 0, otherwise every trial is identical")
	}

	ctx, cancel := signalContext()
	defer cancel()

	summary, err := automation.RunMonteCarlo(ctx, experiment.NewRegistry(), &automation.MonteCarlo{Base: cfg, Trials: trials}, nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d trials of %s (%s, jitter=%g)\n", len(summary.Trials), cfg.Model, cfg.Integrator, cfg.Jitter)
	fmt.Fprintf(out, "stable: %d (%.0f%%)\n", summary.Stable, 100*summary.StableFraction())
	fmt.Fprintf(out, "energy drift: mean %.3e, std %.3e, max %.3e\n", summary.MeanDrift, summary.StdDrift, summary.MaxDrift)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, runErr := automation.RunScenario(ctx, experiment.NewRegistry(), sc, nil)

	out := cmd.OutOrStdout()
	if sc.Name != "" {
		fmt.Fprintf(out, "scenario: %s\n", sc.Name)
	}
	if sc.Description != "" {
		fmt.Fprintln(out, sc.Description)
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "run\tsteps\ttime\tenergy_drift\tstatus")
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%d\t%.3f\t%.3e\t%s\n", r.Name, r.Result.StepsTaken, r.Result.Time, r.Result.EnergyDrift, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return runErr
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if cfg.SampleEvery == 0 {
		cfg.SampleEvery = 1
	}

	exp, err := experiment.New(experiment.NewRegistry(), cfg, nil)
	if err != nil {
		return err
	}
	m := exp.Model()
	tip := tipIndex(m)

	// The exponent is measured from the starting layout, before Run moves it.
	var lambda float64
	lambdaErr := fmt.Errorf("%s has no state stepper", cfg.Integrator)
	if st, ok := exp.Stepper().(analysis.StateStepper); ok {
		lambda, lambdaErr = analysis.LyapunovExponent(m, st, cfg.Dt, cfg.Steps, 1e-8)
	}

	ctx, cancel := signalContext()
	defer cancel()
	result, runErr := exp.Run(ctx)
	if result == nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (n=%d, %s, dt=%g, %d steps)\n\n", cfg.Model, cfg.Size, cfg.Integrator, cfg.Dt, result.StepsTaken)

	heights, err := analysis.Heights(result.Frames, tip)
	if err != nil {
		return err
	}
	if f, err := analysis.DominantFrequency(heights, cfg.Dt*float64(cfg.SampleEvery)); err == nil {
		period := math.Inf(1)
		if f > 0 {
			period = 1 / f
		}
		fmt.Fprintf(out, "particle %d height: dominant frequency %.4f (period %.4f)\n", tip, f, period)
	} else {
		fmt.Fprintf(out, "particle %d height: %v\n", tip, err)
	}

	if lambdaErr != nil {
		fmt.Fprintf(out, "lyapunov exponent: %v\n", lambdaErr)
	} else {
		fmt.Fprintf(out, "lyapunov exponent: %.4f\n", lambda)
	}

	energy := analysis.Energies(result.Frames, m)
	lo, hi := energy[0], energy[0]
	for _, e := range energy {
		lo, hi = math.Min(lo, e), math.Max(hi, e)
	}
	fmt.Fprintf(out, "energy range: [%.6f, %.6f]\n", lo, hi)
	return runErr
}

// writeSnapshot renders the model's current layout to an SVG file.
func writeSnapshot(path string, m *physics.Model) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cam := viz.NewCamera()
	cam.Fit(m.Positions())
	return export.SVG(f, m, cam, viz.DefaultSceneOptions(), viz.GetTheme(""), 800, 600)
}
