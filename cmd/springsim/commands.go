package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/springsim/internal/analysis"
	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
	"github.com/san-kum/springsim/internal/storage"
	"github.com/san-kum/springsim/internal/trace"
	"github.com/san-kum/springsim/internal/viz"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// tipIndex is the particle whose motion best summarises the model: the free
// end of a pendulum, the free bottom corner of a cloth.
func tipIndex(m *physics.Model) int {
	if m.Kind() == physics.KindPendulum {
		return m.NumParticles() - 1
	}
	return 0
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	exp, err := experiment.New(experiment.NewRegistry(), cfg, nil)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	result, runErr := exp.Run(ctx)
	elapsed := time.Since(start)
	if result == nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (n=%d, %s, dt=%g)\n", cfg.Model, cfg.Size, cfg.Integrator, cfg.Dt)
	fmt.Fprintf(out, "completed %d steps in %v\n", result.StepsTaken, elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "energy: %.6f -> %.6f (drift %.3e)\n", result.InitialEnergy, result.FinalEnergy, result.EnergyDrift)

	tip := tipIndex(exp.Model())
	if p, err := result.Final().State.Position(tip); err == nil {
		fmt.Fprintf(out, "particle %d at (%.4f, %.4f, %.4f)\n", tip, p.X, p.Y, p.Z)
	}

	fmt.Fprintln(out, "\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-14s %.6f\n", name, result.Metrics[name])
	}

	if plot {
		plotFrames(out, exp.Model(), result.Frames, tip)
	}

	if svgFile != "" {
		if err := writeSnapshot(svgFile, exp.Model()); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nsnapshot: %s\n", svgFile)
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, result)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nrun id: %s\n", runID)
	}

	return runErr
}

func plotFrames(w io.Writer, m *physics.Model, frames []sim.Frame, tip int) {
	if len(frames) < 2 {
		return
	}
	heights, err := analysis.Heights(frames, tip)
	if err != nil {
		return
	}
	energy := analysis.Energies(frames, m)

	fmt.Fprintln(w)
	fmt.Fprintln(w, asciigraph.Plot(heights,
		asciigraph.Height(10),
		asciigraph.Width(70),
		asciigraph.Caption(fmt.Sprintf("particle %d height", tip)),
	))
	fmt.Fprintln(w)
	fmt.Fprintln(w, asciigraph.Plot(energy,
		asciigraph.Height(6),
		asciigraph.Width(70),
		asciigraph.Caption("total energy"),
	))
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	exp, err := experiment.New(experiment.NewRegistry(), cfg, newLogger(io.Discard, false))
	if err != nil {
		return err
	}

	title := cfg.Model
	if preset != "" {
		title += " / " + preset
	}
	if err := viz.RunLive(viz.NewLive(exp.Simulator(), exp.Model(), title, cfg.Dt, cfg.Steps)); err != nil {
		return err
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	names := args[1:]
	if len(names) == 0 {
		names = reg.ListIntegrators()
	}

	exps := make([]*experiment.Experiment, 0, len(names))
	sims := make([]*sim.Simulator, 0, len(names))
	for _, name := range names {
		c := cfg.Clone()
		c.Integrator = name
		exp, err := experiment.New(reg, c, nil)
		if err != nil {
			return err
		}
		exps = append(exps, exp)
		sims = append(sims, exp.Simulator())
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	results, runErr := sim.NewEnsemble(sims...).Run(ctx, exps[0].SimConfig())
	elapsed := time.Since(start)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "comparing integrators for %s (n=%d, dt=%g, %d steps) in %v\n\n",
		cfg.Model, cfg.Size, cfg.Dt, cfg.Steps, elapsed.Round(time.Millisecond))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "integrator\tsteps\tenergy_drift\tmax_speed\ttip_x\ttip_y\ttip_z")
	for i, r := range results {
		if r == nil {
			fmt.Fprintf(tw, "%s\tfailed\n", names[i])
			continue
		}
		tip := tipIndex(exps[i].Model())
		p, _ := r.Final().State.Position(tip)
		fmt.Fprintf(tw, "%s\t%d\t%.3e\t%.4f\t%.4f\t%.4f\t%.4f\n",
			names[i], r.StepsTaken, r.EnergyDrift, r.Metrics["max_speed"], p.X, p.Y, p.Z)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return runErr
}

func traceRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	exp, err := experiment.New(experiment.NewRegistry(), cfg, nil)
	if err != nil {
		return err
	}
	rec := trace.NewRecorder(every, particles...)
	exp.Simulator().AddObserver(rec)

	ctx, cancel := signalContext()
	defer cancel()
	_, runErr := exp.Run(ctx)

	w := cmd.OutOrStdout()
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := rec.Flush(w); err != nil {
		return err
	}
	return runErr
}

func listPresets(cmd *cobra.Command, args []string) error {
	models := config.ListModels()
	if len(args) == 1 {
		models = args
	}

	out := cmd.OutOrStdout()
	for _, model := range models {
		presets := config.ListPresets(model)
		if len(presets) == 0 {
			fmt.Fprintf(out, "no presets for model: %s\n", model)
			continue
		}
		fmt.Fprintf(out, "%s:\n", model)
		for _, name := range presets {
			p := config.GetPreset(model, name)
			fmt.Fprintf(out, "  %-8s size=%d integrator=%s dt=%g steps=%d\n", name, p.Size, p.Integrator, p.Dt, p.Steps)
		}
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "id\tmodel\tsize\tintegrator\tsteps\tdrift\twhen")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%.3e\t%s\n",
			r.ID, r.Model, r.Size, r.Integrator, r.Steps, r.EnergyDrift, r.Timestamp.Format(time.DateTime))
	}
	return tw.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	rows, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	byParticle := make(map[int][]float64)
	for _, r := range rows {
		byParticle[r.Particle] = append(byParticle[r.Particle], r.Y)
	}
	ids := make([]int, 0, len(byParticle))
	for id := range byParticle {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\nmodel: %s (n=%d, %s)\nframes: %d\n\n", meta.ID, meta.Model, meta.Size, meta.Integrator, meta.Frames)

	const maxSeries = 4
	if len(ids) > maxSeries {
		ids = ids[:maxSeries]
	}
	series := make([][]float64, len(ids))
	labels := make([]string, len(ids))
	for i, id := range ids {
		series[i] = byParticle[id]
		labels[i] = fmt.Sprintf("p%d", id)
	}

	fmt.Fprintln(out, asciigraph.PlotMany(series,
		asciigraph.Height(12),
		asciigraph.Width(70),
		asciigraph.Caption("height of "+strings.Join(labels, ", ")),
	))
	return nil
}
