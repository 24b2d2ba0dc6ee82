package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/san-kum/springsim/internal/automation"
	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/viz"
)

var (
	dataDir     string
	verbose     bool
	configFile  string
	preset      string
	size        int
	integrator  string
	dt          float64
	steps       int
	sampleEvery int
	seed        int64
	jitter      float64
	physParams  map[string]string

	plot      bool
	save      bool
	svgFile   string
	every     int
	particles []int
	outFile   string

	sweepName   string
	sweepFrom   float64
	sweepTo     float64
	sweepPoints int
	trials      int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "springsim",
		Short:         "mass-spring particle simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger(os.Stderr, verbose))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunPicker(experiment.NewRegistry(), newLogger(io.Discard, false))
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".springsim", "data directory for saved runs")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a simulation headless and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot tip height and energy")
	runCmd.Flags().BoolVar(&save, "save", false, "save the run to the data directory")
	runCmd.Flags().StringVar(&svgFile, "svg", "", "write the final layout to an SVG file")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "animate a simulation in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [model] [integrator...]",
		Short: "run several integrators on the same model side by side",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addConfigFlags(compareCmd)

	traceCmd := &cobra.Command{
		Use:   "trace [model]",
		Short: "write particle trajectories as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  traceRun,
	}
	addConfigFlags(traceCmd)
	traceCmd.Flags().IntVar(&every, "every", 1, "record every k-th step")
	traceCmd.Flags().IntSliceVar(&particles, "particle", nil, "particle indices to record (default all)")
	traceCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "run a model across a range of one parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepParam,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepName, "vary", automation.ParamDt, "physics parameter to vary, or dt")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0.005, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 0.05, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 10, "number of values")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [model]",
		Short: "repeat a run from many jittered starting layouts",
		Args:  cobra.ExactArgs(1),
		RunE:  monteCarlo,
	}
	addConfigFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every entry of a scenario file in order",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [model]",
		Short: "report oscillation frequency, lyapunov exponent and energy range",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	addConfigFlags(analyzeCmd)

	rootCmd.AddCommand(runCmd, liveCmd, compareCmd, traceCmd, presetsCmd, listCmd, plotCmd,
		sweepCmd, monteCarloCmd, scenarioCmd, analyzeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "start from a preset")
	f.IntVarP(&size, "size", "n", config.DefaultSize, "chain length or cloth side")
	f.StringVar(&integrator, "integrator", config.DefaultIntegrator, "euler, trapezoidal, rk4 or verlet")
	f.Float64Var(&dt, "dt", config.DefaultDt, "step size")
	f.IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	f.IntVar(&sampleEvery, "sample", config.DefaultSampleEvery, "keep one frame every k steps")
	f.Int64Var(&seed, "seed", 0, "jitter seed")
	f.Float64Var(&jitter, "jitter", 0, "noise amplitude applied to free particles")
	f.StringToStringVar(&physParams, "param", nil, "physics overrides, e.g. --param gravity=0.5,flex=1")
}

// resolveConfig layers a preset, then a config file, then explicitly set
// flags over the defaults.
func resolveConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Model = model

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q for %s (available: %v)", preset, model, config.ListPresets(model))
		}
		cfg = p
	}

	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.Model != model {
			return nil, fmt.Errorf("config file is for model %q, not %q", cfg.Model, model)
		}
	}

	f := cmd.Flags()
	if f.Changed("size") {
		cfg.Size = size
	}
	if f.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("steps") {
		cfg.Steps = steps
	}
	if f.Changed("sample") {
		cfg.SampleEvery = sampleEvery
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("jitter") {
		cfg.Jitter = jitter
	}
	if len(physParams) > 0 {
		if cfg.Physics == nil {
			cfg.Physics = make(map[string]float64)
		}
		for k, raw := range physParams {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("--param %s: %w", k, err)
			}
			cfg.Physics[k] = v
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
