package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/sim"
)

// MonteCarlo repeats Base with seeds Base.Seed, Base.Seed+1, ... so each
// trial starts from a different jittered layout.
type MonteCarlo struct {
	Base   *config.Config
	Trials int
}

type Trial struct {
	Seed   int64
	Drift  float64
	Stable bool
	Err    error
}

type MonteCarloSummary struct {
	Trials    []Trial
	Stable    int
	MeanDrift float64
	StdDrift  float64
	MaxDrift  float64
}

// StableFraction is the share of trials that stayed bounded.
func (s *MonteCarloSummary) StableFraction() float64 {
	if len(s.Trials) == 0 {
		return 0
	}
	return float64(s.Stable) / float64(len(s.Trials))
}

// RunMonteCarlo runs every trial through one sim.Ensemble.
func RunMonteCarlo(ctx context.Context, reg *experiment.Registry, mc *MonteCarlo, logger *slog.Logger) (*MonteCarloSummary, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if mc.Trials < 1 {
		return nil, fmt.Errorf("trials %d: %w", mc.Trials, dynamo.ErrParameterBounds)
	}

	sims := make([]*sim.Simulator, mc.Trials)
	seeds := make([]int64, mc.Trials)
	var simCfg sim.Config
	for i := range sims {
		cfg := mc.Base.Clone()
		cfg.Seed = mc.Base.Seed + int64(i)
		exp, err := experiment.New(reg, cfg, logger.With("seed", cfg.Seed))
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", i, err)
		}
		sims[i] = exp.Simulator()
		seeds[i] = cfg.Seed
		simCfg = exp.SimConfig()
	}

	results, errs := sim.NewEnsemble(sims...).RunEach(ctx, simCfg)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := &MonteCarloSummary{Trials: make([]Trial, mc.Trials)}
	var drifts []float64
	for i, res := range results {
		trial := Trial{Seed: seeds[i], Drift: math.NaN()}
		if res != nil {
			trial.Drift = res.EnergyDrift
			trial.Stable = res.Metrics["stability"] == 1
		}
		if errs[i] != nil {
			trial.Err = errs[i]
			trial.Stable = false
		}
		if trial.Stable {
			summary.Stable++
		}
		if !math.IsNaN(trial.Drift) && !math.IsInf(trial.Drift, 0) {
			drifts = append(drifts, trial.Drift)
		}
		summary.Trials[i] = trial
	}

	summary.MeanDrift, summary.StdDrift = math.NaN(), math.NaN()
	summary.MaxDrift = math.NaN()
	if len(drifts) > 0 {
		summary.MeanDrift = stat.Mean(drifts, nil)
		summary.MaxDrift = drifts[0]
		for _, d := range drifts[1:] {
			summary.MaxDrift = math.Max(summary.MaxDrift, d)
		}
	}
	if len(drifts) > 1 {
		summary.StdDrift = stat.StdDev(drifts, nil)
	}

	logger.Info("monte carlo finished", "trials", mc.Trials, "stable", summary.Stable)
	return summary, nil
}
