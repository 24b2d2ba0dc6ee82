package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/sim"
)

// ParamDt sweeps the time step instead of a physics constant.
const ParamDt = "dt"

// Sweep runs Base once for each of Points evenly spaced values of Param in
// [Min, Max].
type Sweep struct {
	Base   *config.Config
	Param  string
	Min    float64
	Max    float64
	Points int
}

// SweepPoint is the outcome of one run of a sweep. A run that diverged keeps
// its partial metrics and reports the failure in Err.
type SweepPoint struct {
	Value     float64
	Steps     int
	Drift     float64
	Stability float64
	MaxSpeed  float64
	Err       error
}

func (p SweepPoint) Failed() bool { return p.Err != nil }

// Values returns the parameter values the sweep visits.
func (s *Sweep) Values() ([]float64, error) {
	if s.Points < 2 {
		return nil, fmt.Errorf("sweep points %d: %w", s.Points, dynamo.ErrParameterBounds)
	}
	if !(s.Min <= s.Max) {
		return nil, fmt.Errorf("sweep range [%g, %g]: %w", s.Min, s.Max, dynamo.ErrParameterBounds)
	}
	return floats.Span(make([]float64, s.Points), s.Min, s.Max), nil
}

func (s *Sweep) configAt(v float64) *config.Config {
	cfg := s.Base.Clone()
	if s.Param == ParamDt {
		cfg.Dt = v
		return cfg
	}
	if cfg.Physics == nil {
		cfg.Physics = make(map[string]float64)
	}
	cfg.Physics[s.Param] = v
	return cfg
}

// RunSweep builds every configuration up front, so a bad parameter name
// fails before anything runs, then runs them concurrently.
func RunSweep(ctx context.Context, reg *experiment.Registry, s *Sweep, logger *slog.Logger) ([]SweepPoint, error) {
	if logger == nil {
		logger = slog.Default()
	}
	values, err := s.Values()
	if err != nil {
		return nil, err
	}

	exps := make([]*experiment.Experiment, len(values))
	for i, v := range values {
		exp, err := experiment.New(reg, s.configAt(v), logger.With(s.Param, v))
		if err != nil {
			return nil, fmt.Errorf("sweep %s=%g: %w", s.Param, v, err)
		}
		exps[i] = exp
	}

	points := make([]SweepPoint, len(values))
	var wg sync.WaitGroup
	for i, exp := range exps {
		wg.Add(1)
		go func(idx int, exp *experiment.Experiment) {
			defer wg.Done()
			res, err := exp.Run(ctx)
			points[idx] = pointFromResult(values[idx], res, err)
		}(i, exp)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return points, err
	}

	failed := 0
	for _, p := range points {
		if p.Failed() {
			failed++
		}
	}
	logger.Info("sweep finished", "param", s.Param, "points", len(points), "failed", failed)
	return points, nil
}

func pointFromResult(v float64, res *sim.Result, err error) SweepPoint {
	p := SweepPoint{Value: v, Err: err}
	if res == nil {
		return p
	}
	p.Steps = res.StepsTaken
	p.Drift = res.EnergyDrift
	p.Stability = res.Metrics["stability"]
	p.MaxSpeed = res.Metrics["max_speed"]
	var stepErr *dynamo.StepError
	if errors.As(err, &stepErr) {
		p.Stability = 0
	}
	return p
}
