package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
)

// Simulator drives one system with one stepper. It is not safe for
// concurrent use; run independent simulators with an Ensemble instead.
type Simulator struct {
	sys       dynamo.System
	stepper   dynamo.Stepper
	logger    *slog.Logger
	metrics   []dynamo.Metric
	observers []dynamo.Observer

	step int
	t    float64
}

func New(sys dynamo.System, stepper dynamo.Stepper, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{
		sys:       sys,
		stepper:   stepper,
		logger:    logger,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) System() dynamo.System { return s.sys }
func (s *Simulator) Steps() int            { return s.step }
func (s *Simulator) Time() float64         { return s.t }

// Tick advances the system by h and notifies metrics and observers with the
// new state. On failure the system keeps its previous state and the error is
// a *dynamo.StepError.
func (s *Simulator) Tick(h float64) error {
	if err := s.stepper.Advance(s.sys, h); err != nil {
		return &dynamo.StepError{Step: s.step + 1, Time: s.t, Wrapped: err}
	}
	s.step++
	s.t += h
	s.notify(s.sys.State())
	return nil
}

// Reset rewinds the clock and clears the metrics. The system state is left
// to the caller.
func (s *Simulator) Reset() {
	s.step, s.t = 0, 0
	for _, m := range s.metrics {
		m.Reset()
	}
}

func (s *Simulator) notify(x dynamo.State) {
	for _, m := range s.metrics {
		m.Observe(x, s.t)
	}
	for _, o := range s.observers {
		o.OnStep(s.step, x, s.t)
	}
}

// Run resets the clock and metrics, then ticks cfg.Steps times. If a tick
// fails or ctx is cancelled the partial result is returned with the error.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	s.Reset()

	x := s.sys.State()
	result := &Result{
		Frames:        make([]Frame, 0, frameCap(cfg)),
		Metrics:       make(map[string]float64),
		InitialEnergy: s.energy(x),
	}
	result.Frames = append(result.Frames, Frame{State: x})
	s.notify(x)

	s.logger.Info("run started",
		"particles", s.sys.NumParticles(),
		"dt", cfg.Dt,
		"steps", cfg.Steps,
	)

	var runErr error
	for i := 0; i < cfg.Steps; i++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		if err := s.Tick(cfg.Dt); err != nil {
			s.logger.Error("step failed", "step", s.step+1, "time", s.t, "err", err)
			runErr = err
			break
		}

		if cfg.SampleEvery > 0 && s.step%cfg.SampleEvery == 0 {
			result.Frames = append(result.Frames, s.frame())
			s.logger.Debug("tick", "step", s.step, "time", s.t)
		}
	}

	if last := result.Final(); last.Step != s.step {
		result.Frames = append(result.Frames, s.frame())
	}
	s.finish(result)

	if runErr != nil {
		return result, runErr
	}
	s.logger.Info("run finished", "summary", result.Summary())
	return result, nil
}

func (s *Simulator) frame() Frame {
	return Frame{Step: s.step, Time: s.t, State: s.sys.State()}
}

func (s *Simulator) finish(r *Result) {
	r.StepsTaken = s.step
	r.Time = s.t
	r.FinalEnergy = s.energy(r.Final().State)
	r.EnergyDrift = drift(r.InitialEnergy, r.FinalEnergy)
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) energy(x dynamo.State) float64 {
	if h, ok := s.sys.(dynamo.Hamiltonian); ok {
		return h.Energy(x)
	}
	return math.NaN()
}

func drift(e0, e1 float64) float64 {
	if e0 == 0 {
		return math.Abs(e1 - e0)
	}
	return math.Abs(e1-e0) / math.Abs(e0)
}

func validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("dt must be positive, got %g: %w", cfg.Dt, dynamo.ErrParameterBounds)
	}
	if cfg.Steps < 0 {
		return fmt.Errorf("steps must be non-negative, got %d: %w", cfg.Steps, dynamo.ErrParameterBounds)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("sample interval must be non-negative, got %d: %w", cfg.SampleEvery, dynamo.ErrParameterBounds)
	}
	return nil
}

func frameCap(cfg Config) int {
	if cfg.SampleEvery <= 0 {
		return 2
	}
	return cfg.Steps/cfg.SampleEvery + 2
}
