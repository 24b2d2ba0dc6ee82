package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
)

// Experiment is a model, stepper and simulator assembled from a Config.
type Experiment struct {
	cfg       *config.Config
	model     *physics.Model
	stepper   dynamo.Stepper
	simulator *sim.Simulator
}

// New validates cfg, builds the model, applies the configured jitter and
// attaches the default metrics.
func New(reg *Registry, cfg *config.Config, logger *slog.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	p, err := cfg.Params()
	if err != nil {
		return nil, err
	}

	model, err := reg.GetModel(cfg.Model, cfg.Size, p)
	if err != nil {
		return nil, err
	}
	if err := physics.Perturb(model, cfg.Jitter, cfg.Seed); err != nil {
		return nil, err
	}
	stepper, err := reg.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("model", cfg.Model, "integrator", cfg.Integrator)

	s := sim.New(model, stepper, logger)
	for _, m := range reg.DefaultMetrics(model) {
		s.AddMetric(m)
	}

	return &Experiment{
		cfg:       cfg.Clone(),
		model:     model,
		stepper:   stepper,
		simulator: s,
	}, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.simulator.Run(ctx, e.SimConfig())
}

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Dt:          e.cfg.Dt,
		Steps:       e.cfg.Steps,
		SampleEvery: e.cfg.SampleEvery,
	}
}

func (e *Experiment) Model() *physics.Model     { return e.model }
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }
func (e *Experiment) Config() *config.Config    { return e.cfg }
func (e *Experiment) Stepper() dynamo.Stepper   { return e.stepper }
