package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/sim"
)

// Scenario is a named list of runs executed in order.
type Scenario struct {
	Name        string
	Description string
	Runs        []ScenarioRun
}

// ScenarioRun is one entry of a scenario file. Each entry may name a preset
// as "model/preset"; its remaining keys overlay the preset, or the defaults
// when there is none.
type ScenarioRun struct {
	Name   string
	Config *config.Config
}

type scenarioFile struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Runs        []yaml.Node `yaml:"runs"`
}

type runHeader struct {
	Name   string `yaml:"name"`
	Preset string `yaml:"preset"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return sc, nil
}

func ParseScenario(data []byte) (*Scenario, error) {
	var file scenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	sc := &Scenario{
		Name:        file.Name,
		Description: file.Description,
		Runs:        make([]ScenarioRun, 0, len(file.Runs)),
	}
	for i := range file.Runs {
		node := &file.Runs[i]

		var hdr runHeader
		if err := node.Decode(&hdr); err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
		cfg, err := baseConfig(hdr.Preset)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
		if err := node.Decode(cfg); err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}

		name := hdr.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", cfg.Model, i+1)
		}
		sc.Runs = append(sc.Runs, ScenarioRun{Name: name, Config: cfg})
	}
	return sc, nil
}

func baseConfig(preset string) (*config.Config, error) {
	if preset == "" {
		return config.DefaultConfig(), nil
	}
	model, name, ok := strings.Cut(preset, "/")
	if !ok {
		return nil, fmt.Errorf("preset %q: want model/name", preset)
	}
	cfg := config.GetPreset(model, name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset %q", preset)
	}
	return cfg, nil
}

// ScenarioResult pairs a run with its outcome. Err is set only for runs
// that diverged; Result then holds the partial run.
type ScenarioResult struct {
	Name   string
	Result *sim.Result
	Err    error
}

// RunScenario stops at the first run that cannot be built or is cancelled.
// A run that diverges is recorded and the scenario continues.
func RunScenario(ctx context.Context, reg *experiment.Registry, sc *Scenario, logger *slog.Logger) ([]ScenarioResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	results := make([]ScenarioResult, 0, len(sc.Runs))

	for i, run := range sc.Runs {
		logger.Info("scenario run", "index", i+1, "of", len(sc.Runs), "name", run.Name)

		exp, err := experiment.New(reg, run.Config, logger.With("run", run.Name))
		if err != nil {
			return results, fmt.Errorf("run %q: %w", run.Name, err)
		}
		res, err := exp.Run(ctx)

		var stepErr *dynamo.StepError
		if err != nil && !errors.As(err, &stepErr) {
			return results, fmt.Errorf("run %q: %w", run.Name, err)
		}
		results = append(results, ScenarioResult{Name: run.Name, Result: res, Err: err})
	}
	return results, nil
}
