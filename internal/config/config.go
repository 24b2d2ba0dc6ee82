package config

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
)

const (
	DefaultModel       = "pendulum"
	DefaultIntegrator  = "trapezoidal"
	DefaultSize        = 3
	DefaultDt          = 0.01
	DefaultSteps       = 1000
	DefaultSampleEvery = 10
)

type Config struct {
	Model       string  `yaml:"model"`
	Size        int     `yaml:"size"`
	Integrator  string  `yaml:"integrator"`
	Dt          float64 `yaml:"dt"`
	Steps       int     `yaml:"steps"`
	SampleEvery int     `yaml:"sample_every"`
	Seed        int64   `yaml:"seed"`
	Jitter      float64 `yaml:"jitter"`
	// Physics overrides the model defaults by name, e.g. gravity or flex.
	Physics map[string]float64 `yaml:"physics,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:       DefaultModel,
		Size:        DefaultSize,
		Integrator:  DefaultIntegrator,
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		SampleEvery: DefaultSampleEvery,
	}
}

// Load overlays the YAML file at path on DefaultConfig.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays the YAML file at path on cfg. Keys the file omits keep
// their values in cfg; physics entries are merged by name.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	out := *c
	if c.Physics != nil {
		out.Physics = make(map[string]float64, len(c.Physics))
		for k, v := range c.Physics {
			out.Physics[k] = v
		}
	}
	return &out
}

func (c *Config) Kind() (physics.Kind, error) {
	return physics.ParseKind(c.Model)
}

// Params returns the model defaults with the physics overrides applied.
func (c *Config) Params() (physics.Params, error) {
	kind, err := c.Kind()
	if err != nil {
		return physics.Params{}, err
	}
	p := physics.DefaultParams(kind)

	names := make([]string, 0, len(c.Physics))
	for name := range c.Physics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := p.SetParam(name, c.Physics[name]); err != nil {
			return physics.Params{}, fmt.Errorf("physics: %w", err)
		}
	}
	return p, nil
}

func (c *Config) Validate() error {
	kind, err := c.Kind()
	if err != nil {
		return err
	}
	if c.Integrator == "" {
		return fmt.Errorf("integrator: %w", dynamo.ErrUnknownIntegrator)
	}
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("dt %g: %w", c.Dt, dynamo.ErrParameterBounds)
	}
	if c.Steps < 0 {
		return fmt.Errorf("steps %d: %w", c.Steps, dynamo.ErrParameterBounds)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("sample_every %d: %w", c.SampleEvery, dynamo.ErrParameterBounds)
	}
	if kind != physics.KindSimple && c.Size < 1 {
		return fmt.Errorf("size %d: %w", c.Size, dynamo.ErrParameterBounds)
	}
	if !(c.Jitter >= 0) {
		return fmt.Errorf("jitter %g: %w", c.Jitter, dynamo.ErrParameterBounds)
	}

	p, err := c.Params()
	if err != nil {
		return err
	}
	return p.Validate(kind)
}
