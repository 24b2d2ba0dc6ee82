package config

import (
	"math"
	"sort"
)

var Presets = map[string]map[string]*Config{
	"simple": {
		"orbit": {
			Model: "simple", Integrator: "euler", Dt: 0.01, Steps: 628, SampleEvery: 4,
		},
	},
	"pendulum": {
		"short": {
			Model: "pendulum", Size: 3, Integrator: "euler", Dt: 0.01, Steps: 500, SampleEvery: 5,
		},
		"long": {
			Model: "pendulum", Size: 10, Integrator: "trapezoidal", Dt: 0.005, Steps: 4000, SampleEvery: 20,
		},
	},
	"cloth": {
		"relaxed": {
			Model: "cloth", Size: 6, Integrator: "trapezoidal", Dt: 0.01, Steps: 1000, SampleEvery: 10,
			Physics: map[string]float64{"shear_rest": math.Sqrt2, "flex_rest": 2},
		},
		"small": {
			Model: "cloth", Size: 5, Integrator: "trapezoidal", Dt: 0.01, Steps: 1000, SampleEvery: 10,
		},
		"sheet": {
			Model: "cloth", Size: 12, Integrator: "trapezoidal", Dt: 0.005, Steps: 2000, SampleEvery: 20,
			Seed: 7, Jitter: 0.05,
		},
		"stiff": {
			Model: "cloth", Size: 8, Integrator: "rk4", Dt: 0.005, Steps: 2000, SampleEvery: 20,
			Physics: map[string]float64{"structural": 20, "shear": 2, "flex": 2},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListModels returns the models that have presets.
func ListModels() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
