package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/integrators"
	"github.com/san-kum/springsim/internal/metrics"
	"github.com/san-kum/springsim/internal/physics"
)

// StabilityThreshold is the particle speed above which a sampled state counts
// as unstable.
const StabilityThreshold = 10.0

type ModelFactory func(size int, p physics.Params) (*physics.Model, error)

type Registry struct {
	models      map[string]ModelFactory
	integrators map[string]func() dynamo.Stepper
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]ModelFactory),
		integrators: make(map[string]func() dynamo.Stepper),
	}

	for _, kind := range []physics.Kind{physics.KindSimple, physics.KindPendulum, physics.KindCloth} {
		kind := kind
		r.models[kind.String()] = func(size int, p physics.Params) (*physics.Model, error) {
			return physics.New(kind, size, p)
		}
	}

	r.integrators["euler"] = func() dynamo.Stepper { return integrators.NewEuler() }
	r.integrators["trapezoidal"] = func() dynamo.Stepper { return integrators.NewTrapezoidal() }
	r.integrators["rk4"] = func() dynamo.Stepper { return integrators.NewRK4() }
	r.integrators["verlet"] = func() dynamo.Stepper { return integrators.NewVerlet() }

	return r
}

func (r *Registry) GetModel(name string, size int, p physics.Params) (*physics.Model, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, dynamo.ErrUnknownModel)
	}
	return fn(size, p)
}

func (r *Registry) GetIntegrator(name string) (dynamo.Stepper, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, dynamo.ErrUnknownIntegrator)
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string {
	return sortedKeys(r.models)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

// DefaultMetrics returns fresh metrics bound to m.
func (r *Registry) DefaultMetrics(m *physics.Model) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewEnergy(m),
		metrics.NewEnergyDrift(m),
		metrics.NewStability(StabilityThreshold),
		metrics.NewMaxSpeed(),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
