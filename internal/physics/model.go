// Package physics builds the mass-spring models: a single particle in a
// rotational field, a pinned pendulum chain and a cloth grid.
package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

type Kind int

const (
	KindSimple Kind = iota
	KindPendulum
	KindCloth
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindPendulum:
		return "pendulum"
	case KindCloth:
		return "cloth"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a model name to its Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "simple":
		return KindSimple, nil
	case "pendulum":
		return KindPendulum, nil
	case "cloth":
		return KindCloth, nil
	}
	return 0, fmt.Errorf("%q: %w", name, dynamo.ErrUnknownModel)
}

// Model is a particle system of one Kind. Its topology and constants are
// fixed at construction; the state changes only through SetState.
type Model struct {
	kind    Kind
	n       int
	side    int
	params  Params
	springs []Spring
	pinned  []bool
	state   dynamo.State
}

// New builds a model of the given kind. size is the chain length for a
// pendulum and the grid side for a cloth; Simple ignores size and p.
func New(kind Kind, size int, p Params) (*Model, error) {
	switch kind {
	case KindSimple:
		return NewSimple(), nil
	case KindPendulum:
		return NewPendulum(size, p)
	case KindCloth:
		return NewCloth(size, p)
	}
	return nil, fmt.Errorf("kind %d: %w", int(kind), dynamo.ErrUnknownModel)
}

func newSpringModel(kind Kind, state dynamo.State, springs []Spring, pinned []bool, p Params) (*Model, error) {
	n := state.NumParticles()
	for _, s := range springs {
		if err := s.validate(n); err != nil {
			return nil, fmt.Errorf("%s topology: %w", kind, err)
		}
		if _, err := s.Force(state); err != nil {
			return nil, fmt.Errorf("%s topology: %w", kind, err)
		}
	}
	return &Model{
		kind:    kind,
		n:       n,
		params:  p,
		springs: springs,
		pinned:  pinned,
		state:   state,
	}, nil
}

func (m *Model) Kind() Kind          { return m.kind }
func (m *Model) NumParticles() int   { return m.n }
func (m *Model) Params() Params      { return m.params }
func (m *Model) NumSprings() int     { return len(m.springs) }
func (m *Model) State() dynamo.State { return m.state.Clone() }

// Side is the cloth grid side, or 0 for other kinds.
func (m *Model) Side() int { return m.side }

func (m *Model) SetState(x dynamo.State) error {
	if err := dynamo.CheckSize(x, m.n); err != nil {
		return fmt.Errorf("%s: set state: %w", m.kind, err)
	}
	m.state = x.Clone()
	return nil
}

func (m *Model) Position(i int) (dynamo.Vec3, error) { return m.state.Position(i) }
func (m *Model) Velocity(i int) (dynamo.Vec3, error) { return m.state.Velocity(i) }

// Positions returns the current particle positions in index order.
func (m *Model) Positions() []dynamo.Vec3 {
	out := make([]dynamo.Vec3, m.n)
	for i := range out {
		out[i] = m.state[2*i]
	}
	return out
}

// Springs returns a copy of the topology.
func (m *Model) Springs() []Spring {
	out := make([]Spring, len(m.springs))
	copy(out, m.springs)
	return out
}

func (m *Model) Pinned(i int) bool {
	return i >= 0 && i < len(m.pinned) && m.pinned[i]
}

// EvalF returns the time derivative of x. x need not be the current state.
func (m *Model) EvalF(x dynamo.State) (dynamo.State, error) {
	if err := dynamo.CheckSize(x, m.n); err != nil {
		return nil, fmt.Errorf("%s: eval: %w", m.kind, err)
	}
	switch m.kind {
	case KindSimple:
		return evalRotational(x), nil
	case KindPendulum, KindCloth:
		return m.evalSprings(x)
	}
	return nil, fmt.Errorf("kind %d: %w", int(m.kind), dynamo.ErrUnknownModel)
}

// Forces accumulates gravity, drag and spring forces for every particle.
func (m *Model) Forces(x dynamo.State) ([]dynamo.Vec3, error) {
	if err := dynamo.CheckSize(x, m.n); err != nil {
		return nil, fmt.Errorf("%s: forces: %w", m.kind, err)
	}

	f := make([]dynamo.Vec3, m.n)
	weight := dynamo.Vec3{Y: -m.params.Mass * m.params.Gravity}
	for i := range f {
		f[i] = r3.Sub(weight, r3.Scale(m.params.Drag, x[2*i+1]))
	}

	for _, s := range m.springs {
		sf, err := s.Force(x)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.kind, err)
		}
		f[s.A] = r3.Add(f[s.A], sf)
		f[s.B] = r3.Sub(f[s.B], sf)
	}
	return f, nil
}

func (m *Model) evalSprings(x dynamo.State) (dynamo.State, error) {
	f, err := m.Forces(x)
	if err != nil {
		return nil, err
	}

	dx := make(dynamo.State, len(x))
	invMass := 1 / m.params.Mass
	for i := 0; i < m.n; i++ {
		if m.pinned[i] {
			continue
		}
		dx[2*i] = x[2*i+1]
		dx[2*i+1] = r3.Scale(invMass, f[i])
	}
	return dx, nil
}

// Energy returns the total mechanical energy of x, or NaN if x has the
// wrong size.
func (m *Model) Energy(x dynamo.State) float64 {
	if dynamo.CheckSize(x, m.n) != nil {
		return math.NaN()
	}
	if m.kind == KindSimple {
		return 0.5 * r3.Dot(x[0], x[0])
	}

	energy := 0.0
	for i := 0; i < m.n; i++ {
		v := x[2*i+1]
		energy += 0.5*m.params.Mass*r3.Dot(v, v) + m.params.Mass*m.params.Gravity*x[2*i].Y
	}
	for _, s := range m.springs {
		energy += s.Energy(x)
	}
	return energy
}

// SpringForces returns the force magnitude of every spring at the current
// state, in topology order.
func (m *Model) SpringForces() ([]float64, error) {
	out := make([]float64, len(m.springs))
	for i, s := range m.springs {
		f, err := s.Force(m.state)
		if err != nil {
			return nil, err
		}
		out[i] = r3.Norm(f)
	}
	return out, nil
}
