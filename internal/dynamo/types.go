// Package dynamo defines the particle state layout and the contracts shared
// by models, steppers and the simulator.
package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

type Vec3 = r3.Vec

// State stores particle i's position at index 2i and its velocity at 2i+1.
type State []Vec3

func NewState(numParticles int) State {
	return make(State, 2*numParticles)
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) NumParticles() int { return len(s) / 2 }

func (s State) Position(i int) (Vec3, error) {
	if i < 0 || 2*i >= len(s) {
		return Vec3{}, fmt.Errorf("position %d of %d particles: %w", i, s.NumParticles(), ErrIndexOutOfRange)
	}
	return s[2*i], nil
}

func (s State) Velocity(i int) (Vec3, error) {
	if i < 0 || 2*i+1 >= len(s) {
		return Vec3{}, fmt.Errorf("velocity %d of %d particles: %w", i, s.NumParticles(), ErrIndexOutOfRange)
	}
	return s[2*i+1], nil
}

func (s State) IsValid() bool {
	for _, v := range s {
		for _, c := range [3]float64{v.X, v.Y, v.Z} {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return false
			}
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += r3.Dot(v, v)
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = r3.Add(s[i], other[i])
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = r3.Sub(s[i], other[i])
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = r3.Scale(factor, s[i])
	}
	return result
}

// AddScaled returns s + factor*other without modifying either operand.
func (s State) AddScaled(factor float64, other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = r3.Add(s[i], r3.Scale(factor, other[i]))
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// CheckSize reports ErrInvalidStateSize unless x holds exactly numParticles pairs.
func CheckSize(x State, numParticles int) error {
	if len(x) != 2*numParticles {
		return fmt.Errorf("got %d vectors, want %d: %w", len(x), 2*numParticles, ErrInvalidStateSize)
	}
	return nil
}

// System is a particle model advanced by a Stepper.
type System interface {
	NumParticles() int
	// State returns a copy of the current state.
	State() State
	// SetState replaces the whole state. The previous state is kept on error.
	SetState(x State) error
	// EvalF maps x to its time derivative. It must not mutate the system.
	EvalF(x State) (State, error)
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Stepper interface {
	Advance(sys System, h float64) error
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(step int, x State, t float64)
}
