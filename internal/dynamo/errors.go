package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidStateSize indicates a state whose length is not 2*numParticles.
	ErrInvalidStateSize = errors.New("dynamo: invalid state size")

	// ErrIndexOutOfRange indicates a particle index outside [0, numParticles).
	ErrIndexOutOfRange = errors.New("dynamo: particle index out of range")

	// ErrDegenerateSpring indicates a spring whose endpoints coincide.
	ErrDegenerateSpring = errors.New("dynamo: degenerate spring (coincident endpoints)")

	// ErrInvalidState indicates NaN or Inf in a state vector.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownModel and ErrUnknownIntegrator are returned by name lookups.
	ErrUnknownModel      = errors.New("dynamo: unknown model")
	ErrUnknownIntegrator = errors.New("dynamo: unknown integrator")
)

// StepError wraps a failed tick with its position in the run.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
