package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

type stepFunc func(sys dynamo.System, x dynamo.State, h float64) (dynamo.State, error)

// advance reads the system state, applies one step and writes the result
// back. A failed or non-finite step leaves the system untouched.
func advance(step stepFunc, sys dynamo.System, h float64) error {
	if !(h > 0) || math.IsInf(h, 0) {
		return fmt.Errorf("step size %g: %w", h, dynamo.ErrParameterBounds)
	}

	next, err := step(sys, sys.State(), h)
	if err != nil {
		return err
	}
	if !next.IsValid() {
		return dynamo.ErrInvalidState
	}
	return sys.SetState(next)
}

// Flatten lays a state out as x0,y0,z0,x1,... for numeric comparison.
func Flatten(x dynamo.State) []float64 {
	out := make([]float64, 0, 3*len(x))
	for _, v := range x {
		out = append(out, v.X, v.Y, v.Z)
	}
	return out
}

// MaxDeviation is the largest componentwise difference between two states of
// equal length.
func MaxDeviation(a, b dynamo.State) float64 {
	return floats.Distance(Flatten(a), Flatten(b), math.Inf(1))
}
