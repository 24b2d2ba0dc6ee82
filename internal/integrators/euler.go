package integrators

import "github.com/san-kum/springsim/internal/dynamo"

// Euler is the explicit first-order method x' = x + h*f(x).
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, h float64) (dynamo.State, error) {
	dx, err := sys.EvalF(x)
	if err != nil {
		return nil, err
	}
	return x.AddScaled(h, dx), nil
}

func (e *Euler) Advance(sys dynamo.System, h float64) error {
	return advance(e.Step, sys, h)
}
