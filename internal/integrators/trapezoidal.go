package integrators

import "github.com/san-kum/springsim/internal/dynamo"

// Trapezoidal is Heun's method: an Euler predictor followed by averaging the
// slopes at both ends of the step.
type Trapezoidal struct{}

func NewTrapezoidal() *Trapezoidal {
	return &Trapezoidal{}
}

func (tr *Trapezoidal) Step(sys dynamo.System, x dynamo.State, h float64) (dynamo.State, error) {
	k1, err := sys.EvalF(x)
	if err != nil {
		return nil, err
	}

	k2, err := sys.EvalF(x.AddScaled(h, k1))
	if err != nil {
		return nil, err
	}

	return x.AddScaled(h/2, k1.Add(k2)), nil
}

func (tr *Trapezoidal) Advance(sys dynamo.System, h float64) error {
	return advance(tr.Step, sys, h)
}
