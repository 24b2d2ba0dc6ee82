package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
)

// StateStepper advances an arbitrary state without touching the system.
// Every stepper in the integrators package satisfies it.
type StateStepper interface {
	Step(sys dynamo.System, x dynamo.State, h float64) (dynamo.State, error)
}

type pinner interface {
	Pinned(i int) bool
}

// nudgeIndex is the last particle whose motion is free. A pinned particle
// would keep any offset forever.
func nudgeIndex(sys dynamo.System) (int, error) {
	n := sys.NumParticles()
	p, ok := sys.(pinner)
	for i := n - 1; i >= 0; i-- {
		if !ok || !p.Pinned(i) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("lyapunov: no free particle to nudge: %w", dynamo.ErrParameterBounds)
}

// LyapunovExponent estimates the largest Lyapunov exponent of sys from its
// current state. A copy of the state with the last free particle nudged by
// delta along X is stepped alongside the unperturbed state. After every step
// the log of their separation ratio is accumulated and the copy is pulled
// back to distance delta.
func LyapunovExponent(sys dynamo.System, st StateStepper, h float64, steps int, delta float64) (float64, error) {
	if !(h > 0) || steps < 1 || !(delta > 0) {
		return 0, fmt.Errorf("lyapunov h=%g steps=%d delta=%g: %w", h, steps, delta, dynamo.ErrParameterBounds)
	}

	x := sys.State()
	if len(x) == 0 {
		return 0, fmt.Errorf("lyapunov: %w", dynamo.ErrInvalidStateSize)
	}
	idx, err := nudgeIndex(sys)
	if err != nil {
		return 0, err
	}
	xp := x.Clone()
	xp[2*idx].X += delta

	sumLog := 0.0
	for i := 0; i < steps; i++ {
		if x, err = st.Step(sys, x, h); err != nil {
			return 0, &dynamo.StepError{Step: i + 1, Time: float64(i) * h, Wrapped: err}
		}
		if xp, err = st.Step(sys, xp, h); err != nil {
			return 0, &dynamo.StepError{Step: i + 1, Time: float64(i) * h, Wrapped: err}
		}

		sep := xp.Sub(x).Norm()
		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			return 0, fmt.Errorf("lyapunov step %d separation %g: %w", i+1, sep, dynamo.ErrInvalidState)
		}
		sumLog += math.Log(sep / delta)
		xp = x.AddScaled(delta/sep, xp.Sub(x))
	}

	return sumLog / (float64(steps) * h), nil
}
