package integrators

import "github.com/san-kum/springsim/internal/dynamo"

// RK4 is the classic fourth-order Runge-Kutta method. It serves as the
// high-accuracy reference for the cheaper steppers.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, h float64) (dynamo.State, error) {
	k1, err := sys.EvalF(x)
	if err != nil {
		return nil, err
	}
	k2, err := sys.EvalF(x.AddScaled(h*0.5, k1))
	if err != nil {
		return nil, err
	}
	k3, err := sys.EvalF(x.AddScaled(h*0.5, k2))
	if err != nil {
		return nil, err
	}
	k4, err := sys.EvalF(x.AddScaled(h, k3))
	if err != nil {
		return nil, err
	}

	result := make(dynamo.State, len(x))
	h6 := h / 6.0
	for i := range x {
		result[i] = dynamo.Vec3{
			X: x[i].X + h6*(k1[i].X+2*k2[i].X+2*k3[i].X+k4[i].X),
			Y: x[i].Y + h6*(k1[i].Y+2*k2[i].Y+2*k3[i].Y+k4[i].Y),
			Z: x[i].Z + h6*(k1[i].Z+2*k2[i].Z+2*k3[i].Z+k4[i].Z),
		}
	}
	return result, nil
}

func (r *RK4) Advance(sys dynamo.System, h float64) error {
	return advance(r.Step, sys, h)
}
