package physics

import "github.com/san-kum/springsim/internal/dynamo"

// NewSimple returns a single particle at (1,0,0) moving with the rotational
// field, so its velocity slot starts at (0,1,0).
func NewSimple() *Model {
	return &Model{
		kind:   KindSimple,
		n:      1,
		params: DefaultPendulumParams(),
		pinned: []bool{false},
		state:  dynamo.State{{X: 1}, {Y: 1}},
	}
}

// evalRotational maps position (x,y,z) to (-y,x,0). The velocity slot tracks
// that field, so its derivative is (-x,-y,0).
func evalRotational(x dynamo.State) dynamo.State {
	dx := make(dynamo.State, len(x))
	for i := 0; i < len(x); i += 2 {
		p := x[i]
		dx[i] = fieldVelocity(p)
		dx[i+1] = dynamo.Vec3{X: -p.X, Y: -p.Y}
	}
	return dx
}

// fieldVelocity is the rotational field at p, the velocity a Simple particle
// carries at that position.
func fieldVelocity(p dynamo.Vec3) dynamo.Vec3 {
	return dynamo.Vec3{X: -p.Y, Y: p.X}
}
