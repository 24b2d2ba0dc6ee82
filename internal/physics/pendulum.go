package physics

import (
	"fmt"

	"github.com/san-kum/springsim/internal/dynamo"
)

// NewPendulum builds a chain of n particles. Particle 0 is pinned at (0,1,0)
// and particle i starts at rest at (i,1,i+1). Each particle is tied to its
// predecessor by a structural spring and, from the third on, to the one
// before that by a flex spring.
func NewPendulum(n int, p Params) (*Model, error) {
	if n < 1 {
		return nil, fmt.Errorf("pendulum with %d particles: %w", n, dynamo.ErrParameterBounds)
	}
	if err := p.Validate(KindPendulum); err != nil {
		return nil, fmt.Errorf("pendulum: %w", err)
	}

	state := dynamo.NewState(n)
	state[0] = dynamo.Vec3{Y: 1}
	for i := 1; i < n; i++ {
		state[2*i] = dynamo.Vec3{X: float64(i), Y: 1, Z: float64(i) + 1}
	}

	springs := make([]Spring, 0, 2*n)
	for i := 1; i < n; i++ {
		springs = append(springs, Spring{A: i - 1, B: i, Kind: Structural, Stiffness: p.Structural, RestLength: p.RestLength})
		if i > 1 {
			springs = append(springs, Spring{A: i - 2, B: i, Kind: Flex, Stiffness: p.Flex, RestLength: p.RestLength})
		}
	}

	pinned := make([]bool, n)
	pinned[0] = true

	return newSpringModel(KindPendulum, state, springs, pinned, p)
}
