package physics

import (
	"fmt"

	"github.com/ojrac/opensimplex-go"
	"github.com/san-kum/springsim/internal/dynamo"
)

const noiseScale = 0.35

// Perturb offsets every unpinned particle by smooth simplex noise of the given
// amplitude, sampled at its current position. The same seed always yields the
// same offsets. A Simple particle's velocity slot follows its new position.
func Perturb(m *Model, amplitude float64, seed int64) error {
	if amplitude < 0 {
		return fmt.Errorf("jitter amplitude %g: %w", amplitude, dynamo.ErrParameterBounds)
	}
	if amplitude == 0 {
		return nil
	}

	noise := opensimplex.New(seed)
	x := m.State()
	for i := 0; i < m.NumParticles(); i++ {
		if m.Pinned(i) {
			continue
		}
		p := x[2*i]
		sx, sy, sz := p.X*noiseScale, p.Y*noiseScale, p.Z*noiseScale
		x[2*i] = dynamo.Vec3{
			X: p.X + amplitude*noise.Eval3(sx, sy, sz),
			Y: p.Y + amplitude*noise.Eval3(sx+17.3, sy, sz),
			Z: p.Z + amplitude*noise.Eval3(sx, sy+31.7, sz),
		}
		if m.kind == KindSimple {
			x[2*i+1] = fieldVelocity(x[2*i])
		}
	}
	return m.SetState(x)
}
