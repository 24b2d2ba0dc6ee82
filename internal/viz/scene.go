package viz

import (
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
)

// Scene is what the renderer needs from a particle model.
type Scene interface {
	Positions() []dynamo.Vec3
	Springs() []physics.Spring
	Pinned(i int) bool
}

type forceReporter interface {
	SpringForces() ([]float64, error)
}

// SceneOptions selects which spring classes are drawn.
type SceneOptions struct {
	Structural bool
	Shear      bool
	Flex       bool
}

func DefaultSceneOptions() SceneOptions {
	return SceneOptions{Structural: true, Shear: true}
}

// Shows reports whether springs of kind k are drawn.
func (o SceneOptions) Shows(k physics.SpringKind) bool {
	switch k {
	case physics.Structural:
		return o.Structural
	case physics.Shear:
		return o.Shear
	case physics.Flex:
		return o.Flex
	}
	return false
}

// Draw renders springs as lines and particles as dots. Springs carrying more
// than the mean force are drawn solid, the rest dotted. Pinned particles get a
// larger mark.
func Draw(c *Canvas, cam *Camera, s Scene, opts SceneOptions) {
	w, h := c.Dots()
	pos := s.Positions()
	screen := make([][2]int, len(pos))
	for i, p := range pos {
		x, y, _ := cam.Project(p, w, h)
		screen[i] = [2]int{x, y}
	}

	springs := s.Springs()
	forces, mean := SpringLoads(s)

	for i, sp := range springs {
		if !opts.Shows(sp.Kind) || sp.A >= len(screen) || sp.B >= len(screen) {
			continue
		}
		dotted := forces != nil && forces[i] <= mean
		a, b := screen[sp.A], screen[sp.B]
		c.Line(a[0], a[1], b[0], b[1], dotted)
	}

	for i, p := range screen {
		if s.Pinned(i) {
			c.Blob(p[0], p[1], 1)
		} else {
			c.Set(p[0], p[1])
		}
	}
}

// SpringLoads returns the force in every spring of s and their mean, or nil
// if s cannot report forces.
func SpringLoads(s Scene) ([]float64, float64) {
	fr, ok := s.(forceReporter)
	if !ok {
		return nil, 0
	}
	forces, err := fr.SpringForces()
	if err != nil || len(forces) != len(s.Springs()) {
		return nil, 0
	}
	mean := 0.0
	for _, f := range forces {
		mean += f
	}
	if len(forces) > 0 {
		mean /= float64(len(forces))
	}
	return forces, mean
}
