package physics

import (
	"fmt"

	"github.com/san-kum/springsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// MinSpringLength is the separation below which a spring has no direction.
const MinSpringLength = 1e-9

type SpringKind int

const (
	Structural SpringKind = iota
	Shear
	Flex
)

func (k SpringKind) String() string {
	switch k {
	case Structural:
		return "structural"
	case Shear:
		return "shear"
	case Flex:
		return "flex"
	}
	return fmt.Sprintf("SpringKind(%d)", int(k))
}

// Spring connects particles A and B. It has no direction: the force on B is
// the negation of the force on A.
type Spring struct {
	A, B       int
	Kind       SpringKind
	Stiffness  float64
	RestLength float64
}

func (s Spring) validate(numParticles int) error {
	if s.A < 0 || s.A >= numParticles || s.B < 0 || s.B >= numParticles {
		return fmt.Errorf("spring %d-%d with %d particles: %w", s.A, s.B, numParticles, dynamo.ErrIndexOutOfRange)
	}
	if s.A == s.B {
		return fmt.Errorf("spring %d-%d connects a particle to itself: %w", s.A, s.B, dynamo.ErrDegenerateSpring)
	}
	if !(s.Stiffness > 0) {
		return fmt.Errorf("spring %d-%d stiffness %g: %w", s.A, s.B, s.Stiffness, dynamo.ErrParameterBounds)
	}
	if !(s.RestLength >= 0) {
		return fmt.Errorf("spring %d-%d rest length %g: %w", s.A, s.B, s.RestLength, dynamo.ErrParameterBounds)
	}
	return nil
}

// Force returns the Hooke's-law force on endpoint A for the positions in x:
// k * (|d| - r) * d/|d| with d = pB - pA. Stretched springs pull A toward B.
func (s Spring) Force(x dynamo.State) (dynamo.Vec3, error) {
	pa, err := x.Position(s.A)
	if err != nil {
		return dynamo.Vec3{}, err
	}
	pb, err := x.Position(s.B)
	if err != nil {
		return dynamo.Vec3{}, err
	}

	d := r3.Sub(pb, pa)
	length := r3.Norm(d)
	if length < MinSpringLength {
		return dynamo.Vec3{}, fmt.Errorf("spring %d-%d at separation %g: %w", s.A, s.B, length, dynamo.ErrDegenerateSpring)
	}
	return r3.Scale(s.Stiffness*(length-s.RestLength)/length, d), nil
}

// Energy is the elastic potential k/2 * (|d| - r)^2.
func (s Spring) Energy(x dynamo.State) float64 {
	stretch := r3.Norm(r3.Sub(x[2*s.B], x[2*s.A])) - s.RestLength
	return 0.5 * s.Stiffness * stretch * stretch
}
