package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
)

const (
	DefaultGravity = 0.3
	DefaultMass    = 1.0
	DefaultDrag    = 1.0
)

// Params holds the physical constants of one model instance. They are fixed
// once the model is constructed.
type Params struct {
	Gravity float64
	Mass    float64
	Drag    float64

	// Spring stiffness per class. Pendulum uses Structural and Flex.
	Structural float64
	Shear      float64
	Flex       float64

	// RestLength is the rest length of every pendulum spring and of the
	// structural cloth springs. ShearRest and FlexRest apply to cloth only.
	RestLength float64
	ShearRest  float64
	FlexRest   float64
}

func DefaultPendulumParams() Params {
	return Params{
		Gravity:    DefaultGravity,
		Mass:       DefaultMass,
		Drag:       DefaultDrag,
		Structural: 2.0,
		Flex:       0.5,
		RestLength: 0.1,
	}
}

func DefaultClothParams() Params {
	return Params{
		Gravity:    DefaultGravity,
		Mass:       DefaultMass,
		Drag:       DefaultDrag,
		Structural: 5.0,
		Shear:      0.3,
		Flex:       0.3,
		RestLength: 1.0,
		ShearRest:  1.0,
		FlexRest:   1.0,
	}
}

// RelaxedClothParams sets every cloth rest length to its grid separation, so
// the flat sheet starts with no spring under load. The defaults leave the
// shear and flex springs stretched.
func RelaxedClothParams() Params {
	p := DefaultClothParams()
	p.ShearRest = math.Sqrt2
	p.FlexRest = 2.0
	return p
}

// DefaultParams returns the defaults for kind. Simple ignores its params.
func DefaultParams(kind Kind) Params {
	switch kind {
	case KindCloth:
		return DefaultClothParams()
	default:
		return DefaultPendulumParams()
	}
}

func (p Params) Validate(kind Kind) error {
	if kind == KindSimple {
		return nil
	}
	if !(p.Mass > 0) || math.IsInf(p.Mass, 0) {
		return fmt.Errorf("mass %g: %w", p.Mass, dynamo.ErrParameterBounds)
	}
	if math.IsNaN(p.Gravity) || math.IsInf(p.Gravity, 0) {
		return fmt.Errorf("gravity %g: %w", p.Gravity, dynamo.ErrParameterBounds)
	}
	if !(p.Drag >= 0) || math.IsInf(p.Drag, 0) {
		return fmt.Errorf("drag %g: %w", p.Drag, dynamo.ErrParameterBounds)
	}
	rest := map[string]float64{"rest_length": p.RestLength}
	if kind == KindCloth {
		rest["shear_rest"] = p.ShearRest
		rest["flex_rest"] = p.FlexRest
	}
	for name, r := range rest {
		if !(r >= 0) || math.IsInf(r, 0) {
			return fmt.Errorf("%s %g: %w", name, r, dynamo.ErrParameterBounds)
		}
	}

	stiff := map[string]float64{"structural": p.Structural, "flex": p.Flex}
	if kind == KindCloth {
		stiff["shear"] = p.Shear
	}
	for name, k := range stiff {
		if !(k > 0) || math.IsInf(k, 0) {
			return fmt.Errorf("%s stiffness %g: %w", name, k, dynamo.ErrParameterBounds)
		}
	}
	return nil
}

// GetParams lists the constants by their config names.
func (p Params) GetParams() map[string]float64 {
	return map[string]float64{
		"gravity":     p.Gravity,
		"mass":        p.Mass,
		"drag":        p.Drag,
		"structural":  p.Structural,
		"shear":       p.Shear,
		"flex":        p.Flex,
		"rest_length": p.RestLength,
		"shear_rest":  p.ShearRest,
		"flex_rest":   p.FlexRest,
	}
}

func (p *Params) SetParam(name string, value float64) error {
	switch name {
	case "gravity":
		p.Gravity = value
	case "mass":
		p.Mass = value
	case "drag":
		p.Drag = value
	case "structural":
		p.Structural = value
	case "shear":
		p.Shear = value
	case "flex":
		p.Flex = value
	case "rest_length":
		p.RestLength = value
	case "shear_rest":
		p.ShearRest = value
	case "flex_rest":
		p.FlexRest = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
