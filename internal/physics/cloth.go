package physics

import (
	"fmt"

	"github.com/san-kum/springsim/internal/dynamo"
)

type gridOffset struct {
	kind SpringKind
	dRow int
	dCol int
}

// Every offset looks backward so each spring is generated once, from its
// later endpoint.
var clothOffsets = []gridOffset{
	{Structural, -1, 0},
	{Structural, 0, -1},
	{Shear, -1, -1},
	{Shear, -1, 1},
	{Flex, -2, 0},
	{Flex, 0, -2},
}

// NewCloth builds a side x side grid in the z=0 plane. Particle row*side+col
// starts at rest at (col,row,0); the top row (row == side-1) is pinned.
func NewCloth(side int, p Params) (*Model, error) {
	if side < 1 {
		return nil, fmt.Errorf("cloth with side %d: %w", side, dynamo.ErrParameterBounds)
	}
	if err := p.Validate(KindCloth); err != nil {
		return nil, fmt.Errorf("cloth: %w", err)
	}

	n := side * side
	state := dynamo.NewState(n)
	pinned := make([]bool, n)
	for row := 0; row < side; row++ {
		for col := 0; col < side; col++ {
			idx := row*side + col
			state[2*idx] = dynamo.Vec3{X: float64(col), Y: float64(row)}
			pinned[idx] = row == side-1
		}
	}

	m, err := newSpringModel(KindCloth, state, clothSprings(side, p), pinned, p)
	if err != nil {
		return nil, err
	}
	m.side = side
	return m, nil
}

func clothSprings(side int, p Params) []Spring {
	stiffness := map[SpringKind]float64{
		Structural: p.Structural,
		Shear:      p.Shear,
		Flex:       p.Flex,
	}
	rest := map[SpringKind]float64{
		Structural: p.RestLength,
		Shear:      p.ShearRest,
		Flex:       p.FlexRest,
	}

	springs := make([]Spring, 0, ClothSpringCount(side))
	for row := 0; row < side; row++ {
		for col := 0; col < side; col++ {
			for _, off := range clothOffsets {
				r, c := row+off.dRow, col+off.dCol
				if r < 0 || r >= side || c < 0 || c >= side {
					continue
				}
				springs = append(springs, Spring{
					A:          row*side + col,
					B:          r*side + c,
					Kind:       off.kind,
					Stiffness:  stiffness[off.kind],
					RestLength: rest[off.kind],
				})
			}
		}
	}
	return springs
}

// ClothSpringCount is the number of springs in a side x side cloth.
func ClothSpringCount(side int) int {
	count := 0
	for _, off := range clothOffsets {
		rows := side - abs(off.dRow)
		cols := side - abs(off.dCol)
		if rows > 0 && cols > 0 {
			count += rows * cols
		}
	}
	return count
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
