// Package analysis measures time series taken from simulation frames.
package analysis

import (
	"fmt"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/sim"
)

// Heights returns the Y coordinate of one particle in every frame.
func Heights(frames []sim.Frame, particle int) ([]float64, error) {
	out := make([]float64, len(frames))
	for i, f := range frames {
		p, err := f.State.Position(particle)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", f.Step, err)
		}
		out[i] = p.Y
	}
	return out, nil
}

// Energies evaluates the total energy of every frame.
func Energies(frames []sim.Frame, sys dynamo.Hamiltonian) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = sys.Energy(f.State)
	}
	return out
}
