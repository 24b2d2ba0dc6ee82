// Package trace records particle trajectories and writes them as CSV.
package trace

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/sim"
)

// Row is one particle at one sampled step.
type Row struct {
	Step     int     `csv:"step"`
	Time     float64 `csv:"time"`
	Particle int     `csv:"particle"`
	X        float64 `csv:"x"`
	Y        float64 `csv:"y"`
	Z        float64 `csv:"z"`
	VX       float64 `csv:"vx"`
	VY       float64 `csv:"vy"`
	VZ       float64 `csv:"vz"`
	Speed    float64 `csv:"speed"`
}

// Recorder is a dynamo.Observer that buffers rows until Flush.
type Recorder struct {
	every     int
	particles []int
	rows      []Row
	err       error

	headerWritten bool
}

// NewRecorder samples every k-th step (k <= 1 records all) for the listed
// particles, or for all particles when none are given.
func NewRecorder(every int, particles ...int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{every: every, particles: particles}
}

func (r *Recorder) OnStep(step int, x dynamo.State, t float64) {
	if step%r.every != 0 || r.err != nil {
		return
	}

	indices := r.particles
	if len(indices) == 0 {
		indices = make([]int, x.NumParticles())
		for i := range indices {
			indices[i] = i
		}
	}

	for _, i := range indices {
		p, err := x.Position(i)
		if err != nil {
			r.err = fmt.Errorf("trace step %d: %w", step, err)
			return
		}
		v, _ := x.Velocity(i)
		r.rows = append(r.rows, Row{
			Step: step, Time: t, Particle: i,
			X: p.X, Y: p.Y, Z: p.Z,
			VX: v.X, VY: v.Y, VZ: v.Z,
			Speed: r3.Norm(v),
		})
	}
}

// Rows returns the buffered rows.
func (r *Recorder) Rows() []Row { return r.rows }

func (r *Recorder) Len() int { return len(r.rows) }

// Flush writes the buffered rows to w and clears the buffer. The header is
// written on the first flush only.
func (r *Recorder) Flush(w io.Writer) error {
	if r.err != nil {
		return r.err
	}
	if len(r.rows) == 0 && r.headerWritten {
		return nil
	}

	if !r.headerWritten {
		if err := gocsv.Marshal(r.rows, w); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
		r.headerWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(r.rows, w); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
	}

	r.rows = r.rows[:0]
	return nil
}

// FromFrames flattens sampled frames into rows, one per particle.
func FromFrames(frames []sim.Frame) []Row {
	r := NewRecorder(1)
	for _, f := range frames {
		r.OnStep(f.Step, f.State, f.Time)
	}
	return r.rows
}

// Write writes rows with a header.
func Write(w io.Writer, rows []Row) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing trace: %w", err)
	}
	return nil
}

// Read parses CSV written by Flush or Write.
func Read(rd io.Reader) ([]Row, error) {
	var rows []Row
	if err := gocsv.Unmarshal(rd, &rows); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}
	return rows, nil
}
