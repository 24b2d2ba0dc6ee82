package sim

import (
	"log/slog"

	"github.com/san-kum/springsim/internal/dynamo"
)

// Config controls a headless run.
type Config struct {
	Dt    float64
	Steps int
	// SampleEvery keeps one frame per k ticks. The initial and final states
	// are always kept. Zero keeps only those two.
	SampleEvery int
}

// Frame is a sampled state.
type Frame struct {
	Step  int
	Time  float64
	State dynamo.State
}

type Result struct {
	Frames        []Frame
	StepsTaken    int
	Time          float64
	Metrics       map[string]float64
	InitialEnergy float64
	FinalEnergy   float64
	// EnergyDrift is |E1-E0|/|E0|, or |E1-E0| when E0 is zero. It is NaN if
	// the system has no energy.
	EnergyDrift float64
}

// Final returns the last sampled frame.
func (r *Result) Final() Frame {
	if len(r.Frames) == 0 {
		return Frame{}
	}
	return r.Frames[len(r.Frames)-1]
}

func (r *Result) Summary() Summary {
	return Summary{
		Steps:   r.StepsTaken,
		Time:    r.Time,
		Drift:   r.EnergyDrift,
		Frames:  len(r.Frames),
		Metrics: r.Metrics,
	}
}

// Summary is the loggable digest of a Result.
type Summary struct {
	Steps   int
	Time    float64
	Drift   float64
	Frames  int
	Metrics map[string]float64
}

func (s Summary) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("steps", s.Steps),
		slog.Float64("time", s.Time),
		slog.Float64("energy_drift", s.Drift),
		slog.Int("frames", s.Frames),
	}
	for name, v := range s.Metrics {
		attrs = append(attrs, slog.Float64(name, v))
	}
	return slog.GroupValue(attrs...)
}
