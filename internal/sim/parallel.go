package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Ensemble runs independent simulators side by side, one goroutine each.
// The simulators must not share a system.
type Ensemble struct {
	sims []*Simulator
}

func NewEnsemble(sims ...*Simulator) *Ensemble {
	return &Ensemble{sims: sims}
}

func (e *Ensemble) Len() int { return len(e.sims) }

// Run returns one result per simulator, in order. Results of failed runs are
// partial; their errors are joined.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results, errs := e.RunEach(ctx, cfg)
	for i, err := range errs {
		if err != nil {
			errs[i] = fmt.Errorf("run %d: %w", i, err)
		}
	}
	return results, errors.Join(errs...)
}

// RunEach is Run with the errors kept per simulator.
func (e *Ensemble) RunEach(ctx context.Context, cfg Config) ([]*Result, []error) {
	results := make([]*Result, len(e.sims))
	errs := make([]error, len(e.sims))

	var wg sync.WaitGroup
	for i, s := range e.sims {
		wg.Add(1)
		go func(idx int, s *Simulator) {
			defer wg.Done()
			results[idx], errs[idx] = s.Run(ctx, cfg)
		}(i, s)
	}

	wg.Wait()
	return results, errs
}
