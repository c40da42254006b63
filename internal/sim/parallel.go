package sim

import (
	"context"
	"sync"
)

// Setup builds an independent runner for one ensemble member.
type Setup func(seed int64) (*Runner, error)

// Ensemble runs several jars with consecutive seeds, one goroutine each.
// Worlds are never shared between goroutines.
type Ensemble struct {
	setup     Setup
	numRuns   int
	seedStart int64
}

func NewEnsemble(setup Setup, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{setup: setup, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			r, err := e.setup(e.seedStart + int64(idx))
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = r.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
