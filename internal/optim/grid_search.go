package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/balljar/internal/sim"
)

// Build returns a fresh runner for one point of the grid.
type Build func(params map[string]float64) (*sim.Runner, error)

// GridSearch tries every combination of parameter values and keeps the one
// with the lowest metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Search runs the whole grid and returns the best parameters and their metric
// value. Points whose build or run fails are skipped; if every point fails
// the last error is returned.
func (g *GridSearch) Search(ctx context.Context, build Build, cfg sim.Config, metricName string) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	s := &search{build: build, cfg: cfg, metric: metricName, best: math.Inf(1)}
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), s); err != nil {
		return nil, 0, err
	}
	if s.bestParams == nil {
		if s.lastErr == nil {
			s.lastErr = errors.New("empty grid")
		}
		return nil, 0, s.lastErr
	}
	return s.bestParams, s.best, nil
}

type search struct {
	build      Build
	cfg        sim.Config
	metric     string
	best       float64
	bestParams map[string]float64
	lastErr    error
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, s *search) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		runner, err := s.build(current)
		if err != nil {
			s.lastErr = err
			return nil
		}

		result, err := runner.Run(ctx, s.cfg)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.lastErr = err
			return nil
		}

		val, ok := result.Metrics[s.metric]
		if !ok {
			return fmt.Errorf("runner has no metric %q", s.metric)
		}
		if val < s.best || s.bestParams == nil {
			s.best = val
			s.bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				s.bestParams[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, s); err != nil {
			return err
		}
	}
	return nil
}
