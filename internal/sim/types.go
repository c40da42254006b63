package sim

import (
	"fmt"
	"time"

	"github.com/san-kum/balljar/internal/physics"
)

// Metric accumulates a scalar over the snapshots of a run.
type Metric interface {
	Name() string
	Observe(s physics.Snapshot)
	Value() float64
	Reset()
}

// Observer sees every snapshot of a run.
type Observer interface {
	OnStep(s physics.Snapshot)
}

type Config struct {
	Steps       int
	SampleEvery int
	// FPS > 0 paces the run in real time; zero runs as fast as possible.
	FPS int
}

func DefaultConfig() Config {
	return Config{Steps: 600, SampleEvery: 1}
}

func (c Config) Validate() error {
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", c.Steps)
	}
	if c.SampleEvery <= 0 {
		return fmt.Errorf("sample_every must be positive, got %d", c.SampleEvery)
	}
	if c.FPS < 0 {
		return fmt.Errorf("fps must be non-negative, got %d", c.FPS)
	}
	return nil
}

type Result struct {
	// Frames holds the initial state and every SampleEvery-th step.
	Frames  []physics.Snapshot
	Energy  []float64
	Metrics map[string]float64
	Steps   int
	Elapsed time.Duration
}

// Final is the last recorded frame.
func (r *Result) Final() (physics.Snapshot, bool) {
	if len(r.Frames) == 0 {
		return physics.Snapshot{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}
