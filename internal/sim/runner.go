package sim

import (
	"context"
	"time"

	"github.com/san-kum/balljar/internal/physics"
)

// Runner drives a world headlessly by pumping its frame queue.
type Runner struct {
	world     *physics.World
	frames    *physics.FrameQueue
	metrics   []Metric
	observers []Observer
}

// New wraps a world whose FrameSource is frames.
func New(world *physics.World, frames *physics.FrameQueue) *Runner {
	return &Runner{
		world:     world,
		frames:    frames,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (r *Runner) AddMetric(m Metric)          { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer)      { r.observers = append(r.observers, o) }
func (r *Runner) World() *physics.World       { return r.world }
func (r *Runner) Frames() *physics.FrameQueue { return r.frames }

// Run steps the world cfg.Steps times and collects sampled frames, the
// kinetic energy of every step and the metric values. A cancelled ctx ends
// the run early with the partial result and ctx.Err().
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	result := &Result{
		Frames:  make([]physics.Snapshot, 0, cfg.Steps/cfg.SampleEvery+1),
		Energy:  make([]float64, 0, cfg.Steps),
		Metrics: make(map[string]float64),
	}
	for _, m := range r.metrics {
		m.Reset()
	}

	result.Frames = append(result.Frames, r.world.Snapshot())

	unsubscribe := r.world.Subscribe(func(s physics.Snapshot) {
		result.Steps++
		result.Energy = append(result.Energy, s.KineticEnergy())
		if result.Steps%cfg.SampleEvery == 0 {
			result.Frames = append(result.Frames, s)
		}
		for _, m := range r.metrics {
			m.Observe(s)
		}
		for _, o := range r.observers {
			o.OnStep(s)
		}
	})
	defer unsubscribe()

	var tick <-chan time.Time
	if cfg.FPS > 0 {
		ticker := time.NewTicker(physics.FrameInterval(cfg.FPS))
		defer ticker.Stop()
		tick = ticker.C
	}

	start := time.Now()
	r.world.Start()
	defer r.world.Stop()

	var err error
loop:
	for i := 0; i < cfg.Steps; i++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				err = ctx.Err()
				break loop
			case <-tick:
			}
		} else {
			select {
			case <-ctx.Done():
				err = ctx.Err()
				break loop
			default:
			}
		}

		if r.frames.Fire() == 0 && !r.world.Running() {
			// an observer stopped the world
			break
		}
	}
	result.Elapsed = time.Since(start)

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, err
}

// RunWithCallback steps until cfg.Steps, ctx is done or callback returns false.
func (r *Runner) RunWithCallback(ctx context.Context, cfg Config, callback func(physics.Snapshot) bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	unsubscribe := r.world.Subscribe(func(s physics.Snapshot) {
		if !callback(s) {
			r.world.Stop()
		}
	})
	defer unsubscribe()

	r.world.Start()
	defer r.world.Stop()

	for i := 0; i < cfg.Steps && r.world.Running(); i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		r.frames.Fire()
	}
	return nil
}
