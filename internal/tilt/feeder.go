package tilt

import (
	"log/slog"

	"github.com/san-kum/balljar/internal/physics"
)

// Configurer is the part of physics.World the feeder writes to.
type Configurer interface {
	SetConfig(physics.ConfigPatch)
}

// Feeder forwards tilt samples to a world as gravity updates. When the
// sensor goes away it enters degraded mode and leaves gravity at its last
// value; the next usable sample leaves degraded mode again.
type Feeder struct {
	target   Configurer
	mapping  Mapping
	logger   *slog.Logger
	last     physics.Vec2
	haveLast bool
	degraded bool
}

func NewFeeder(target Configurer, mapping Mapping, logger *slog.Logger) *Feeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feeder{target: target, mapping: mapping, logger: logger}
}

// Push maps s and applies it. It reports whether gravity was updated.
func (f *Feeder) Push(s Sample) bool {
	g, ok := f.mapping.Gravity(s)
	if !ok {
		f.logger.Debug("tilt: ignoring sample without direction", "x", s.X, "y", s.Y, "z", s.Z)
		return false
	}
	if f.degraded {
		f.logger.Info("tilt: sensor recovered")
		f.degraded = false
	}
	f.last, f.haveLast = g, true
	f.target.SetConfig(physics.GravityPatch(g))
	return true
}

// Unavailable records that the sensor cannot deliver samples.
func (f *Feeder) Unavailable(err error) {
	if f.degraded {
		return
	}
	f.degraded = true
	f.logger.Warn("tilt: sensor unavailable, keeping last gravity", "err", err, "gravity", f.last)
}

func (f *Feeder) Degraded() bool { return f.degraded }

// Last returns the most recent gravity pushed, if any.
func (f *Feeder) Last() (physics.Vec2, bool) { return f.last, f.haveLast }
