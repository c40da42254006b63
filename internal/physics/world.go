package physics

const (
	// DefaultMaxVelocity caps each velocity component after integration.
	DefaultMaxVelocity = 5.0
	// DefaultRestitution is the body-body bounciness used by the impulse solver.
	DefaultRestitution = 0.3
)

// Option tunes the solver constants of a World.
type Option func(*World)

func WithMaxVelocity(v float64) Option {
	return func(w *World) {
		if v > 0 {
			w.maxVelocity = v
		}
	}
}

func WithRestitution(e float64) Option {
	return func(w *World) {
		if e >= 0 {
			w.restitution = e
		}
	}
}

// World owns the live bodies, the container bounds and the configuration,
// and advances them one step per frame.
type World struct {
	bodies []Body
	bounds Bounds
	config Config

	maxVelocity float64
	restitution float64

	frames  FrameSource
	cancel  func()
	running bool
	steps   uint64

	listeners    map[uint64]Listener
	nextListener uint64
}

// NewWorld creates an idle world. A nil frames source gets a private
// FrameQueue, which leaves Start inert until someone pumps it; pass the
// host's source to animate.
func NewWorld(bounds Bounds, cfg Config, frames FrameSource, opts ...Option) *World {
	if frames == nil {
		frames = NewFrameQueue()
	}
	w := &World{
		bodies:      make([]Body, 0, 16),
		bounds:      bounds,
		config:      cfg,
		maxVelocity: DefaultMaxVelocity,
		restitution: DefaultRestitution,
		frames:      frames,
		listeners:   make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *World) indexOf(id string) int {
	for i := range w.bodies {
		if w.bodies[i].ID == id {
			return i
		}
	}
	return -1
}

// AddBody inserts b and reports whether it was added. A body whose id is
// already live is rejected and the existing body is left untouched; use
// UpdateBody to replace it.
func (w *World) AddBody(b Body) bool {
	if w.indexOf(b.ID) >= 0 {
		return false
	}
	w.bodies = append(w.bodies, b)
	return true
}

// RemoveBody deletes the body with the given id; unknown ids are ignored.
func (w *World) RemoveBody(id string) {
	i := w.indexOf(id)
	if i < 0 {
		return
	}
	w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
}

// UpdateBody replaces the body with b.ID; unknown ids are ignored.
func (w *World) UpdateBody(b Body) {
	if i := w.indexOf(b.ID); i >= 0 {
		w.bodies[i] = b
	}
}

func (w *World) Clear() {
	w.bodies = w.bodies[:0]
}

// SetBounds replaces the container. Bodies left outside are pulled back by
// the wall pass of the next step.
func (w *World) SetBounds(b Bounds) {
	w.bounds = b
}

func (w *World) SetConfig(p ConfigPatch) {
	w.config = w.config.Merge(p)
}

func (w *World) Bounds() Bounds { return w.bounds }
func (w *World) Config() Config { return w.config }
func (w *World) Len() int       { return len(w.bodies) }
func (w *World) Running() bool  { return w.running }
func (w *World) Steps() uint64  { return w.steps }

func (w *World) Body(id string) (Body, bool) {
	if i := w.indexOf(id); i >= 0 {
		return w.bodies[i], true
	}
	return Body{}, false
}

// Snapshot returns an independent copy of the current state.
func (w *World) Snapshot() Snapshot {
	bodies := make([]Body, len(w.bodies))
	copy(bodies, w.bodies)
	return Snapshot{
		Step:   w.steps,
		Bodies: bodies,
		Bounds: w.bounds,
		Config: w.config,
	}
}

// Subscribe registers l to receive a snapshot after every step. The returned
// function removes it and may be called more than once.
func (w *World) Subscribe(l Listener) func() {
	id := w.nextListener
	w.nextListener++
	w.listeners[id] = l
	return func() {
		delete(w.listeners, id)
	}
}

// Start begins stepping on every frame of the world's FrameSource.
func (w *World) Start() {
	if w.running {
		return
	}
	w.running = true
	w.schedule()
}

// Stop halts the loop. It is safe to call from a listener; no frame callback
// of this world runs after Stop returns.
func (w *World) Stop() {
	w.running = false
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

func (w *World) schedule() {
	w.cancel = w.frames.RequestFrame(w.onFrame)
}

func (w *World) onFrame() {
	w.cancel = nil
	if !w.running {
		return
	}
	w.Step()
	// a listener may have stopped and restarted us, which already scheduled
	if w.running && w.cancel == nil {
		w.schedule()
	}
}

// Step advances the simulation once and publishes the result.
func (w *World) Step() {
	w.integrate()
	w.resolvePairs()
	w.confine()
	w.steps++
	w.publish()
}

func (w *World) publish() {
	if len(w.listeners) == 0 {
		return
	}
	snap := w.Snapshot()
	for _, l := range w.listeners {
		// listeners never share a Bodies slice
		own := snap
		own.Bodies = make([]Body, len(snap.Bodies))
		copy(own.Bodies, snap.Bodies)
		l(own)
	}
}
