package physics

import "fmt"

// Body is a simulated circle. Payload is carried through snapshots untouched.
type Body struct {
	ID       string
	Position Vec2
	Velocity Vec2
	Radius   float64
	Mass     float64
	Payload  any
}

// NewBody builds an at-rest body, rejecting non-positive radius or mass.
func NewBody(id string, pos Vec2, radius, mass float64, payload any) (Body, error) {
	b := Body{ID: id, Position: pos, Radius: radius, Mass: mass, Payload: payload}
	if err := b.Validate(); err != nil {
		return Body{}, err
	}
	return b, nil
}

func (b Body) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidBody)
	}
	if !b.simulated() {
		return fmt.Errorf("%w: %s has radius %g, mass %g", ErrInvalidBody, b.ID, b.Radius, b.Mass)
	}
	if !b.Position.IsFinite() || !b.Velocity.IsFinite() {
		return fmt.Errorf("%w: %s has non-finite position or velocity", ErrInvalidBody, b.ID)
	}
	return nil
}

// simulated reports whether the step may move and collide this body.
// Degenerate bodies are kept in the world but frozen.
func (b Body) simulated() bool {
	return b.Radius > 0 && b.Mass > 0 && finite(b.Radius) && finite(b.Mass)
}

func (b Body) Speed() float64 { return b.Velocity.Len() }

// KineticEnergy is ½mv² in simulation units.
func (b Body) KineticEnergy() float64 {
	return 0.5 * b.Mass * b.Velocity.Dot(b.Velocity)
}

// Bounds is the size of the rectangular container; the origin is top-left.
type Bounds struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

func (b Bounds) Validate() error {
	if !(b.Width > 0) || !(b.Height > 0) || !finite(b.Width) || !finite(b.Height) {
		return fmt.Errorf("%w: %gx%g", ErrInvalidBounds, b.Width, b.Height)
	}
	return nil
}

// Contains reports whether a circle at p with radius r lies fully inside, with tolerance tol.
func (b Bounds) Contains(p Vec2, r, tol float64) bool {
	return p.X >= r-tol && p.X <= b.Width-r+tol &&
		p.Y >= r-tol && p.Y <= b.Height-r+tol
}

const (
	DefaultFriction         = 0.95
	DefaultBounce           = 0.7
	DefaultCollisionDamping = 0.3
	DefaultGravityY         = 0.2
)

// Config holds the global simulation parameters. Gravity is an acceleration
// in units per step per step; Friction multiplies velocity every step; Bounce
// is the fraction of velocity kept on a wall hit; CollisionDamping scales how
// hard overlapping bodies are pushed apart.
type Config struct {
	Gravity          Vec2    `json:"gravity" yaml:"gravity"`
	Friction         float64 `json:"friction" yaml:"friction"`
	Bounce           float64 `json:"bounce" yaml:"bounce"`
	CollisionDamping float64 `json:"collision_damping" yaml:"collision_damping"`
}

func DefaultConfig() Config {
	return Config{
		Gravity:          Vec2{X: 0, Y: DefaultGravityY},
		Friction:         DefaultFriction,
		Bounce:           DefaultBounce,
		CollisionDamping: DefaultCollisionDamping,
	}
}

func (c Config) Validate() error {
	if !c.Gravity.IsFinite() {
		return fmt.Errorf("%w: gravity must be finite", ErrInvalidConfig)
	}
	if !(c.Friction > 0 && c.Friction <= 1) {
		return fmt.Errorf("%w: friction must be in (0,1], got %g", ErrInvalidConfig, c.Friction)
	}
	if !(c.Bounce >= 0 && c.Bounce <= 1) {
		return fmt.Errorf("%w: bounce must be in [0,1], got %g", ErrInvalidConfig, c.Bounce)
	}
	if !(c.CollisionDamping >= 0) || !finite(c.CollisionDamping) {
		return fmt.Errorf("%w: collision damping must be non-negative, got %g", ErrInvalidConfig, c.CollisionDamping)
	}
	return nil
}

// ConfigPatch is a partial Config; nil fields keep their current value.
type ConfigPatch struct {
	Gravity          *Vec2
	Friction         *float64
	Bounce           *float64
	CollisionDamping *float64
}

// GravityPatch is shorthand for the tilt path, which only ever changes gravity.
func GravityPatch(g Vec2) ConfigPatch {
	return ConfigPatch{Gravity: &g}
}

func (c Config) Merge(p ConfigPatch) Config {
	if p.Gravity != nil {
		c.Gravity = *p.Gravity
	}
	if p.Friction != nil {
		c.Friction = *p.Friction
	}
	if p.Bounce != nil {
		c.Bounce = *p.Bounce
	}
	if p.CollisionDamping != nil {
		c.CollisionDamping = *p.CollisionDamping
	}
	return c
}

// Snapshot is an independent copy of the world after a completed step.
// Bodies are copied by value; payloads are shared since the world never
// inspects or mutates them.
type Snapshot struct {
	Step   uint64
	Bodies []Body
	Bounds Bounds
	Config Config
}

// Body looks a body up by id.
func (s Snapshot) Body(id string) (Body, bool) {
	for _, b := range s.Bodies {
		if b.ID == id {
			return b, true
		}
	}
	return Body{}, false
}

func (s Snapshot) KineticEnergy() float64 {
	total := 0.0
	for _, b := range s.Bodies {
		total += b.KineticEnergy()
	}
	return total
}

// Listener receives a snapshot after every completed step.
type Listener func(Snapshot)
