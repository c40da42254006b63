package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/balljar/internal/ball"
	"github.com/san-kum/balljar/internal/physics"
	"github.com/san-kum/balljar/internal/tilt"
)

const (
	DefaultWidth       = 300.0
	DefaultHeight      = 400.0
	DefaultSteps       = 600
	DefaultFPS         = 60
	DefaultSampleEvery = 1
	DefaultSource      = SourceToday
)

// Ball sources: which collection seeds the jar.
const (
	SourceToday    = "today"
	SourceLongTerm = "longterm"
	SourceConfig   = "config"
)

type Config struct {
	Jar     physics.Bounds `yaml:"jar"`
	Physics PhysicsConfig  `yaml:"physics"`
	Sizing  ball.Sizing    `yaml:"sizing"`
	Tilt    tilt.Mapping   `yaml:"tilt"`
	Run     RunConfig      `yaml:"run"`
	Source  string         `yaml:"source"`
	Balls   []BallConfig   `yaml:"balls,omitempty"`
}

type PhysicsConfig struct {
	Gravity          physics.Vec2 `yaml:"gravity"`
	Friction         float64      `yaml:"friction"`
	Bounce           float64      `yaml:"bounce"`
	CollisionDamping float64      `yaml:"collision_damping"`
	MaxVelocity      float64      `yaml:"max_velocity"`
	Restitution      float64      `yaml:"restitution"`
}

type RunConfig struct {
	Steps       int   `yaml:"steps"`
	FPS         int   `yaml:"fps"`
	Seed        int64 `yaml:"seed"`
	SampleEvery int   `yaml:"sample_every"`
}

// BallConfig is an inline ball for the "config" source. A zero position
// means a random spawn point.
type BallConfig struct {
	ID      string  `yaml:"id,omitempty"`
	Minutes int     `yaml:"minutes"`
	X       float64 `yaml:"x,omitempty"`
	Y       float64 `yaml:"y,omitempty"`
	VX      float64 `yaml:"vx,omitempty"`
	VY      float64 `yaml:"vy,omitempty"`
}

func DefaultConfig() *Config {
	pc := physics.DefaultConfig()
	return &Config{
		Jar: physics.Bounds{Width: DefaultWidth, Height: DefaultHeight},
		Physics: PhysicsConfig{
			Gravity:          pc.Gravity,
			Friction:         pc.Friction,
			Bounce:           pc.Bounce,
			CollisionDamping: pc.CollisionDamping,
			MaxVelocity:      physics.DefaultMaxVelocity,
			Restitution:      physics.DefaultRestitution,
		},
		Sizing: ball.DefaultSizing(),
		Tilt:   tilt.DefaultMapping(),
		Run: RunConfig{
			Steps:       DefaultSteps,
			FPS:         DefaultFPS,
			SampleEvery: DefaultSampleEvery,
		},
		Source: DefaultSource,
	}
}

// Load reads a YAML file on top of the defaults, so a file only has to name
// the fields it changes.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file on top of base, which it modifies.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.Jar.Validate(); err != nil {
		return err
	}
	if err := c.PhysicsConfig().Validate(); err != nil {
		return err
	}
	if c.Physics.MaxVelocity <= 0 {
		return fmt.Errorf("%w: max_velocity must be positive", physics.ErrInvalidConfig)
	}
	if c.Physics.Restitution < 0 {
		return fmt.Errorf("%w: restitution must be non-negative", physics.ErrInvalidConfig)
	}
	if c.Sizing.Small <= 0 || c.Sizing.Medium <= 0 || c.Sizing.Large <= 0 {
		return fmt.Errorf("%w: sizing radii must be positive", physics.ErrInvalidConfig)
	}
	switch c.Source {
	case SourceToday, SourceLongTerm, SourceConfig:
	default:
		return fmt.Errorf("unknown ball source %q", c.Source)
	}
	for i, b := range c.Balls {
		if b.Minutes <= 0 {
			return fmt.Errorf("balls[%d]: minutes must be positive", i)
		}
	}
	return nil
}

func (c *Config) PhysicsConfig() physics.Config {
	return physics.Config{
		Gravity:          c.Physics.Gravity,
		Friction:         c.Physics.Friction,
		Bounce:           c.Physics.Bounce,
		CollisionDamping: c.Physics.CollisionDamping,
	}
}

// WorldOptions returns the solver options for physics.NewWorld.
func (c *Config) WorldOptions() []physics.Option {
	return []physics.Option{
		physics.WithMaxVelocity(c.Physics.MaxVelocity),
		physics.WithRestitution(c.Physics.Restitution),
	}
}

// InlineBalls converts the balls list into domain balls. Missing ids are
// minted and stored back into c.Balls so positions can be matched by id.
func (c *Config) InlineBalls() []ball.Ball {
	out := make([]ball.Ball, 0, len(c.Balls))
	for i := range c.Balls {
		bc := &c.Balls[i]
		if bc.ID == "" {
			bc.ID = ball.NewID(ball.KindPhysics, bc.Minutes)
		}
		out = append(out, ball.Ball{ID: bc.ID, Minutes: bc.Minutes, Color: ball.ColorFor(bc.Minutes)})
	}
	return out
}

func (c *Config) Bounds() physics.Bounds { return c.Jar }

// ParamNames lists the physics fields SetParam accepts.
var ParamNames = []string{
	"gravity_x", "gravity_y", "friction", "bounce",
	"collision_damping", "max_velocity", "restitution",
}

// SetParam sets one physics field by name. The config is not revalidated.
func (c *Config) SetParam(name string, value float64) error {
	p := &c.Physics
	switch name {
	case "gravity_x":
		p.Gravity.X = value
	case "gravity_y":
		p.Gravity.Y = value
	case "friction":
		p.Friction = value
	case "bounce":
		p.Bounce = value
	case "collision_damping":
		p.CollisionDamping = value
	case "max_velocity":
		p.MaxVelocity = value
	case "restitution":
		p.Restitution = value
	default:
		return fmt.Errorf("unknown parameter %q (available: %v)", name, ParamNames)
	}
	return nil
}
