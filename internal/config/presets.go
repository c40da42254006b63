package config

import (
	"sort"

	"github.com/san-kum/balljar/internal/physics"
)

// Presets are named tweaks applied on top of DefaultConfig.
var Presets = map[string]func(*Config){
	"default": func(c *Config) {},
	"calm": func(c *Config) {
		c.Physics.Friction = 0.85
		c.Physics.Bounce = 0.3
		c.Physics.CollisionDamping = 0.5
	},
	"bouncy": func(c *Config) {
		c.Physics.Friction = 0.99
		c.Physics.Bounce = 0.95
		c.Physics.Restitution = 0.9
	},
	"zero-g": func(c *Config) {
		c.Physics.Gravity = physics.Vec2{}
		c.Physics.Friction = 0.999
	},
	"sideways": func(c *Config) {
		c.Physics.Gravity = physics.Vec2{X: 0.2, Y: 0.05}
	},
	"crowded": func(c *Config) {
		c.Jar = physics.Bounds{Width: 200, Height: 260}
		c.Source = SourceLongTerm
		c.Run.Steps = 1200
	},
}

// GetPreset returns a fresh config with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
