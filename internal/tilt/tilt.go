// Package tilt turns device orientation into the gravity vector of a jar.
//
// Raw accelerometer samples are normalized to unit length, scaled and mapped
// from device axes to screen axes so that tilting right moves the balls
// right and tilting the top of the device down moves them down. A [Feeder]
// pushes the result into anything with a SetConfig method, normally a
// physics.World.
package tilt

import (
	"math"

	"github.com/san-kum/balljar/internal/physics"
)

// Sample is one 3-axis accelerometer reading in device coordinates
// (+X right, +Y toward the top edge, +Z out of the screen), in g.
type Sample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (s Sample) norm() float64 {
	return math.Sqrt(s.X*s.X + s.Y*s.Y + s.Z*s.Z)
}

const DefaultScale = 0.2

// Mapping converts samples into a screen-space gravity vector.
type Mapping struct {
	Scale   float64 `yaml:"scale"`
	InvertX bool    `yaml:"invert_x"`
	InvertY bool    `yaml:"invert_y"`
}

func DefaultMapping() Mapping {
	return Mapping{Scale: DefaultScale}
}

// Gravity maps s to a gravity vector. It returns false for a zero-length or
// non-finite sample, which carries no direction.
func (m Mapping) Gravity(s Sample) (physics.Vec2, bool) {
	n := s.norm()
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return physics.Vec2{}, false
	}

	// device Y points up, screen Y points down
	g := physics.Vec2{X: s.X / n * m.Scale, Y: -s.Y / n * m.Scale}
	if m.InvertX {
		g.X = -g.X
	}
	if m.InvertY {
		g.Y = -g.Y
	}
	return g, true
}

const (
	maxRoll  = math.Pi / 2
	maxPitch = math.Pi / 2
)

// Attitude is a simulated device orientation for hosts without a sensor.
// Zero is the phone held upright in portrait; Roll tilts it right, Pitch
// lays it back toward flat.
type Attitude struct {
	Roll  float64
	Pitch float64
}

// Sample is what an accelerometer would read at this attitude.
func (a Attitude) Sample() Sample {
	sr, cr := math.Sincos(a.Roll)
	sp, cp := math.Sincos(a.Pitch)
	return Sample{X: sr * cp, Y: -cr * cp, Z: -sp}
}

// Nudge adds the given angles in radians, clamping roll to ±90° and pitch to [0,90°].
func (a Attitude) Nudge(roll, pitch float64) Attitude {
	a.Roll = math.Max(-maxRoll, math.Min(maxRoll, a.Roll+roll))
	a.Pitch = math.Max(0, math.Min(maxPitch, a.Pitch+pitch))
	return a
}

// Reset levels the device back to upright portrait.
func (a *Attitude) Reset() { *a = Attitude{} }
