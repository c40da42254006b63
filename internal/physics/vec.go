package physics

import "math"

// Vec2 is a point or vector in container-local coordinates (y grows downward).
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }
func (v Vec2) IsFinite() bool       { return finite(v.X) && finite(v.Y) }

// Equal reports whether both components differ by at most tol.
func (v Vec2) Equal(o Vec2, tol float64) bool {
	return math.Abs(v.X-o.X) <= tol && math.Abs(v.Y-o.Y) <= tol
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// clampAbs limits f to [-limit, limit].
func clampAbs(f, limit float64) float64 {
	if f > limit {
		return limit
	}
	if f < -limit {
		return -limit
	}
	return f
}
