package viz

import (
	"math"
	"strconv"

	"github.com/san-kum/balljar/internal/ball"
	"github.com/san-kum/balljar/internal/physics"
)

// Viewport maps jar coordinates onto canvas dots with one uniform scale,
// leaving a one-dot margin for the jar outline.
type Viewport struct {
	Scale   float64
	OffsetX int
	OffsetY int
}

func NewViewport(c *Canvas, bounds physics.Bounds) Viewport {
	cw, ch := float64(c.SubWidth()-2), float64(c.SubHeight()-2)
	scale := math.Min(cw/bounds.Width, ch/bounds.Height)
	return Viewport{
		Scale:   scale,
		OffsetX: 1 + int((cw-bounds.Width*scale)/2),
		OffsetY: 1 + int((ch-bounds.Height*scale)/2),
	}
}

func (v Viewport) Point(p physics.Vec2) (int, int) {
	return v.OffsetX + int(math.Round(p.X*v.Scale)), v.OffsetY + int(math.Round(p.Y*v.Scale))
}

func (v Viewport) Length(l float64) int {
	return int(math.Round(l * v.Scale))
}

// BodyColor is the ball's own color when the body carries one, otherwise
// the tier color for its radius under the default sizing.
func BodyColor(b physics.Body) string {
	if bl, ok := ball.FromBody(b); ok && bl.Color != "" {
		return bl.Color
	}
	s := ball.DefaultSizing()
	switch {
	case b.Radius <= s.Small:
		return ball.ColorTeal
	case b.Radius <= s.Medium:
		return ball.ColorGold
	}
	return ball.ColorCoral
}

// BodyLabel is the minute value for balls and empty for anything else.
func BodyLabel(b physics.Body) string {
	if bl, ok := ball.FromBody(b); ok {
		return strconv.Itoa(bl.Minutes)
	}
	return ""
}

// DrawScene renders the jar outline and every body of snap.
func DrawScene(c *Canvas, snap physics.Snapshot, theme Theme) {
	c.Clear()
	vp := NewViewport(c, snap.Bounds)

	x0, y0 := vp.Point(physics.Vec2{})
	x1, y1 := vp.Point(physics.Vec2{X: snap.Bounds.Width, Y: snap.Bounds.Height})
	c.DrawRect(x0-1, y0-1, x1+1, y1+1, string(theme.Muted))

	for _, b := range snap.Bodies {
		cx, cy := vp.Point(b.Position)
		color := theme.BallColor(BodyColor(b))
		c.DrawCircle(cx, cy, vp.Length(b.Radius), color)
		if label := BodyLabel(b); label != "" {
			c.Label(cx, cy, label, color)
		}
	}
}
