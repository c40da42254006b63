package gui

import (
	"strconv"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/balljar/internal/ball"
	"github.com/san-kum/balljar/internal/physics"
)

// view maps jar coordinates into the window area below the HUD.
type view struct {
	scale float32
	x, y  float32
	w, h  float32
}

func newView(bounds physics.Bounds) view {
	const top, bottom, margin = 100, 150, 30
	availW := float32(screenW - 2*margin)
	availH := float32(screenH - top - bottom)
	scale := min(availW/float32(bounds.Width), availH/float32(bounds.Height))
	w, h := float32(bounds.Width)*scale, float32(bounds.Height)*scale
	return view{
		scale: scale,
		x:     (screenW - w) / 2,
		y:     top + (availH-h)/2,
		w:     w,
		h:     h,
	}
}

func (v view) toScreen(p physics.Vec2) rl.Vector2 {
	return rl.NewVector2(v.x+float32(p.X)*v.scale, v.y+float32(p.Y)*v.scale)
}

func (v view) toWorld(p rl.Vector2) physics.Vec2 {
	return physics.Vec2{X: float64((p.X - v.x) / v.scale), Y: float64((p.Y - v.y) / v.scale)}
}

// hexColor parses #RRGGBB, falling back to the accent color.
func hexColor(s string) rl.Color {
	if len(s) != 7 || s[0] != '#' {
		return ColAccent
	}
	n, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return ColAccent
	}
	return rl.NewColor(uint8(n>>16), uint8(n>>8), uint8(n), 255)
}

func (a *App) drawJar() {
	v := a.view
	rl.DrawRectangleLinesEx(rl.NewRectangle(v.x-2, v.y-2, v.w+4, v.h+4), 2, ColGlass)

	for _, b := range a.Last.Bodies {
		center := v.toScreen(b.Position)
		r := float32(b.Radius) * v.scale

		col := ColAccent
		label := ""
		if bl, ok := ball.FromBody(b); ok {
			col = hexColor(bl.Color)
			label = strconv.Itoa(bl.Minutes)
		}
		rl.DrawCircleV(center, r, col)
		rl.DrawCircleLines(int32(center.X), int32(center.Y), r, rl.Fade(ColBg, 0.4))

		if label != "" {
			size := float32(16)
			dim := rl.MeasureTextEx(a.Font, label, size, 1)
			pos := rl.NewVector2(center.X-dim.X/2, center.Y-dim.Y/2)
			rl.DrawTextEx(a.Font, label, pos, size, 1, ColBg)
		}
	}
}
