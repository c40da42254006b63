package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/balljar/internal/ball"
	"github.com/san-kum/balljar/internal/physics"
	"github.com/san-kum/balljar/internal/viz"
)

const background = "#0a0a0a"

// Point is one position of a trajectory in jar coordinates.
type Point struct{ X, Y float64 }

// CanvasToSVG converts a Braille canvas to SVG, one dot per lit sub-pixel
// in its cell's color.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2   // 2 sub-pixels per char
	height := float64(canvas.Height) * scale * 4 // 4 sub-pixels per char

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="#00ff00">
`, width, height, width, height, background)

	// Braille dot-to-bit mapping
	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}

	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r < 0x2800 || r > 0x28ff {
				continue
			}
			pattern := int(r - 0x2800)
			fill := ""
			if c := canvas.Colors[row][col]; c != "" {
				fill = fmt.Sprintf(` fill="%s"`, c)
			}

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"%s/>\n", cx, cy, dotRadius, fill)
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SnapshotToSVG draws the container and every body at scale pixels per jar
// unit. Balls are filled with their tier color and labelled with minutes.
func SnapshotToSVG(snap physics.Snapshot, scale float64) string {
	if scale <= 0 {
		scale = 1
	}
	width := snap.Bounds.Width * scale
	height := snap.Bounds.Height * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s" stroke="#5a6e82" stroke-width="2"/>
`, width, height, width, height, background)

	for _, b := range snap.Bodies {
		cx, cy, r := b.Position.X*scale, b.Position.Y*scale, b.Radius*scale
		color := viz.BodyColor(b)
		fmt.Fprintf(&sb, "<circle id=\"%s\" cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", escape(b.ID), cx, cy, r, color)
		if bl, ok := ball.FromBody(b); ok {
			fmt.Fprintf(&sb, "<text x=\"%.1f\" y=\"%.1f\" font-family=\"monospace\" font-size=\"%.0f\" text-anchor=\"middle\" dominant-baseline=\"central\" fill=\"%s\">%d</text>\n",
				cx, cy, r*0.8, background, bl.Minutes)
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoryToSVG draws a body's path inside a jar of the given bounds. Jar
// coordinates already grow downward, so y is not flipped.
func TrajectoryToSVG(points []Point, bounds physics.Bounds, scale float64, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}
	if scale <= 0 {
		scale = 1
	}
	width, height := bounds.Width*scale, bounds.Height*scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, strokeColor)

	for i, p := range points {
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", p.X*scale, p.Y*scale)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", p.X*scale, p.Y*scale)
		}
	}

	last := points[len(points)-1]
	fmt.Fprintf(&sb, `"/>
<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>
</svg>`, last.X*scale, last.Y*scale, strokeColor)
	return sb.String()
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;").Replace(s)
}
