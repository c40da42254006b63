package metrics

import (
	"github.com/san-kum/balljar/internal/physics"
)

// Escapes counts body-steps where a ball sat outside its container by more
// than tolerance. A healthy solver keeps it at zero.
type Escapes struct {
	name      string
	tolerance float64
	count     int
}

func NewEscapes(tolerance float64) *Escapes {
	return &Escapes{
		name:      "escapes",
		tolerance: tolerance,
	}
}

func (e *Escapes) Name() string {
	return e.name
}

func (e *Escapes) Observe(s physics.Snapshot) {
	for _, b := range s.Bodies {
		if !s.Bounds.Contains(b.Position, b.Radius, e.tolerance) {
			e.count++
		}
	}
}

func (e *Escapes) Value() float64 {
	return float64(e.count)
}

func (e *Escapes) Reset() {
	e.count = 0
}
