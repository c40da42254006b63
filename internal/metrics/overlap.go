package metrics

import (
	"math"

	"github.com/san-kum/balljar/internal/physics"
	"github.com/san-kum/balljar/internal/sim"
)

// Overlap is the mean over steps of the deepest pair penetration. Positional
// correction should keep it to a fraction of a radius.
type Overlap struct {
	name    string
	sum     float64
	samples int
}

func NewOverlap() *Overlap {
	return &Overlap{
		name: "overlap",
	}
}

func (o *Overlap) Name() string {
	return o.name
}

func (o *Overlap) Observe(s physics.Snapshot) {
	o.sum += MaxPenetration(s.Bodies)
	o.samples++
}

func (o *Overlap) Value() float64 {
	if o.samples == 0 {
		return 0
	}
	return o.sum / float64(o.samples)
}

func (o *Overlap) Reset() {
	o.sum = 0
	o.samples = 0
}

// MaxPenetration returns the deepest overlap between any two bodies.
func MaxPenetration(bodies []physics.Body) float64 {
	deepest := 0.0
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			d := bodies[j].Position.Sub(bodies[i].Position).Len()
			deepest = math.Max(deepest, bodies[i].Radius+bodies[j].Radius-d)
		}
	}
	return deepest
}

// Standard returns the metrics every run records.
func Standard() []sim.Metric {
	return []sim.Metric{NewKineticEnergy(), NewEnergyDecay(), NewMaxSpeed(), NewEscapes(1e-6), NewOverlap()}
}
