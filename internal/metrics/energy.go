package metrics

import (
	"math"

	"github.com/san-kum/balljar/internal/physics"
)

// KineticEnergy is the mean total kinetic energy over a run.
type KineticEnergy struct {
	name    string
	total   float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(s physics.Snapshot) {
	e.total += s.KineticEnergy()
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyDecay is the last observed energy as a fraction of the peak. A jar
// that settles drives it towards zero.
type EnergyDecay struct {
	name    string
	peak    float64
	current float64
}

func NewEnergyDecay() *EnergyDecay {
	return &EnergyDecay{name: "energy_decay"}
}

func (e *EnergyDecay) Name() string { return e.name }

func (e *EnergyDecay) Observe(s physics.Snapshot) {
	e.current = s.KineticEnergy()
	e.peak = math.Max(e.peak, e.current)
}

func (e *EnergyDecay) Value() float64 {
	if e.peak == 0 {
		return 0
	}
	return e.current / e.peak
}

func (e *EnergyDecay) Reset() {
	e.peak = 0
	e.current = 0
}

// MaxSpeed is the largest body speed seen in any step.
type MaxSpeed struct {
	name string
	max  float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(s physics.Snapshot) {
	for _, b := range s.Bodies {
		m.max = math.Max(m.max, b.Speed())
	}
}

func (m *MaxSpeed) Value() float64 { return m.max }
func (m *MaxSpeed) Reset()         { m.max = 0 }
