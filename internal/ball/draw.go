package ball

import "math/rand"

// DrawEntry is one outcome of a spin.
type DrawEntry struct {
	Minutes     int
	Color       string
	Probability float64
}

// DrawTable lists spin outcomes; probabilities sum to 1.
var DrawTable = []DrawEntry{
	{Minutes: 2, Color: ColorTeal, Probability: 0.30},
	{Minutes: 5, Color: ColorTeal, Probability: 0.25},
	{Minutes: 10, Color: ColorGold, Probability: 0.25},
	{Minutes: 15, Color: ColorGold, Probability: 0.15},
	{Minutes: 20, Color: ColorCoral, Probability: 0.05},
}

// Draw spins once and returns a fresh ball for the given collection kind.
func Draw(rng *rand.Rand, kind string) Ball {
	return pick(rng.Float64(), kind)
}

func pick(roll float64, kind string) Ball {
	cumulative := 0.0
	for _, e := range DrawTable {
		cumulative += e.Probability
		if roll <= cumulative {
			return New(kind, e.Minutes)
		}
	}
	return New(kind, DrawTable[0].Minutes)
}

// New builds a ball of the given value with the table color for it.
func New(kind string, minutes int) Ball {
	return Ball{ID: NewID(kind, minutes), Minutes: minutes, Color: ColorFor(minutes)}
}

// ColorFor returns the color the draw table uses for a minute value, falling
// back to the tier color for off-table values.
func ColorFor(minutes int) string {
	for _, e := range DrawTable {
		if e.Minutes == minutes {
			return e.Color
		}
	}
	switch TierFor(minutes) {
	case Small:
		return ColorTeal
	case Medium:
		return ColorGold
	default:
		return ColorCoral
	}
}

// DefaultToday and DefaultLongTerm seed a fresh install.
func DefaultToday() []Ball {
	return []Ball{
		New(KindToday, 2), New(KindToday, 2), New(KindToday, 5),
		New(KindToday, 10), New(KindToday, 15), New(KindToday, 20),
	}
}

func DefaultLongTerm() []Ball {
	return []Ball{
		New(KindLongTerm, 5), New(KindLongTerm, 10), New(KindLongTerm, 20),
		New(KindLongTerm, 15), New(KindLongTerm, 5),
	}
}
