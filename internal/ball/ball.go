package ball

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/san-kum/balljar/internal/physics"
)

// Ball is one earned time token.
type Ball struct {
	ID      string `json:"id" yaml:"id"`
	Minutes int    `json:"minutes" yaml:"minutes"`
	Color   string `json:"color" yaml:"color"`
}

// Kinds name the collection a ball id was minted for.
const (
	KindToday    = "today"
	KindLongTerm = "longterm"
	KindPhysics  = "physics"
)

const (
	ColorTeal  = "#20B2AA"
	ColorGold  = "#FFD700"
	ColorCoral = "#FF6B6B"
)

type Tier int

const (
	Small Tier = iota
	Medium
	Large
)

func (t Tier) String() string {
	switch t {
	case Small:
		return "small"
	case Medium:
		return "medium"
	default:
		return "large"
	}
}

// TierFor buckets a minute value: up to 5 is small, up to 15 medium.
func TierFor(minutes int) Tier {
	switch {
	case minutes <= 5:
		return Small
	case minutes <= 15:
		return Medium
	default:
		return Large
	}
}

// Sizing maps tiers to body radii in world units.
type Sizing struct {
	Small  float64 `yaml:"small"`
	Medium float64 `yaml:"medium"`
	Large  float64 `yaml:"large"`
}

func DefaultSizing() Sizing {
	return Sizing{Small: 28, Medium: 34, Large: 40}
}

func (s Sizing) Radius(minutes int) float64 {
	switch TierFor(minutes) {
	case Small:
		return s.Small
	case Medium:
		return s.Medium
	default:
		return s.Large
	}
}

// Scaled returns the sizing multiplied by f, for jars drawn smaller than the
// phone screen the defaults were tuned for.
func (s Sizing) Scaled(f float64) Sizing {
	return Sizing{Small: s.Small * f, Medium: s.Medium * f, Large: s.Large * f}
}

// Mass grows with the disc area.
func Mass(radius float64) float64 {
	return radius * radius
}

// ToBody converts b into an at-rest body at pos carrying b as payload.
func ToBody(b Ball, pos physics.Vec2, sizing Sizing) (physics.Body, error) {
	if b.Minutes <= 0 {
		return physics.Body{}, fmt.Errorf("ball %s: minutes must be positive, got %d", b.ID, b.Minutes)
	}
	id := b.ID
	if id == "" {
		id = NewID(KindPhysics, b.Minutes)
	}
	r := sizing.Radius(b.Minutes)
	body, err := physics.NewBody(id, pos, r, Mass(r), b)
	if err != nil {
		return physics.Body{}, fmt.Errorf("ball %s: %w", id, err)
	}
	return body, nil
}

// FromBody recovers the ball carried by a body.
func FromBody(body physics.Body) (Ball, bool) {
	b, ok := body.Payload.(Ball)
	return b, ok
}

// SpawnPosition picks a point in the central 20%-80% band of the container.
func SpawnPosition(rng *rand.Rand, bounds physics.Bounds) physics.Vec2 {
	return physics.Vec2{
		X: bounds.Width * (0.2 + 0.6*rng.Float64()),
		Y: bounds.Height * (0.2 + 0.6*rng.Float64()),
	}
}

var idSeq atomic.Uint64

// NewID mints a unique ball id of the form ball_<kind>_<minutes>_<millis>_<seq>.
func NewID(kind string, minutes int) string {
	return fmt.Sprintf("ball_%s_%d_%d_%d", kind, minutes, time.Now().UnixMilli(), idSeq.Add(1))
}

func TotalMinutes(balls []Ball) int {
	total := 0
	for _, b := range balls {
		total += b.Minutes
	}
	return total
}

// CountByValue counts balls per minute value on the draw table.
func CountByValue(balls []Ball) map[int]int {
	counts := make(map[int]int, len(DrawTable))
	for _, e := range DrawTable {
		counts[e.Minutes] = 0
	}
	for _, b := range balls {
		if _, ok := counts[b.Minutes]; ok {
			counts[b.Minutes]++
		}
	}
	return counts
}
