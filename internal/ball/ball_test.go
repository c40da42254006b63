package ball

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/san-kum/balljar/internal/physics"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		minutes int
		tier    Tier
	}{
		{1, Small},
		{2, Small},
		{5, Small},
		{6, Medium},
		{10, Medium},
		{15, Medium},
		{16, Large},
		{20, Large},
		{90, Large},
	}

	for _, tt := range tests {
		if got := TierFor(tt.minutes); got != tt.tier {
			t.Errorf("TierFor(%d) = %s, want %s", tt.minutes, got, tt.tier)
		}
	}
}

func TestSizingRadius(t *testing.T) {
	s := DefaultSizing()
	require.Equal(t, 28.0, s.Radius(2))
	require.Equal(t, 34.0, s.Radius(10))
	require.Equal(t, 40.0, s.Radius(20))

	half := s.Scaled(0.5)
	require.Equal(t, 14.0, half.Radius(5))
	require.Equal(t, 20.0, half.Radius(20))
}

func TestToBody(t *testing.T) {
	b := Ball{ID: "ball_today_15_1", Minutes: 15, Color: ColorGold}
	body, err := ToBody(b, physics.Vec2{X: 100, Y: 120}, DefaultSizing())
	require.NoError(t, err)

	require.Equal(t, b.ID, body.ID)
	require.Equal(t, 34.0, body.Radius)
	require.Equal(t, 34.0*34.0, body.Mass)
	require.Equal(t, physics.Vec2{}, body.Velocity)

	back, ok := FromBody(body)
	require.True(t, ok)
	require.Equal(t, b, back)
}

func TestToBodyMintsMissingID(t *testing.T) {
	body, err := ToBody(Ball{Minutes: 5}, physics.Vec2{X: 50, Y: 50}, DefaultSizing())
	require.NoError(t, err)
	require.Contains(t, body.ID, "ball_physics_5_")
}

func TestToBodyRejectsDegenerateBalls(t *testing.T) {
	_, err := ToBody(Ball{ID: "x", Minutes: 0}, physics.Vec2{}, DefaultSizing())
	require.Error(t, err)

	_, err = ToBody(Ball{ID: "x", Minutes: 5}, physics.Vec2{}, Sizing{})
	require.True(t, errors.Is(err, physics.ErrInvalidBody))
}

func TestSpawnPositionStaysInCentralBand(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	bounds := physics.Bounds{Width: 300, Height: 400}
	for i := 0; i < 500; i++ {
		p := SpawnPosition(rng, bounds)
		require.GreaterOrEqual(t, p.X, 60.0)
		require.LessOrEqual(t, p.X, 240.0)
		require.GreaterOrEqual(t, p.Y, 80.0)
		require.LessOrEqual(t, p.Y, 320.0)
	}
}

func TestNewIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID(KindToday, 5)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestDrawTableSumsToOne(t *testing.T) {
	sum := 0.0
	for _, e := range DrawTable {
		sum += e.Probability
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("draw probabilities sum to %f", sum)
	}
}

func TestPick(t *testing.T) {
	tests := []struct {
		roll    float64
		minutes int
	}{
		{0.0, 2},
		{0.30, 2},
		{0.31, 5},
		{0.56, 10},
		{0.81, 15},
		{0.97, 20},
	}

	for _, tt := range tests {
		b := pick(tt.roll, KindToday)
		if b.Minutes != tt.minutes {
			t.Errorf("pick(%.2f) = %d minutes, want %d", tt.roll, b.Minutes, tt.minutes)
		}
		if b.Color != ColorFor(tt.minutes) {
			t.Errorf("pick(%.2f) color = %s", tt.roll, b.Color)
		}
	}
}

func TestDrawIsDeterministicForASeed(t *testing.T) {
	a := rand.New(rand.NewSource(42))
	b := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		require.Equal(t, Draw(a, KindToday).Minutes, Draw(b, KindToday).Minutes)
	}
}

func TestCountsAndTotals(t *testing.T) {
	balls := []Ball{{Minutes: 2}, {Minutes: 2}, {Minutes: 20}, {Minutes: 7}}
	counts := CountByValue(balls)
	require.Equal(t, map[int]int{2: 2, 5: 0, 10: 0, 15: 0, 20: 1}, counts)
	require.Equal(t, 31, TotalMinutes(balls))
}

func TestDefaults(t *testing.T) {
	require.Len(t, DefaultToday(), 6)
	require.Equal(t, 55, TotalMinutes(DefaultLongTerm()))
	require.Equal(t, ColorCoral, ColorFor(45))
}
