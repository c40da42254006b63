package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/balljar/internal/physics"
	"github.com/san-kum/balljar/internal/sim"
)

func snapshot(bodies ...physics.Body) physics.Snapshot {
	return physics.Snapshot{Bodies: bodies, Bounds: physics.Bounds{Width: 300, Height: 400}}
}

func body(id string, x, y, vx, vy, r float64) physics.Body {
	return physics.Body{
		ID:       id,
		Position: physics.Vec2{X: x, Y: y},
		Velocity: physics.Vec2{X: vx, Y: vy},
		Radius:   r,
		Mass:     r * r,
	}
}

func TestKineticEnergy(t *testing.T) {
	m := NewKineticEnergy()
	if m.Value() != 0 {
		t.Errorf("expected 0 before samples, got %f", m.Value())
	}

	m.Observe(snapshot(body("a", 50, 50, 1, 0, 10)))
	m.Observe(snapshot(body("a", 50, 50, 3, 0, 10)))

	// 0.5*100*1 and 0.5*100*9
	if math.Abs(m.Value()-250) > 1e-9 {
		t.Errorf("expected mean 250, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("reset should clear samples")
	}
}

func TestEnergyDecay(t *testing.T) {
	m := NewEnergyDecay()
	m.Observe(snapshot(body("a", 50, 50, 2, 0, 10)))
	m.Observe(snapshot(body("a", 50, 50, 1, 0, 10)))

	if math.Abs(m.Value()-0.25) > 1e-9 {
		t.Errorf("expected 0.25, got %f", m.Value())
	}
}

func TestMaxSpeed(t *testing.T) {
	m := NewMaxSpeed()
	m.Observe(snapshot(body("a", 50, 50, 3, 4, 10), body("b", 100, 50, 1, 0, 10)))
	m.Observe(snapshot(body("a", 50, 50, 0, 1, 10)))

	if m.Value() != 5 {
		t.Errorf("expected 5, got %f", m.Value())
	}
}

func TestEscapes(t *testing.T) {
	m := NewEscapes(0.5)
	m.Observe(snapshot(
		body("inside", 150, 200, 0, 0, 20),
		body("touching", 20, 200, 0, 0, 20),
		body("out", 5, 200, 0, 0, 20),
	))

	if m.Value() != 1 {
		t.Errorf("expected 1 escape, got %f", m.Value())
	}
}

func TestOverlap(t *testing.T) {
	tests := []struct {
		name   string
		bodies []physics.Body
		want   float64
	}{
		{"apart", []physics.Body{body("a", 50, 50, 0, 0, 10), body("b", 100, 50, 0, 0, 10)}, 0},
		{"touching", []physics.Body{body("a", 50, 50, 0, 0, 10), body("b", 70, 50, 0, 0, 10)}, 0},
		{"overlap", []physics.Body{body("a", 50, 50, 0, 0, 10), body("b", 65, 50, 0, 0, 10)}, 5},
		{"single", []physics.Body{body("a", 50, 50, 0, 0, 10)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxPenetration(tt.bodies); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestStandardMetricsOnSettlingJar(t *testing.T) {
	frames := physics.NewFrameQueue()
	w := physics.NewWorld(physics.Bounds{Width: 300, Height: 400}, physics.DefaultConfig(), frames)
	for i := 0; i < 6; i++ {
		w.AddBody(body(string(rune('a'+i)), 60+float64(i)*35, 100, 0, 0, 28))
	}

	r := sim.New(w, frames)
	for _, m := range Standard() {
		r.AddMetric(m)
	}

	result, err := r.Run(context.Background(), sim.Config{Steps: 400, SampleEvery: 50})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Metrics["escapes"] != 0 {
		t.Errorf("expected no escapes, got %f", result.Metrics["escapes"])
	}
	if result.Metrics["max_speed"] <= 0 {
		t.Error("balls should have fallen")
	}
	if result.Metrics["overlap"] > 28 {
		t.Errorf("mean overlap too deep: %f", result.Metrics["overlap"])
	}
}
