package physics_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/balljar/internal/physics"
)

const tol = 1e-9

// still is a config with no gravity and no velocity decay, so only
// collisions change velocities.
func still(bounce, damping float64) physics.Config {
	return physics.Config{Friction: 1, Bounce: bounce, CollisionDamping: damping}
}

func distance(s physics.Snapshot, a, b string) float64 {
	ba, _ := s.Body(a)
	bb, _ := s.Body(b)
	return bb.Position.Sub(ba.Position).Len()
}

func momentum(s physics.Snapshot) physics.Vec2 {
	var p physics.Vec2
	for _, b := range s.Bodies {
		p = p.Add(b.Velocity.Scale(b.Mass))
	}
	return p
}

var _ = Describe("Step", func() {
	Describe("integration", func() {
		It("applies friction then gravity", func() {
			w := physics.NewWorld(jarBounds, physics.Config{
				Gravity: physics.Vec2{X: 0.1, Y: 0.2}, Friction: 0.5, Bounce: 0.7,
			}, nil)
			b := restingBody("a", 150, 200, 10)
			b.Velocity = physics.Vec2{X: 2, Y: -2}
			w.AddBody(b)
			w.Step()

			got, _ := w.Body("a")
			Expect(got.Velocity.X).To(BeNumerically("~", 1.1, tol))
			Expect(got.Velocity.Y).To(BeNumerically("~", -0.8, tol))
			Expect(got.Position.X).To(BeNumerically("~", 151.1, tol))
			Expect(got.Position.Y).To(BeNumerically("~", 199.2, tol))
		})

		It("clamps each velocity component independently", func() {
			w := physics.NewWorld(jarBounds, physics.Config{
				Gravity: physics.Vec2{X: 40, Y: -40}, Friction: 1, Bounce: 0.7,
			}, nil)
			b := restingBody("a", 150, 200, 10)
			b.Velocity = physics.Vec2{X: 0, Y: 1}
			w.AddBody(b)
			w.Step()

			got, _ := w.Body("a")
			Expect(got.Velocity).To(Equal(physics.Vec2{X: physics.DefaultMaxVelocity, Y: -physics.DefaultMaxVelocity}))
		})

		It("honours a custom velocity cap", func() {
			w := physics.NewWorld(jarBounds, physics.Config{
				Gravity: physics.Vec2{Y: 3}, Friction: 1, Bounce: 0.7,
			}, nil, physics.WithMaxVelocity(2))
			w.AddBody(restingBody("a", 150, 100, 10))
			w.Step()

			got, _ := w.Body("a")
			Expect(got.Velocity.Y).To(Equal(2.0))
		})

		It("freezes degenerate bodies instead of dividing by zero", func() {
			w := physics.NewWorld(jarBounds, physics.DefaultConfig(), nil)
			w.AddBody(physics.Body{ID: "ghost", Position: physics.Vec2{X: 150, Y: 200}, Radius: 20, Mass: 0})
			w.AddBody(restingBody("a", 155, 200, 20))

			for i := 0; i < 10; i++ {
				w.Step()
			}

			ghost, _ := w.Body("ghost")
			Expect(ghost.Position).To(Equal(physics.Vec2{X: 150, Y: 200}))
			a, _ := w.Body("a")
			Expect(a.Position.IsFinite()).To(BeTrue())
			Expect(a.Velocity.IsFinite()).To(BeTrue())
		})
	})

	Describe("wall collisions", func() {
		It("reverses and scales the perpendicular component", func() {
			w := physics.NewWorld(jarBounds, still(0.5, 0.3), nil)
			b := restingBody("a", 280, 200, 20)
			b.Velocity = physics.Vec2{X: 3, Y: 0}
			w.AddBody(b)
			w.Step()

			got, _ := w.Body("a")
			Expect(got.Position.X).To(BeNumerically("~", 280, tol))
			Expect(got.Velocity.X).To(BeNumerically("~", -1.5, tol))
			Expect(got.Velocity.Y).To(BeZero())
		})

		DescribeTable("dissipates energy on every wall",
			func(x, y, vx, vy float64) {
				const bounce = 0.6
				w := physics.NewWorld(jarBounds, still(bounce, 0.3), nil)
				b := restingBody("a", x, y, 20)
				b.Velocity = physics.Vec2{X: vx, Y: vy}
				w.AddBody(b)
				w.Step()

				got, _ := w.Body("a")
				if vx != 0 {
					Expect(got.Velocity.X).To(BeNumerically("~", -vx*bounce, tol))
				}
				if vy != 0 {
					Expect(got.Velocity.Y).To(BeNumerically("~", -vy*bounce, tol))
				}
				Expect(jarBounds.Contains(got.Position, 20, tol)).To(BeTrue())
			},
			Entry("left", 21.0, 200.0, -4.0, 0.0),
			Entry("right", 279.0, 200.0, 4.0, 0.0),
			Entry("top", 150.0, 21.0, 0.0, -4.0),
			Entry("floor", 150.0, 379.0, 0.0, 4.0),
			Entry("corner", 285.0, 385.0, 3.0, 3.0),
		)

		It("does not push back a body already moving away from the wall", func() {
			w := physics.NewWorld(jarBounds, still(0.5, 0.3), nil)
			b := restingBody("a", 10, 200, 20)
			b.Velocity = physics.Vec2{X: 2}
			w.AddBody(b)
			w.Step()

			got, _ := w.Body("a")
			Expect(got.Position.X).To(Equal(20.0))
			Expect(got.Velocity.X).To(Equal(2.0))
		})

		It("bounces a falling body off the floor at 0.7 of its impact speed", func() {
			w := physics.NewWorld(jarBounds, physics.Config{
				Gravity:          physics.Vec2{X: 0, Y: 0.2},
				Friction:         0.95,
				Bounce:           0.7,
				CollisionDamping: 0.3,
			}, nil)
			b, err := physics.NewBody("a", physics.Vec2{X: 150, Y: 50}, 20, 400, nil)
			Expect(err).NotTo(HaveOccurred())
			w.AddBody(b)

			prevVy := 0.0
			bounced := false
			for i := 0; i < 1000 && !bounced; i++ {
				w.Step()
				got, _ := w.Body("a")
				Expect(got.Position.Y).To(BeNumerically("<=", 380+tol))

				if got.Velocity.Y < 0 {
					impact := math.Min(prevVy*0.95+0.2, physics.DefaultMaxVelocity)
					Expect(impact).To(BeNumerically(">", 0))
					Expect(got.Position.Y).To(BeNumerically("~", 380, tol))
					Expect(got.Velocity.Y).To(BeNumerically("~", -0.7*impact, tol))
					bounced = true
				}
				prevVy = got.Velocity.Y
			}
			Expect(bounced).To(BeTrue())
		})
	})

	Describe("pair collisions", func() {
		It("detects overlaps strictly inside the combined radius", func() {
			w := physics.NewWorld(jarBounds, still(0.7, 0.3), nil)
			w.AddBody(restingBody("a", 100, 200, 20))
			w.AddBody(restingBody("b", 140, 200, 20))
			w.AddBody(restingBody("c", 100, 239, 20))

			contacts := w.Contacts()
			Expect(contacts).To(HaveLen(1))
			Expect(contacts[0].A).To(Equal(0))
			Expect(contacts[0].B).To(Equal(2))
			Expect(contacts[0].Normal.Equal(physics.Vec2{Y: 1}, tol)).To(BeTrue())
			Expect(contacts[0].Penetration).To(BeNumerically("~", 1, tol))
		})

		It("pushes two overlapping equal bodies apart without leaving the jar", func() {
			w := physics.NewWorld(jarBounds, physics.DefaultConfig(), nil)
			w.AddBody(restingBody("a", 140, 200, 20))
			w.AddBody(restingBody("b", 150, 200, 20))
			before := distance(w.Snapshot(), "a", "b")
			Expect(before).To(Equal(10.0))

			w.Step()
			s := w.Snapshot()
			Expect(distance(s, "a", "b")).To(BeNumerically(">", before))
			for _, b := range s.Bodies {
				Expect(jarBounds.Contains(b.Position, b.Radius, tol)).To(BeTrue())
			}
		})

		DescribeTable("moves overlapping pairs toward contact distance",
			func(ra, ma, rb, mb, gap float64) {
				w := physics.NewWorld(jarBounds, still(0.7, 0.3), nil)
				a, _ := physics.NewBody("a", physics.Vec2{X: 120, Y: 200}, ra, ma, nil)
				b, _ := physics.NewBody("b", physics.Vec2{X: 120 + gap, Y: 200}, rb, mb, nil)
				w.AddBody(a)
				w.AddBody(b)

				w.Step()
				Expect(distance(w.Snapshot(), "a", "b")).To(BeNumerically(">", gap))
			},
			Entry("equal", 20.0, 400.0, 20.0, 400.0, 10.0),
			Entry("small into large", 28.0, 784.0, 40.0, 1600.0, 30.0),
			Entry("light and heavy", 20.0, 1.0, 20.0, 1000.0, 35.0),
			Entry("barely touching", 20.0, 400.0, 20.0, 400.0, 39.5),
		)

		It("moves the heavier body less", func() {
			w := physics.NewWorld(jarBounds, still(0.7, 0.5), nil)
			w.AddBody(restingBody("small", 120, 200, 14))
			w.AddBody(restingBody("large", 150, 200, 40))
			w.Step()

			small, _ := w.Body("small")
			large, _ := w.Body("large")
			Expect(120 - small.Position.X).To(BeNumerically(">", large.Position.X-150))
			Expect(large.Position.X).To(BeNumerically(">", 150))
		})

		It("separates bodies sharing a center", func() {
			w := physics.NewWorld(jarBounds, still(0.7, 0.3), nil)
			w.AddBody(restingBody("a", 150, 200, 20))
			w.AddBody(restingBody("b", 150, 200, 20))
			w.Step()

			s := w.Snapshot()
			Expect(distance(s, "a", "b")).To(BeNumerically(">", 0))
			for _, b := range s.Bodies {
				Expect(b.Position.IsFinite()).To(BeTrue())
			}
		})

		It("leaves separating pairs alone", func() {
			w := physics.NewWorld(jarBounds, still(0.7, 0.3), nil)
			a := restingBody("a", 120, 200, 20)
			a.Velocity = physics.Vec2{X: -1}
			b := restingBody("b", 150, 200, 20)
			b.Velocity = physics.Vec2{X: 1}
			w.AddBody(a)
			w.AddBody(b)
			w.Step()

			s := w.Snapshot()
			ga, _ := s.Body("a")
			gb, _ := s.Body("b")
			Expect(ga.Velocity).To(Equal(physics.Vec2{X: -1}))
			Expect(gb.Velocity).To(Equal(physics.Vec2{X: 1}))
			Expect(ga.Position.X).To(Equal(119.0))
			Expect(gb.Position.X).To(Equal(151.0))
		})

		It("conserves momentum for equal masses with restitution 1", func() {
			w := physics.NewWorld(jarBounds, still(0.7, 0.3), nil, physics.WithRestitution(1))
			a := restingBody("a", 100, 200, 20)
			a.Velocity = physics.Vec2{X: 2, Y: 0.5}
			b := restingBody("b", 135, 205, 20)
			b.Velocity = physics.Vec2{X: -2, Y: 0}
			w.AddBody(a)
			w.AddBody(b)

			before := momentum(w.Snapshot())
			w.Step()
			s := w.Snapshot()
			Expect(momentum(s).Equal(before, 1e-6)).To(BeTrue())

			ga, _ := s.Body("a")
			gb, _ := s.Body("b")
			Expect(ga.Velocity.X).To(BeNumerically("<", 0))
			Expect(gb.Velocity.X).To(BeNumerically(">", 0))
		})

		It("exchanges velocities head-on with restitution 1", func() {
			w := physics.NewWorld(jarBounds, still(0.7, 0.3), nil, physics.WithRestitution(1))
			a := restingBody("a", 100, 200, 20)
			a.Velocity = physics.Vec2{X: 2}
			b := restingBody("b", 135, 200, 20)
			b.Velocity = physics.Vec2{X: -2}
			w.AddBody(a)
			w.AddBody(b)
			w.Step()

			ga, _ := w.Body("a")
			gb, _ := w.Body("b")
			Expect(ga.Velocity.X).To(BeNumerically("~", -2, tol))
			Expect(gb.Velocity.X).To(BeNumerically("~", 2, tol))
		})
	})

	Describe("boundedness", func() {
		It("keeps a crowded, shaken jar inside its walls", func() {
			rng := rand.New(rand.NewSource(7))
			w := physics.NewWorld(jarBounds, physics.DefaultConfig(), nil)
			for i := 0; i < 40; i++ {
				r := []float64{14, 17, 20}[i%3]
				b, err := physics.NewBody(
					string(rune('A'+i)),
					physics.Vec2{X: r + rng.Float64()*(300-2*r), Y: r + rng.Float64()*(400-2*r)},
					r, r*r, nil,
				)
				Expect(err).NotTo(HaveOccurred())
				w.AddBody(b)
			}

			for step := 0; step < 600; step++ {
				if step%60 == 0 {
					w.SetConfig(physics.GravityPatch(physics.Vec2{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1}))
				}
				w.Step()
				for _, b := range w.Snapshot().Bodies {
					Expect(jarBounds.Contains(b.Position, b.Radius, tol)).To(BeTrue(),
						"body %s escaped at step %d: %+v", b.ID, step, b.Position)
				}
			}
		})
	})
})
