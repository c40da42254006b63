package physics_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/balljar/internal/physics"
)

var jarBounds = physics.Bounds{Width: 300, Height: 400}

func restingBody(id string, x, y, r float64) physics.Body {
	b, err := physics.NewBody(id, physics.Vec2{X: x, Y: y}, r, r*r, nil)
	Expect(err).NotTo(HaveOccurred())
	return b
}

var _ = Describe("World", func() {
	var (
		frames *physics.FrameQueue
		w      *physics.World
	)

	BeforeEach(func() {
		frames = physics.NewFrameQueue()
		w = physics.NewWorld(jarBounds, physics.DefaultConfig(), frames)
	})

	Describe("body membership", func() {
		It("adds bodies with distinct ids", func() {
			Expect(w.AddBody(restingBody("a", 50, 50, 10))).To(BeTrue())
			Expect(w.AddBody(restingBody("b", 150, 50, 10))).To(BeTrue())
			Expect(w.Len()).To(Equal(2))
		})

		It("rejects a duplicate id without touching the live body", func() {
			Expect(w.AddBody(restingBody("a", 50, 50, 10))).To(BeTrue())
			Expect(w.AddBody(restingBody("a", 200, 200, 30))).To(BeFalse())

			b, ok := w.Body("a")
			Expect(ok).To(BeTrue())
			Expect(b.Position).To(Equal(physics.Vec2{X: 50, Y: 50}))
			Expect(b.Radius).To(Equal(10.0))
			Expect(w.Len()).To(Equal(1))
		})

		It("treats repeated and unknown removals as no-ops", func() {
			w.AddBody(restingBody("a", 50, 50, 10))
			w.AddBody(restingBody("b", 150, 50, 10))

			w.RemoveBody("a")
			after := w.Snapshot()

			w.RemoveBody("a")
			w.RemoveBody("never-added")
			Expect(w.Snapshot()).To(Equal(after))
			Expect(w.Len()).To(Equal(1))
		})

		It("replaces a body on update and ignores unknown ids", func() {
			w.AddBody(restingBody("a", 50, 50, 10))

			moved := restingBody("a", 120, 90, 10)
			moved.Velocity = physics.Vec2{X: 1, Y: -1}
			w.UpdateBody(moved)
			w.UpdateBody(restingBody("ghost", 10, 10, 5))

			b, _ := w.Body("a")
			Expect(b).To(Equal(moved))
			_, ok := w.Body("ghost")
			Expect(ok).To(BeFalse())
		})

		It("clears every body", func() {
			w.AddBody(restingBody("a", 50, 50, 10))
			w.AddBody(restingBody("b", 150, 50, 10))
			w.Clear()
			Expect(w.Len()).To(BeZero())
			Expect(w.Snapshot().Bodies).To(BeEmpty())
		})
	})

	Describe("configuration", func() {
		It("merges partial patches", func() {
			friction := 0.5
			w.SetConfig(physics.ConfigPatch{Friction: &friction})

			cfg := w.Config()
			Expect(cfg.Friction).To(Equal(0.5))
			Expect(cfg.Gravity).To(Equal(physics.Vec2{Y: physics.DefaultGravityY}))
			Expect(cfg.Bounce).To(Equal(physics.DefaultBounce))
			Expect(cfg.CollisionDamping).To(Equal(physics.DefaultCollisionDamping))

			w.SetConfig(physics.GravityPatch(physics.Vec2{X: -0.1}))
			Expect(w.Config().Gravity).To(Equal(physics.Vec2{X: -0.1}))
			Expect(w.Config().Friction).To(Equal(0.5))
		})

		It("applies new bounds on the next step, not immediately", func() {
			w.AddBody(restingBody("a", 250, 350, 20))
			w.SetBounds(physics.Bounds{Width: 100, Height: 100})

			b, _ := w.Body("a")
			Expect(b.Position).To(Equal(physics.Vec2{X: 250, Y: 350}))

			w.Step()
			b, _ = w.Body("a")
			Expect(b.Position.X).To(BeNumerically("<=", 80))
			Expect(b.Position.Y).To(BeNumerically("<=", 80))
		})

		DescribeTable("validation",
			func(cfg physics.Config, valid bool) {
				if valid {
					Expect(cfg.Validate()).To(Succeed())
				} else {
					Expect(cfg.Validate()).To(MatchError(physics.ErrInvalidConfig))
				}
			},
			Entry("defaults", physics.DefaultConfig(), true),
			Entry("zero friction", physics.Config{Friction: 0, Bounce: 0.5}, false),
			Entry("friction above one", physics.Config{Friction: 1.1, Bounce: 0.5}, false),
			Entry("negative bounce", physics.Config{Friction: 1, Bounce: -0.1}, false),
			Entry("bounce above one", physics.Config{Friction: 1, Bounce: 1.2}, false),
			Entry("negative damping", physics.Config{Friction: 1, Bounce: 0.5, CollisionDamping: -1}, false),
			Entry("perfectly elastic", physics.Config{Friction: 1, Bounce: 1}, true),
		)
	})

	Describe("bodies", func() {
		DescribeTable("NewBody rejects degenerate parameters",
			func(id string, radius, mass float64) {
				_, err := physics.NewBody(id, physics.Vec2{X: 10, Y: 10}, radius, mass, nil)
				Expect(err).To(MatchError(physics.ErrInvalidBody))
			},
			Entry("zero radius", "a", 0.0, 1.0),
			Entry("negative radius", "a", -3.0, 1.0),
			Entry("zero mass", "a", 5.0, 0.0),
			Entry("negative mass", "a", 5.0, -2.0),
			Entry("empty id", "", 5.0, 25.0),
		)

		It("keeps the payload untouched through snapshots", func() {
			type ball struct{ minutes int }
			payload := &ball{minutes: 15}
			b, err := physics.NewBody("a", physics.Vec2{X: 100, Y: 100}, 10, 100, payload)
			Expect(err).NotTo(HaveOccurred())
			w.AddBody(b)
			w.Step()

			got, ok := w.Snapshot().Body("a")
			Expect(ok).To(BeTrue())
			Expect(got.Payload).To(BeIdenticalTo(payload))
		})
	})

	Describe("snapshots", func() {
		It("delivers snapshots that later mutation cannot change", func() {
			w.AddBody(restingBody("a", 150, 50, 20))

			var delivered []physics.Snapshot
			unsubscribe := w.Subscribe(func(s physics.Snapshot) {
				delivered = append(delivered, s)
			})
			defer unsubscribe()

			w.Step()
			Expect(delivered).To(HaveLen(1))
			first := delivered[0].Bodies[0]

			w.UpdateBody(restingBody("a", 10, 10, 5))
			w.Step()
			w.Clear()

			Expect(delivered[0].Bodies).To(HaveLen(1))
			Expect(delivered[0].Bodies[0]).To(Equal(first))
			Expect(delivered[0].Step).To(Equal(uint64(1)))
			Expect(delivered[1].Step).To(Equal(uint64(2)))
		})

		It("does not let a listener write through to the world", func() {
			w.AddBody(restingBody("a", 150, 50, 20))
			w.Subscribe(func(s physics.Snapshot) {
				s.Bodies[0].Position = physics.Vec2{X: -999, Y: -999}
			})
			w.Step()

			b, _ := w.Body("a")
			Expect(b.Position.X).To(BeNumerically(">", 0))
		})

		It("notifies every listener and stops after unsubscribe", func() {
			var calls [2]int
			un0 := w.Subscribe(func(physics.Snapshot) { calls[0]++ })
			w.Subscribe(func(physics.Snapshot) { calls[1]++ })

			w.Step()
			un0()
			un0()
			w.Step()

			Expect(calls).To(Equal([2]int{1, 2}))
		})

		It("carries bounds and config", func() {
			w.Subscribe(func(s physics.Snapshot) {
				Expect(s.Bounds).To(Equal(jarBounds))
				Expect(s.Config).To(Equal(physics.DefaultConfig()))
			})
			w.Step()
		})
	})

	Describe("the frame loop", func() {
		It("steps once per frame while running", func() {
			w.AddBody(restingBody("a", 150, 50, 20))
			w.Start()
			w.Start()
			Expect(frames.Pending()).To(Equal(1))
			Expect(w.Running()).To(BeTrue())

			for i := 0; i < 5; i++ {
				frames.Fire()
			}
			Expect(w.Steps()).To(Equal(uint64(5)))
		})

		It("does not step after Stop", func() {
			w.Start()
			frames.Fire()
			w.Stop()
			w.Stop()

			Expect(frames.Pending()).To(BeZero())
			frames.Fire()
			Expect(w.Steps()).To(Equal(uint64(1)))
			Expect(w.Running()).To(BeFalse())
		})

		It("can be stopped from inside a listener", func() {
			w.Subscribe(func(physics.Snapshot) { w.Stop() })
			w.Start()

			frames.Fire()
			frames.Fire()
			Expect(w.Steps()).To(Equal(uint64(1)))
			Expect(frames.Pending()).To(BeZero())
		})

		It("schedules exactly one frame when a listener restarts the loop", func() {
			w.Subscribe(func(s physics.Snapshot) {
				if s.Step == 1 {
					w.Stop()
					w.Start()
				}
			})
			w.Start()
			frames.Fire()
			Expect(frames.Pending()).To(Equal(1))
			frames.Fire()
			Expect(w.Steps()).To(Equal(uint64(2)))
		})

		It("resumes from the current state after a restart", func() {
			w.AddBody(restingBody("a", 150, 50, 20))
			w.Start()
			frames.Fire()
			frames.Fire()
			w.Stop()

			before, _ := w.Body("a")
			w.Start()
			frames.Fire()
			after, _ := w.Body("a")

			Expect(w.Steps()).To(Equal(uint64(3)))
			Expect(after.Position.Y).To(BeNumerically(">", before.Position.Y))
		})
	})
})
