package physics_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/balljar/internal/physics"
)

var _ = Describe("FrameQueue", func() {
	It("runs only the callbacks requested before Fire", func() {
		q := physics.NewFrameQueue()
		var order []string
		q.RequestFrame(func() {
			order = append(order, "first")
			q.RequestFrame(func() { order = append(order, "second") })
		})

		Expect(q.Fire()).To(Equal(1))
		Expect(order).To(Equal([]string{"first"}))
		Expect(q.Pending()).To(Equal(1))

		Expect(q.Fire()).To(Equal(1))
		Expect(order).To(Equal([]string{"first", "second"}))
		Expect(q.Frames()).To(Equal(uint64(2)))
	})

	It("skips cancelled callbacks", func() {
		q := physics.NewFrameQueue()
		called := false
		cancel := q.RequestFrame(func() { called = true })
		cancel()
		cancel()

		Expect(q.Pending()).To(BeZero())
		Expect(q.Fire()).To(BeZero())
		Expect(called).To(BeFalse())
	})

	It("ignores a cancel that arrives after the callback ran", func() {
		q := physics.NewFrameQueue()
		runs := 0
		cancel := q.RequestFrame(func() { runs++ })
		q.Fire()
		cancel()
		q.Fire()
		Expect(runs).To(Equal(1))
	})

	It("pumps a world from a ticker until the context ends", func() {
		q := physics.NewFrameQueue()
		w := physics.NewWorld(jarBounds, physics.DefaultConfig(), q)
		w.Start()

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
		defer cancel()
		err := physics.RunTicker(ctx, q, 5*time.Millisecond)

		Expect(err).To(MatchError(context.DeadlineExceeded))
		Expect(w.Steps()).To(BeNumerically(">", 0))
		Expect(w.Steps()).To(Equal(q.Frames()))
	})

	DescribeTable("FrameInterval",
		func(fps int, want time.Duration) {
			Expect(physics.FrameInterval(fps)).To(Equal(want))
		},
		Entry("60fps", 60, time.Second/60),
		Entry("30fps", 30, time.Second/30),
		Entry("zero falls back to 60", 0, time.Second/60),
	)
})
