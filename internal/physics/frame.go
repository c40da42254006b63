package physics

import (
	"context"
	"time"
)

// FrameSource is the host's per-frame callback hook. RequestFrame schedules
// fn for the next frame and returns a function that cancels it.
type FrameSource interface {
	RequestFrame(fn func()) (cancel func())
}

type frameRequest struct {
	fn        func()
	cancelled bool
}

// FrameQueue is a FrameSource pumped by its owner: every Fire runs the
// callbacks requested before it. Callbacks requested while firing wait for
// the next Fire, so a world steps exactly once per Fire.
type FrameQueue struct {
	pending []*frameRequest
	frame   uint64
}

func NewFrameQueue() *FrameQueue {
	return &FrameQueue{}
}

func (q *FrameQueue) RequestFrame(fn func()) func() {
	req := &frameRequest{fn: fn}
	q.pending = append(q.pending, req)
	return func() { req.cancelled = true }
}

// Fire runs one frame and returns how many callbacks ran.
func (q *FrameQueue) Fire() int {
	batch := q.pending
	q.pending = nil
	q.frame++

	ran := 0
	for _, req := range batch {
		if req.cancelled {
			continue
		}
		req.cancelled = true
		req.fn()
		ran++
	}
	return ran
}

// Pending counts callbacks waiting for the next frame.
func (q *FrameQueue) Pending() int {
	n := 0
	for _, req := range q.pending {
		if !req.cancelled {
			n++
		}
	}
	return n
}

// Frames is the number of Fire calls so far.
func (q *FrameQueue) Frames() uint64 { return q.frame }

// RunTicker fires q once per interval on the calling goroutine until ctx is
// done. It returns ctx.Err().
func RunTicker(ctx context.Context, q *FrameQueue, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			q.Fire()
		}
	}
}

// FrameInterval converts a frame rate into a tick interval, defaulting to 60fps.
func FrameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Second / time.Duration(fps)
}
