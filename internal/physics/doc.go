// Package physics implements the ball jar simulation: a 2D world of circular
// bodies inside a rectangular container, stepped once per animation frame.
//
// The package is built around a few types:
//
//   - [Body]: a circle with position, velocity, radius, mass and an opaque payload
//   - [Bounds]: the container the bodies cannot leave
//   - [Config]: gravity, friction, wall bounce and collision damping
//   - [World]: owns the bodies and runs the step algorithm
//   - [FrameSource]: the host's per-frame callback hook that drives [World.Start]
//
// # Example
//
//	frames := physics.NewFrameQueue()
//	w := physics.NewWorld(physics.Bounds{Width: 300, Height: 400}, physics.DefaultConfig(), frames)
//	unsubscribe := w.Subscribe(func(s physics.Snapshot) { render(s) })
//	defer unsubscribe()
//	w.Start()
//	for running {
//	    frames.Fire()
//	}
//
// # Thread Safety
//
// A World is NOT safe for concurrent use. Every mutation and every frame must
// come from the goroutine that pumps the [FrameSource]; hosts with a separate
// UI goroutine marshal calls onto the simulation goroutine.
package physics
