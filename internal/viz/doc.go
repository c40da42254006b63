// Package viz renders a ball jar in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: a live jar pumped from tea.Tick through a physics.FrameQueue
//   - [Canvas]: Braille-based pixel canvas with circles, labels and colors
//   - Theme selection with 5 built-in color schemes
//
// # Key Bindings
//
//	Arrows - Tilt the jar (simulated accelerometer)
//	R      - Level the jar
//	Space  - Pause/Resume the world
//	S      - Spin for a ball and add it to today
//	X      - Remove the newest ball
//	C      - Empty the jar
//	T      - Cycle color themes
//	G      - Toggle GIF recording
//	?      - Show help overlay
//
// # Recording
//
// G records the jar as a GIF animation, written to Options.GIFPath when
// recording stops or the session ends.
package viz
