package physics

import "math"

const (
	// coincidentEpsilon is the center distance below which two bodies are
	// treated as sharing a center and separated along +X.
	coincidentEpsilon = 1e-9
)

// Contact describes an overlap between bodies A and B.
type Contact struct {
	A, B        int
	Normal      Vec2 // unit vector from A's center to B's
	Penetration float64
}

// integrate applies friction, gravity and the speed cap, moves every body and
// resolves wall hits against the current bounds.
func (w *World) integrate() {
	cfg := w.config
	for i := range w.bodies {
		b := &w.bodies[i]
		if !b.simulated() {
			continue
		}

		v := b.Velocity.Scale(cfg.Friction).Add(cfg.Gravity)
		v.X = clampAbs(v.X, w.maxVelocity)
		v.Y = clampAbs(v.Y, w.maxVelocity)

		b.Position, b.Velocity = bounceWalls(b.Position.Add(v), v, b.Radius, w.bounds, cfg.Bounce)
	}
}

// bounceWalls keeps a circle inside bounds. A body crossing a wall is placed
// against it and its perpendicular velocity is reflected and scaled by
// bounce. Velocity already pointing away from the wall is left as is.
func bounceWalls(p, v Vec2, r float64, bounds Bounds, bounce float64) (Vec2, Vec2) {
	p.X, v.X = bounceAxis(p.X, v.X, r, bounds.Width, bounce)
	p.Y, v.Y = bounceAxis(p.Y, v.Y, r, bounds.Height, bounce)
	return p, v
}

func bounceAxis(p, v, r, extent, bounce float64) (float64, float64) {
	if extent < 2*r {
		// container narrower than the body: pin it to the middle
		return extent / 2, 0
	}
	if p+r > extent {
		p = extent - r
		if v > 0 {
			v = -v * bounce
		}
	}
	if p-r < 0 {
		p = r
		if v < 0 {
			v = -v * bounce
		}
	}
	return p, v
}

// detect returns the contact between bodies i and j, if they overlap.
func (w *World) detect(i, j int) (Contact, bool) {
	a, b := &w.bodies[i], &w.bodies[j]
	d := b.Position.Sub(a.Position)
	dist := d.Len()
	reach := a.Radius + b.Radius
	if dist >= reach {
		return Contact{}, false
	}

	normal := Vec2{X: 1}
	if dist > coincidentEpsilon {
		normal = d.Scale(1 / dist)
	}
	return Contact{A: i, B: j, Normal: normal, Penetration: reach - dist}, true
}

// Contacts lists every overlapping pair in the current state.
func (w *World) Contacts() []Contact {
	var out []Contact
	for i := 0; i < len(w.bodies); i++ {
		for j := i + 1; j < len(w.bodies); j++ {
			if c, ok := w.detect(i, j); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// resolvePairs runs the O(n²) sweep, resolving each contact as it is found.
// Later pairs see the effect of earlier ones, so with three or more bodies
// overlapping at once the result depends on insertion order.
func (w *World) resolvePairs() {
	n := len(w.bodies)
	for i := 0; i < n; i++ {
		if !w.bodies[i].simulated() {
			continue
		}
		for j := i + 1; j < n; j++ {
			if !w.bodies[j].simulated() {
				continue
			}
			if c, ok := w.detect(i, j); ok {
				w.resolve(c)
			}
		}
	}
}

// resolve applies the collision impulse and the positional correction.
func (w *World) resolve(c Contact) {
	a, b := &w.bodies[c.A], &w.bodies[c.B]

	vn := b.Velocity.Sub(a.Velocity).Dot(c.Normal)
	if vn > 0 {
		return
	}

	invA, invB := 1/a.Mass, 1/b.Mass
	j := -(1 + w.restitution) * vn / (invA + invB)
	impulse := c.Normal.Scale(j)
	a.Velocity = a.Velocity.Sub(impulse.Scale(invA))
	b.Velocity = b.Velocity.Add(impulse.Scale(invB))

	// larger size gaps get a stronger push so small balls do not sink into big ones
	sizeGap := math.Abs(a.Radius-b.Radius) / math.Max(a.Radius, b.Radius)
	correction := c.Normal.Scale(c.Penetration * w.config.CollisionDamping * (1 + sizeGap))

	total := a.Mass + b.Mass
	a.Position = a.Position.Sub(correction.Scale(b.Mass / total))
	b.Position = b.Position.Add(correction.Scale(a.Mass / total))
}

// confine clamps positions back inside the container after pair correction.
// Velocities are not touched; the next wall pass handles the bounce.
func (w *World) confine() {
	for i := range w.bodies {
		b := &w.bodies[i]
		if !b.simulated() {
			continue
		}
		b.Position.X = confineAxis(b.Position.X, b.Radius, w.bounds.Width)
		b.Position.Y = confineAxis(b.Position.Y, b.Radius, w.bounds.Height)
	}
}

func confineAxis(p, r, extent float64) float64 {
	if extent < 2*r {
		return extent / 2
	}
	return math.Min(math.Max(p, r), extent-r)
}
