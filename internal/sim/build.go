package sim

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/balljar/internal/ball"
	"github.com/san-kum/balljar/internal/config"
	"github.com/san-kum/balljar/internal/physics"
)

// Jar is a world seeded from domain balls together with its frame queue.
type Jar struct {
	World  *physics.World
	Frames *physics.FrameQueue
	Sizing ball.Sizing
	rng    *rand.Rand
}

// NewJar builds a world from cfg and adds one body per ball at a random
// spawn point. Inline config balls with an explicit position keep it.
func NewJar(cfg *config.Config, balls []ball.Ball, seed int64) (*Jar, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	frames := physics.NewFrameQueue()
	j := &Jar{
		World:  physics.NewWorld(cfg.Jar, cfg.PhysicsConfig(), frames, cfg.WorldOptions()...),
		Frames: frames,
		Sizing: cfg.Sizing,
		rng:    rand.New(rand.NewSource(seed)),
	}

	placed := make(map[string]config.BallConfig)
	for _, bc := range cfg.Balls {
		if bc.ID != "" {
			placed[bc.ID] = bc
		}
	}

	for _, b := range balls {
		pos := ball.SpawnPosition(j.rng, cfg.Jar)
		var vel physics.Vec2
		if bc, ok := placed[b.ID]; ok && (bc.X != 0 || bc.Y != 0) {
			pos = physics.Vec2{X: bc.X, Y: bc.Y}
			vel = physics.Vec2{X: bc.VX, Y: bc.VY}
		}
		body, err := ball.ToBody(b, pos, cfg.Sizing)
		if err != nil {
			return nil, err
		}
		body.Velocity = vel
		if !j.World.AddBody(body) {
			return nil, fmt.Errorf("duplicate ball id %s", body.ID)
		}
	}
	return j, nil
}

// Drop adds b at a random spawn point. It reports false if the id is live.
func (j *Jar) Drop(b ball.Ball) (bool, error) {
	body, err := ball.ToBody(b, ball.SpawnPosition(j.rng, j.World.Bounds()), j.Sizing)
	if err != nil {
		return false, err
	}
	return j.World.AddBody(body), nil
}

// Respawn moves an existing ball to a fresh spawn point at rest.
func (j *Jar) Respawn(id string) {
	body, ok := j.World.Body(id)
	if !ok {
		return
	}
	body.Position = ball.SpawnPosition(j.rng, j.World.Bounds())
	body.Velocity = physics.Vec2{}
	j.World.UpdateBody(body)
}

// Rand exposes the jar's seeded source so spins replay with the seed.
func (j *Jar) Rand() *rand.Rand { return j.rng }

// Runner wraps the jar for headless stepping.
func (j *Jar) Runner() *Runner { return New(j.World, j.Frames) }
