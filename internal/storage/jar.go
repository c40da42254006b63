package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/san-kum/balljar/internal/ball"
)

// ErrBallNotFound is returned when an id is not in the today collection.
var ErrBallNotFound = errors.New("ball not found")

// DefaultBlockedApps is the block list of a fresh jar.
var DefaultBlockedApps = []string{"Instagram", "Facebook", "TikTok", "Twitter"}

// Collections is the persisted pair of ball lists together with the apps a
// used ball unlocks.
type Collections struct {
	Today         []ball.Ball `json:"today"`
	LongTerm      []ball.Ball `json:"longterm"`
	BlockedApps   []string    `json:"blocked_apps"`
	UnlockedUntil time.Time   `json:"unlocked_until"`
}

// DefaultCollections seeds a fresh jar.
func DefaultCollections() Collections {
	return Collections{
		Today:       ball.DefaultToday(),
		LongTerm:    ball.DefaultLongTerm(),
		BlockedApps: slices.Clone(DefaultBlockedApps),
	}
}

// Balls returns the collection named by source ("today" or "longterm").
func (c Collections) Balls(source string) ([]ball.Ball, error) {
	switch source {
	case ball.KindToday:
		return c.Today, nil
	case ball.KindLongTerm:
		return c.LongTerm, nil
	default:
		return nil, fmt.Errorf("unknown collection %q", source)
	}
}

// AddToday appends b, minting an id if it has none.
func (c *Collections) AddToday(b ball.Ball) ball.Ball {
	if b.ID == "" {
		b.ID = ball.NewID(ball.KindToday, b.Minutes)
	}
	if b.Color == "" {
		b.Color = ball.ColorFor(b.Minutes)
	}
	c.Today = append(c.Today, b)
	return b
}

// RemoveToday drops the ball with id. Unknown ids are a no-op.
func (c *Collections) RemoveToday(id string) bool {
	for i, b := range c.Today {
		if b.ID == id {
			c.Today = append(c.Today[:i], c.Today[i+1:]...)
			return true
		}
	}
	return false
}

// MoveToLongTerm moves a today ball into the long-term collection under a
// fresh long-term id.
func (c *Collections) MoveToLongTerm(id string) (ball.Ball, error) {
	for i, b := range c.Today {
		if b.ID != id {
			continue
		}
		c.Today = append(c.Today[:i], c.Today[i+1:]...)
		b.ID = ball.NewID(ball.KindLongTerm, b.Minutes)
		c.LongTerm = append(c.LongTerm, b)
		return b, nil
	}
	return ball.Ball{}, fmt.Errorf("%w: %s", ErrBallNotFound, id)
}

// Use redeems a today ball: it leaves the collection and the blocked apps
// unlock for its minutes. Using a ball while unlocked extends the window.
func (c *Collections) Use(id string, now time.Time) (ball.Ball, error) {
	for i, b := range c.Today {
		if b.ID != id {
			continue
		}
		c.Today = append(c.Today[:i], c.Today[i+1:]...)
		start := now
		if c.UnlockedUntil.After(now) {
			start = c.UnlockedUntil
		}
		c.UnlockedUntil = start.Add(time.Duration(b.Minutes) * time.Minute)
		return b, nil
	}
	return ball.Ball{}, fmt.Errorf("%w: %s", ErrBallNotFound, id)
}

// Remaining is how long the blocked apps stay unlocked after now.
func (c Collections) Remaining(now time.Time) time.Duration {
	if !c.UnlockedUntil.After(now) {
		return 0
	}
	return c.UnlockedUntil.Sub(now)
}

// Block adds app to the block list. It reports false if already listed.
func (c *Collections) Block(app string) bool {
	if slices.Contains(c.BlockedApps, app) {
		return false
	}
	c.BlockedApps = append(c.BlockedApps, app)
	return true
}

// Unblock removes app from the block list.
func (c *Collections) Unblock(app string) bool {
	i := slices.Index(c.BlockedApps, app)
	if i < 0 {
		return false
	}
	c.BlockedApps = slices.Delete(c.BlockedApps, i, i+1)
	return true
}

// NextGoal is the long-term milestone after total minutes: 100, 500, 1000,
// then the next multiple of 500 past the current one.
func NextGoal(total int) int {
	switch {
	case total < 100:
		return 100
	case total < 500:
		return 500
	case total < 1000:
		return 1000
	}
	return int(math.Ceil(float64(total)/500))*500 + 500
}

// JarStore persists Collections as balls.json under a data directory.
type JarStore struct {
	path string
}

func NewJarStore(baseDir string) *JarStore {
	return &JarStore{path: filepath.Join(baseDir, "balls.json")}
}

func (s *JarStore) Path() string { return s.path }

// Load reads the collections. A missing file yields the defaults, as does a
// missing block list.
func (s *JarStore) Load() (Collections, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultCollections(), nil
		}
		return Collections{}, err
	}

	var c Collections
	if err := json.Unmarshal(data, &c); err != nil {
		return Collections{}, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if c.Today == nil {
		c.Today = []ball.Ball{}
	}
	if c.LongTerm == nil {
		c.LongTerm = []ball.Ball{}
	}
	if c.BlockedApps == nil {
		c.BlockedApps = slices.Clone(DefaultBlockedApps)
	}
	return c, nil
}

func (s *JarStore) Save(c Collections) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
