package viz

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/balljar/internal/ball"
	"github.com/san-kum/balljar/internal/config"
	"github.com/san-kum/balljar/internal/physics"
	"github.com/san-kum/balljar/internal/sim"
	"github.com/san-kum/balljar/internal/storage"
	"github.com/san-kum/balljar/internal/tilt"
)

func lit(c *Canvas, x, y int) bool {
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(3, 5)
	assert.True(t, lit(c, 3, 5))
	c.Unset(3, 5)
	assert.False(t, lit(c, 3, 5))
	assert.Equal(t, rune(blank), c.Grid[1][1])

	c.Set(-1, 0)
	c.Set(100, 100)
	assert.Equal(t, strings.Repeat(string(rune(blank)), 4)+"\n"+strings.Repeat(string(rune(blank)), 4)+"\n", c.String())
}

func TestCanvasDrawCircle(t *testing.T) {
	c := NewCanvas(20, 10)
	c.DrawCircle(20, 20, 8, "#FFD700")

	for _, p := range [][2]int{{28, 20}, {12, 20}, {20, 28}, {20, 12}} {
		assert.True(t, lit(c, p[0], p[1]), "expected %v lit", p)
	}
	assert.False(t, lit(c, 20, 20), "outline only")
	assert.Equal(t, "#FFD700", c.Colors[20/4][28/2])
}

func TestCanvasFillCircle(t *testing.T) {
	c := NewCanvas(10, 5)
	c.FillCircle(10, 10, 3, "")
	assert.True(t, lit(c, 10, 10))
	assert.True(t, lit(c, 12, 11))
	assert.False(t, lit(c, 14, 10))
}

func TestCanvasLabel(t *testing.T) {
	c := NewCanvas(10, 3)
	c.Label(10, 4, "15", "#FF6B6B")
	assert.Equal(t, '1', c.Grid[1][4])
	assert.Equal(t, '5', c.Grid[1][5])

	c.Set(10, 4)
	assert.Equal(t, '5', c.Grid[1][5], "dots must not overwrite labels")

	c.Clear()
	assert.Equal(t, rune(blank), c.Grid[1][4])
}

func TestCanvasRenderKeepsText(t *testing.T) {
	c := NewCanvas(6, 1)
	c.Label(6, 0, "20", "#FF6B6B")
	assert.Contains(t, c.Render(), "20")
	assert.Equal(t, strings.Count(c.String(), "\n"), strings.Count(c.Render(), "\n"))
}

func TestViewportFitsJar(t *testing.T) {
	c := NewCanvas(40, 24)
	vp := NewViewport(c, physics.Bounds{Width: 300, Height: 400})

	x0, y0 := vp.Point(physics.Vec2{})
	x1, y1 := vp.Point(physics.Vec2{X: 300, Y: 400})
	assert.GreaterOrEqual(t, x0, 1)
	assert.GreaterOrEqual(t, y0, 1)
	assert.Less(t, x1, c.SubWidth())
	assert.Less(t, y1, c.SubHeight())
	assert.InDelta(t, 300.0/400.0, float64(x1-x0)/float64(y1-y0), 0.05)
}

func TestBodyColorAndLabel(t *testing.T) {
	b, err := ball.ToBody(ball.New(ball.KindToday, 15), physics.Vec2{X: 50, Y: 50}, ball.DefaultSizing())
	require.NoError(t, err)
	assert.Equal(t, ball.ColorGold, BodyColor(b))
	assert.Equal(t, "15", BodyLabel(b))

	plain := physics.Body{ID: "p", Radius: 40, Mass: 1600}
	assert.Equal(t, ball.ColorCoral, BodyColor(plain))
	assert.Equal(t, "", BodyLabel(plain))
}

func TestThemeBallColor(t *testing.T) {
	assert.Equal(t, ball.ColorTeal, ThemeClassic.BallColor(ball.ColorTeal))
	assert.Equal(t, "#888888", ThemeMinimal.BallColor(ball.ColorTeal))

	SetTheme("sunset")
	NextTheme()
	assert.Equal(t, "classic", CurrentTheme.Name)
	assert.Equal(t, "classic", GetTheme("nope").Name)
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▁█", Sparkline([]float64{0, 1}, 5))
	assert.Equal(t, 3, len([]rune(Sparkline([]float64{1, 2, 3, 4, 5}, 3))))
	assert.Equal(t, "──", Sparkline(nil, 2))
}

func newTestModel(t *testing.T, withStore bool) (Model, *storage.JarStore) {
	t.Helper()
	cfg := config.DefaultConfig()
	jar, err := sim.NewJar(cfg, nil, 1)
	require.NoError(t, err)

	opts := Options{
		Jar:         jar,
		Mapping:     tilt.DefaultMapping(),
		Collections: storage.Collections{},
		Source:      ball.KindToday,
		GIFPath:     filepath.Join(t.TempDir(), "jar.gif"),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	var store *storage.JarStore
	if withStore {
		store = storage.NewJarStore(t.TempDir())
		opts.Store = store
	}
	return NewModel(opts), store
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelTicksStepTheWorld(t *testing.T) {
	m, _ := newTestModel(t, false)
	m.Init()
	require.True(t, m.jar.World.Running())

	for i := 0; i < 3; i++ {
		m = update(m, TickMsg(time.Now()))
	}
	assert.Equal(t, uint64(3), m.jar.World.Steps())
	assert.Len(t, m.state.energy, 3)

	m = update(m, key(" "))
	assert.False(t, m.jar.World.Running())
	m = update(m, TickMsg(time.Now()))
	assert.Equal(t, uint64(3), m.jar.World.Steps())
}

func TestModelSpinPersists(t *testing.T) {
	m, store := newTestModel(t, true)
	m = update(m, key("s"))

	assert.Equal(t, 1, m.jar.World.Len())
	saved, err := store.Load()
	require.NoError(t, err)
	require.Len(t, saved.Today, 1)

	body := m.jar.World.Snapshot().Bodies[0]
	assert.Equal(t, saved.Today[0].ID, body.ID)

	m = update(m, key("x"))
	assert.Equal(t, 0, m.jar.World.Len())
	saved, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, saved.Today)
}

func TestModelTiltChangesGravity(t *testing.T) {
	m, _ := newTestModel(t, false)
	m = update(m, key("left"))
	assert.Less(t, m.jar.World.Config().Gravity.X, 0.0)

	m = update(m, key("r"))
	g := m.jar.World.Config().Gravity
	assert.InDelta(t, 0, g.X, 1e-9)
	assert.InDelta(t, tilt.DefaultScale, g.Y, 1e-9)
}

func TestModelClearAndView(t *testing.T) {
	m, _ := newTestModel(t, false)
	m = update(m, key("s"))
	m = update(m, key("s"))
	require.Equal(t, 2, m.jar.World.Len())

	view := m.View()
	assert.Contains(t, view, "Balls")

	m = update(m, key("c"))
	assert.Equal(t, 0, m.jar.World.Len())
}

func TestModelRecordsGIF(t *testing.T) {
	m, _ := newTestModel(t, false)
	m = update(m, key("s"))
	m = update(m, key("g"))
	m = update(m, TickMsg(time.Now()))
	m = update(m, TickMsg(time.Now()))
	assert.Len(t, m.state.frames, 2)

	m = update(m, key("g"))
	assert.FileExists(t, m.gifPath)
}

func TestInteractiveMenu(t *testing.T) {
	built := ""
	app := NewInteractiveApp([]string{"calm", "default"}, func(preset, source string) (Options, error) {
		built = preset + "/" + source
		m, _ := newTestModel(t, false)
		return Options{Jar: m.jar, Mapping: tilt.DefaultMapping(), Source: source, Logger: m.logger}, nil
	})

	var next tea.Model = app
	for _, k := range []tea.KeyMsg{key("j"), {Type: tea.KeyEnter}, key("j"), {Type: tea.KeyEnter}} {
		next, _ = next.Update(k)
	}
	assert.Equal(t, "default/longterm", built)
	assert.Equal(t, stateSim, next.(model).state)
}
