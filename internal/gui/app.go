package gui

import (
	"fmt"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/balljar/internal/ball"
	"github.com/san-kum/balljar/internal/physics"
	"github.com/san-kum/balljar/internal/session"
	"github.com/san-kum/balljar/internal/sim"
	"github.com/san-kum/balljar/internal/storage"
	"github.com/san-kum/balljar/internal/tilt"
)

// Theme Colors (Monochrome Hyper-Minimalist)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)    // Deep Black
	ColAccent  = rl.NewColor(180, 180, 180, 255) // Soft White
	ColSelect  = rl.NewColor(255, 255, 255, 255) // Bright White
	ColText    = rl.NewColor(140, 140, 140, 255) // Neutral Gray
	ColTextDim = rl.NewColor(60, 60, 60, 255)    // Dark Gray (Subtle)
	ColGlass   = rl.NewColor(90, 110, 130, 255)  // Jar outline
)

const (
	screenW      = 720
	screenH      = 900
	tiltStep     = 0.05
	telemetryCap = 300
)

// Options configures a window session. Store may be nil.
type Options struct {
	Jar         *sim.Jar
	Mapping     tilt.Mapping
	Store       *storage.JarStore
	Collections storage.Collections
	Source      string
	FPS         int
	Logger      *slog.Logger
}

type App struct {
	Jar         *sim.Jar
	Feeder      *tilt.Feeder
	Attitude    tilt.Attitude
	Session     *session.Session
	Logger      *slog.Logger
	Font        rl.Font
	Telemetry   []float64 // kinetic energy ring buffer
	Last        physics.Snapshot
	Message     string
	view        view
	unsubscribe func()
}

// initWindow opens the window with the jar's portrait aspect and caps the
// frame rate, which is also the physics rate.
func initWindow(fps int) {
	rl.InitWindow(screenW, screenH, "balljar")
	if fps <= 0 {
		fps = 60
	}
	rl.SetTargetFPS(int32(fps))
	rl.SetExitKey(0)
}

// loadFont loads Liberation Mono when present, else the raylib default.
func loadFont() rl.Font {
	const path = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
	if _, err := os.Stat(path); err != nil {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(path, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

func NewApp(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{
		Jar:       opts.Jar,
		Feeder:    tilt.NewFeeder(opts.Jar.World, opts.Mapping, logger),
		Session:   session.New(opts.Jar, opts.Store, opts.Collections, opts.Source, logger),
		Logger:    logger,
		Font:      loadFont(),
		Telemetry: make([]float64, 0, telemetryCap),
		Last:      opts.Jar.World.Snapshot(),
	}
	app.view = newView(app.Last.Bounds)
	app.unsubscribe = app.Jar.World.Subscribe(func(s physics.Snapshot) {
		app.Last = s
		app.Telemetry = append(app.Telemetry, s.KineticEnergy())
		if len(app.Telemetry) > telemetryCap {
			app.Telemetry = app.Telemetry[1:]
		}
	})
	return app
}

// Run opens a window on the jar and blocks until it is closed.
func Run(opts Options) {
	initWindow(opts.FPS)
	defer rl.CloseWindow()
	app := NewApp(opts)
	defer app.unsubscribe()
	app.RunLoop()
}

// RunLoop fires the jar's frame queue once per rendered frame.
func (a *App) RunLoop() {
	a.Jar.World.Start()
	defer a.Jar.World.Stop()
	for !rl.WindowShouldClose() {
		if !a.Update() {
			return
		}
		a.Jar.Frames.Fire()
		a.Draw()
	}
}

// Update applies keyboard input. It returns false when the user quits.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) {
		return false
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		if a.Jar.World.Running() {
			a.Jar.World.Stop()
		} else {
			a.Jar.World.Start()
		}
	}

	roll, pitch := 0.0, 0.0
	if rl.IsKeyDown(rl.KeyLeft) {
		roll -= tiltStep
	}
	if rl.IsKeyDown(rl.KeyRight) {
		roll += tiltStep
	}
	if rl.IsKeyDown(rl.KeyUp) {
		pitch -= tiltStep
	}
	if rl.IsKeyDown(rl.KeyDown) {
		pitch += tiltStep
	}
	if roll != 0 || pitch != 0 {
		a.Attitude = a.Attitude.Nudge(roll, pitch)
		a.Feeder.Push(a.Attitude.Sample())
	}

	switch {
	case rl.IsKeyPressed(rl.KeyR):
		a.Attitude.Reset()
		a.Feeder.Push(a.Attitude.Sample())
		a.Message = "jar levelled"
	case rl.IsKeyPressed(rl.KeyS):
		a.Message, _ = a.Session.Spin()
		a.Last = a.Jar.World.Snapshot()
	case rl.IsKeyPressed(rl.KeyX):
		a.Message, _ = a.Session.RemoveNewest()
		a.Last = a.Jar.World.Snapshot()
	case rl.IsKeyPressed(rl.KeyC):
		a.Jar.World.Clear()
		a.Last = a.Jar.World.Snapshot()
		a.Message = "jar emptied"
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		a.respawnAt(rl.GetMousePosition())
	}
	return true
}

// respawnAt moves the ball under the cursor back to a spawn point.
func (a *App) respawnAt(pos rl.Vector2) {
	p := a.view.toWorld(pos)
	for _, b := range a.Last.Bodies {
		if b.Position.Sub(p).Len() <= b.Radius {
			a.Jar.Respawn(b.ID)
			a.Last = a.Jar.World.Snapshot()
			return
		}
	}
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	a.drawJar()
	a.DrawHUD()

	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	a.drawText("balljar", 30, 20, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.Session.Source), 150, 24, 16, ColText)

	status := "RUNNING"
	col := ColSelect
	if !a.Jar.World.Running() {
		status = "PAUSED"
		col = ColTextDim
	}
	a.drawText(status, screenW-110, 20, 16, col)

	balls := make([]ball.Ball, 0, len(a.Last.Bodies))
	for _, b := range a.Last.Bodies {
		if bl, ok := ball.FromBody(b); ok {
			balls = append(balls, bl)
		}
	}
	g := a.Last.Config.Gravity
	a.drawText(fmt.Sprintf("%d balls  %d min  g=(%.2f, %.2f)", len(a.Last.Bodies), ball.TotalMinutes(balls), g.X, g.Y), 30, 50, 14, ColText)

	longTerm := ball.TotalMinutes(a.Session.Collections.LongTerm)
	a.drawText(fmt.Sprintf("long-term %d / %d", longTerm, storage.NextGoal(longTerm)), 30, 70, 14, ColText)
	if a.Feeder.Degraded() {
		a.drawText("SENSOR OFF", screenW-130, 50, 14, rl.Red)
	}
	if a.Message != "" {
		a.drawText(a.Message, 30, screenH-70, 14, ColAccent)
	}

	a.DrawTelemetry()

	a.drawText("[ARROWS] TILT  [R] LEVEL  [SPACE] PAUSE  [S] SPIN  [X] REMOVE  [C] CLEAR  [Q] QUIT", 30, screenH-30, 12, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), screenW-80, screenH-30, 12, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := 30, screenH-130
	width, height := 400, 50

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("KE: %.1f", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}
