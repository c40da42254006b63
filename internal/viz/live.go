package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/balljar/internal/ball"
	"github.com/san-kum/balljar/internal/physics"
	"github.com/san-kum/balljar/internal/session"
	"github.com/san-kum/balljar/internal/sim"
	"github.com/san-kum/balljar/internal/storage"
	"github.com/san-kum/balljar/internal/tilt"
)

const (
	width           = 40
	height          = 24
	historyCapacity = 600
	tiltStep        = 0.1
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(0, 1)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 2).Width(44)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Options configures a live jar session.
type Options struct {
	Jar         *sim.Jar
	Mapping     tilt.Mapping
	Store       *storage.JarStore // nil disables persistence
	Collections storage.Collections
	Source      string
	FPS         int
	GIFPath     string
	Logger      *slog.Logger
}

// liveState is shared by every copy of the Model. The world's listener
// writes into it.
type liveState struct {
	energy  []float64
	last    physics.Snapshot
	frames  []*image.Paletted
	message string
}

// Model drives a jar from tea.Tick: each tick fires the frame queue once.
type Model struct {
	jar         *sim.Jar
	feeder      *tilt.Feeder
	attitude    tilt.Attitude
	sess        *session.Session
	interval    time.Duration
	gifPath     string
	logger      *slog.Logger
	canvas      *Canvas
	state       *liveState
	unsubscribe func()
	recording   bool
	showHelp    bool
}

func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.GIFPath == "" {
		opts.GIFPath = "jar.gif"
	}

	m := Model{
		jar:      opts.Jar,
		feeder:   tilt.NewFeeder(opts.Jar.World, opts.Mapping, logger),
		sess:     session.New(opts.Jar, opts.Store, opts.Collections, opts.Source, logger),
		interval: physics.FrameInterval(opts.FPS),
		gifPath:  opts.GIFPath,
		logger:   logger,
		canvas:   NewCanvas(width, height),
		state:    &liveState{energy: make([]float64, 0, historyCapacity)},
	}
	m.state.last = m.jar.World.Snapshot()

	st := m.state
	m.unsubscribe = m.jar.World.Subscribe(func(s physics.Snapshot) {
		st.last = s
		st.energy = append(st.energy, s.KineticEnergy())
		if len(st.energy) > historyCapacity {
			st.energy = st.energy[1:]
		}
	})
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	m.jar.World.Start()
	return m.tick()
}

// Update handles input events and pumps the frame queue.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.jar.World.Stop()
			m.unsubscribe()
			if m.recording {
				m.saveGIF()
			}
			return m, tea.Quit
		case " ":
			if m.jar.World.Running() {
				m.jar.World.Stop()
			} else {
				m.jar.World.Start()
			}
		case "left", "h":
			m.tilt(-tiltStep, 0)
		case "right", "l":
			m.tilt(tiltStep, 0)
		case "up", "k":
			m.tilt(0, -tiltStep)
		case "down", "j":
			m.tilt(0, tiltStep)
		case "r":
			m.attitude.Reset()
			m.feeder.Push(m.attitude.Sample())
			m.state.message = "jar levelled"
		case "s":
			m.state.message, _ = m.sess.Spin()
			m.state.last = m.jar.World.Snapshot()
		case "x":
			m.state.message, _ = m.sess.RemoveNewest()
			m.state.last = m.jar.World.Snapshot()
		case "c":
			m.jar.World.Clear()
			m.state.last = m.jar.World.Snapshot()
			m.state.message = "jar emptied"
		case "g":
			if m.recording {
				m.saveGIF()
				m.recording = false
			} else {
				m.recording = true
				m.state.frames = m.state.frames[:0]
			}
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		m.jar.Frames.Fire()
		if m.recording {
			DrawScene(m.canvas, m.state.last, CurrentTheme)
			m.captureFrame()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) tilt(roll, pitch float64) {
	m.attitude = m.attitude.Nudge(roll, pitch)
	m.feeder.Push(m.attitude.Sample())
}

// View renders the jar and the stats panel.
func (m Model) View() string {
	snap := m.state.last
	DrawScene(m.canvas, snap, CurrentTheme)
	canvasView := canvasStyle.Render(GlassPanel.Render(m.canvas.Render()))

	var s strings.Builder
	title := GradientText("BALL JAR · "+strings.ToUpper(m.sess.Source), CurrentTheme.Primary, CurrentTheme.Accent)
	s.WriteString(title + "\n")

	status := StatusRunning.Render("RUNNING")
	if !m.jar.World.Running() {
		status = StatusPaused.Render("PAUSED")
	}
	if m.recording {
		status += " " + StatusRecording.Render("● REC")
	}
	s.WriteString(status + "\n\n")

	if len(m.state.energy) > 1 {
		chart := asciigraph.Plot(m.state.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	balls := make([]ball.Ball, 0, len(snap.Bodies))
	for _, b := range snap.Bodies {
		if bl, ok := ball.FromBody(b); ok {
			balls = append(balls, bl)
		}
	}
	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Balls", fmt.Sprintf("%d", len(snap.Bodies)))
	row("Minutes", fmt.Sprintf("%d", ball.TotalMinutes(balls)))
	row("Step", fmt.Sprintf("%d", snap.Step))
	g := snap.Config.Gravity
	row("Gravity", fmt.Sprintf("(%.2f, %.2f)", g.X, g.Y))
	row("Tilt", fmt.Sprintf("roll %.0f° pitch %.0f°", m.attitude.Roll*180/math.Pi, m.attitude.Pitch*180/math.Pi))
	if m.feeder.Degraded() {
		row("Sensor", "unavailable")
	}

	longTerm := ball.TotalMinutes(m.sess.Collections.LongTerm)
	goal := storage.NextGoal(longTerm)
	s.WriteString("\n" + MetricLabel.Render("Long-term") + fmt.Sprintf("%d / %d\n", longTerm, goal))
	s.WriteString(ProgressBar(float64(longTerm)/float64(goal), 30) + "\n")

	if m.state.message != "" {
		s.WriteString("\n" + Subtle.Render(m.state.message) + "\n")
	}
	s.WriteString(helpStyle.Render(Separator(30) + "\n←→↑↓:Tilt R:Level SP:Pause\nS:Spin X:Remove C:Clear\nT:Theme G:Record ?:Help Q:Quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Arrows   - Tilt the jar             ║
║  R        - Level the jar            ║
║  Space    - Pause/Resume             ║
║  S        - Spin for a new ball      ║
║  X        - Remove the newest ball   ║
║  C        - Empty the jar            ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func (m *Model) captureFrame() {
	charW, charH := 8, 16
	imgW, imgH := m.canvas.Width*charW, m.canvas.Height*charH
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), color.Palette{color.Black, color.White})
	dotW, dotH := charW/2, charH/4
	for row := 0; row < m.canvas.Height; row++ {
		for col := 0; col < m.canvas.Width; col++ {
			r := m.canvas.Grid[row][col]
			if r < blank || r > blank+0xff {
				continue
			}
			pattern := int(r - blank)
			baseX, baseY := col*charW, row*charH
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+dx*dotW+px, baseY+dy*dotH+py, 1)
						}
					}
				}
			}
		}
	}
	m.state.frames = append(m.state.frames, img)
}

func (m *Model) saveGIF() {
	if len(m.state.frames) == 0 {
		return
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.state.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(m.gifPath)
	if err != nil {
		m.logger.Error("save gif", "path", m.gifPath, "err", err)
		return
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		m.logger.Error("encode gif", "path", m.gifPath, "err", err)
		return
	}
	m.state.message = "saved " + m.gifPath
}

// Run starts the jar TUI and blocks until the user quits.
func Run(opts Options) error {
	_, err := tea.NewProgram(NewModel(opts), tea.WithAltScreen()).Run()
	return err
}
