package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/san-kum/balljar/internal/ball"
	"github.com/san-kum/balljar/internal/config"
	"github.com/san-kum/balljar/internal/export"
	"github.com/san-kum/balljar/internal/gui"
	"github.com/san-kum/balljar/internal/metrics"
	"github.com/san-kum/balljar/internal/physics"
	"github.com/san-kum/balljar/internal/sim"
	"github.com/san-kum/balljar/internal/storage"
	"github.com/san-kum/balljar/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	source     string
	steps      int
	frameRate  int
	seed       int64
	sampleRate int
	realtime   bool
	body       string
	outPath    string
	atStep     int64
	scale      float64
	theme      string
	benchBalls int
	benchRuns  int
	benchSteps int
	benchSeed  int64
	profMode   string
)

var logger = slog.Default()

// main registers the commands and opens the preset menu when no subcommand
// is given.
func main() {
	rootCmd := &cobra.Command{
		Use:   "balljar",
		Short: "a jar of time-value balls with tilt physics",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = newLogger(verbose)
			slog.SetDefault(logger)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(config.ListPresets(), buildLive)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".balljar", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	jarFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
		cmd.Flags().StringVar(&preset, "preset", "default", "preset configuration")
		cmd.Flags().StringVar(&source, "source", config.DefaultSource, "balls to load: today, longterm or config")
		cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default time-based)")
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the jar headlessly and record it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	jarFlags(runCmd)
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "frames to simulate")
	runCmd.Flags().IntVar(&sampleRate, "sample-every", config.DefaultSampleEvery, "record every n-th frame")
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "pace frames at --fps")
	runCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate for --realtime")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot kinetic energy, or one ball's position",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&body, "body", "", "ball id to plot")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	exportCSVCmd.Flags().StringVar(&body, "body", "", "only this ball")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run frames to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a frame, or one ball's trajectory, as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().StringVar(&body, "body", "", "draw this ball's trajectory")
	exportSVGCmd.Flags().Int64Var(&atStep, "step", -1, "frame to draw (default last)")
	exportSVGCmd.Flags().Float64Var(&scale, "scale", 2, "pixels per jar unit")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "open the jar in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	jarFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	liveCmd.Flags().StringVar(&theme, "theme", "classic", "color theme")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "open the jar in a window",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}
	jarFlags(guiCmd)
	guiCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tGRAVITY\tFRICTION\tBOUNCE\tJAR")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t(%.2f, %.2f)\t%.3f\t%.2f\t%.0fx%.0f\n", name,
					cfg.Physics.Gravity.X, cfg.Physics.Gravity.Y, cfg.Physics.Friction,
					cfg.Physics.Bounce, cfg.Jar.Width, cfg.Jar.Height)
			}
			return w.Flush()
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the world step",
		Args:  cobra.NoArgs,
		RunE:  benchWorld,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 2000, "frames per run")
	benchCmd.Flags().IntVar(&benchBalls, "balls", 0, "only this many balls (default 10, 50, 100, 200)")
	benchCmd.Flags().IntVar(&benchRuns, "runs", 1, "parallel jars per size")
	benchCmd.Flags().StringVar(&profMode, "profile", "", "write a cpu or mem profile to the data directory")
	benchCmd.Flags().Int64Var(&benchSeed, "seed", 42, "first seed")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd,
		liveCmd, guiCmd, presetsCmd, benchCmd, newJarCmd())
	rootCmd.AddCommand(newTuningCmds()...)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// resolveConfig layers preset, then config file, then explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	if configFile != "" {
		var err error
		cfg, err = config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source = source
	}
	if flags.Changed("steps") {
		cfg.Run.Steps = steps
	}
	if flags.Changed("fps") {
		cfg.Run.FPS = frameRate
	}
	if flags.Changed("sample-every") {
		cfg.Run.SampleEvery = sampleRate
	}
	if flags.Changed("seed") {
		cfg.Run.Seed = seed
	} else if cfg.Run.Seed == 0 {
		cfg.Run.Seed = time.Now().UnixNano()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("config resolved", "preset", preset, "file", configFile, "source", cfg.Source, "seed", cfg.Run.Seed)
	return cfg, nil
}

// loadBalls returns the balls for cfg.Source together with the persisted
// collections.
func loadBalls(cfg *config.Config, js *storage.JarStore) ([]ball.Ball, storage.Collections, error) {
	collections, err := js.Load()
	if err != nil {
		return nil, storage.Collections{}, err
	}
	if cfg.Source == config.SourceConfig {
		return cfg.InlineBalls(), collections, nil
	}
	balls, err := collections.Balls(cfg.Source)
	return balls, collections, err
}

func newJar(cfg *config.Config) (*sim.Jar, storage.Collections, *storage.JarStore, error) {
	js := storage.NewJarStore(dataDir)
	balls, collections, err := loadBalls(cfg, js)
	if err != nil {
		return nil, storage.Collections{}, nil, err
	}
	jar, err := sim.NewJar(cfg, balls, cfg.Run.Seed)
	if err != nil {
		return nil, storage.Collections{}, nil, err
	}
	logger.Debug("jar filled", "balls", len(balls), "source", cfg.Source)
	return jar, collections, js, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	jar, _, _, err := newJar(cfg)
	if err != nil {
		return err
	}

	runner := jar.Runner()
	for _, m := range metrics.Standard() {
		runner.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	simCfg := sim.Config{Steps: cfg.Run.Steps, SampleEvery: cfg.Run.SampleEvery}
	if realtime {
		simCfg.FPS = cfg.Run.FPS
	}

	fmt.Printf("running %s jar with %d balls...\n", cfg.Source, jar.World.Len())
	result, err := runner.Run(ctx, simCfg)
	if err != nil && ctx.Err() == nil {
		return err
	}
	if ctx.Err() != nil {
		logger.Warn("run interrupted", "steps", result.Steps)
	}

	runID, err := st.Save(storage.RunMetadata{
		Preset:  preset,
		Source:  cfg.Source,
		Seed:    cfg.Run.Seed,
		Bounds:  cfg.Jar,
		Physics: cfg.PhysicsConfig(),
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.Steps)
	fmt.Println("\nmetrics:")
	for _, m := range metrics.Standard() {
		fmt.Printf("  %s: %.6f\n", m.Name(), result.Metrics[m.Name()])
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tSOURCE\tTIME\tSTEPS\tBALLS\tSEED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.Preset,
			run.Source,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Bodies,
			run.Seed,
		)
	}
	return w.Flush()
}

// loadRun reads a run's metadata and its recorded frames.
func loadRun(runID string) (*storage.RunMetadata, []storage.Sample, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, samples, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s  source: %s\n", meta.Preset, meta.Source)

	if body != "" {
		traj := storage.Trajectory(samples, body)
		if len(traj) == 0 {
			return fmt.Errorf("ball %s not in run %s", body, meta.ID)
		}
		xs, ys := make([]float64, len(traj)), make([]float64, len(traj))
		for i, s := range traj {
			xs[i], ys[i] = s.Position.X, s.Position.Y
		}
		fmt.Printf("samples: %d\n\n", len(traj))
		fmt.Println(asciigraph.Plot(xs, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("x position")))
		fmt.Println()
		fmt.Println(asciigraph.Plot(ys, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("y position (down)")))
		return nil
	}

	frames := storage.Frames(samples, meta.Bounds)
	energy := make([]float64, len(frames))
	speed := make([]float64, len(frames))
	for i, f := range frames {
		energy[i] = f.KineticEnergy()
		for _, b := range f.Bodies {
			speed[i] = max(speed[i], b.Speed())
		}
	}
	fmt.Printf("frames: %d\n\n", len(frames))
	fmt.Println(asciigraph.Plot(energy, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("kinetic energy")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(speed, asciigraph.Height(6), asciigraph.Width(80), asciigraph.Caption("max speed")))
	return nil
}

// output opens outPath, or stdout when it is empty.
func output() (*os.File, func() error, error) {
	if outPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if body != "" {
		samples = storage.Trajectory(samples, body)
	}

	f, closeFn, err := output()
	if err != nil {
		return err
	}
	defer closeFn()

	return storage.WriteSamples(f, samples)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	frames := storage.Frames(samples, meta.Bounds)
	result := &sim.Result{Frames: frames, Metrics: meta.Metrics, Steps: meta.Steps}
	for _, f := range frames {
		result.Energy = append(result.Energy, f.KineticEnergy())
	}

	if outPath != "" {
		return storage.ExportJSON(outPath, *meta, result)
	}
	return storage.WriteJSON(os.Stdout, *meta, result)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var svg string
	if body != "" {
		traj := storage.Trajectory(samples, body)
		if len(traj) < 2 {
			return fmt.Errorf("ball %s has fewer than two samples in run %s", body, meta.ID)
		}
		points := make([]export.Point, len(traj))
		for i, s := range traj {
			points[i] = export.Point{X: s.Position.X, Y: s.Position.Y}
		}
		svg = export.TrajectoryToSVG(points, meta.Bounds, scale, ball.ColorTeal)
	} else {
		frames := storage.Frames(samples, meta.Bounds)
		frame := frames[len(frames)-1]
		if atStep >= 0 {
			found := false
			for _, f := range frames {
				if f.Step == uint64(atStep) {
					frame, found = f, true
					break
				}
			}
			if !found {
				return fmt.Errorf("step %d was not recorded in run %s", atStep, meta.ID)
			}
		}
		svg = export.SnapshotToSVG(frame, scale)
	}

	f, closeFn, err := output()
	if err != nil {
		return err
	}
	defer closeFn()
	_, err = fmt.Fprintln(f, svg)
	return err
}

// buildLive prepares a terminal session for the preset menu.
func buildLive(presetName, src string) (viz.Options, error) {
	cfg := config.GetPreset(presetName)
	if cfg == nil {
		return viz.Options{}, fmt.Errorf("unknown preset: %s", presetName)
	}
	cfg.Source = src
	cfg.Run.Seed = time.Now().UnixNano()
	jar, collections, js, err := newJar(cfg)
	if err != nil {
		return viz.Options{}, err
	}
	return viz.Options{
		Jar:         jar,
		Mapping:     cfg.Tilt,
		Store:       js,
		Collections: collections,
		Source:      cfg.Source,
		FPS:         cfg.Run.FPS,
		GIFPath:     dataDir + "/jar.gif",
		Logger:      logger,
	}, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	jar, collections, js, err := newJar(cfg)
	if err != nil {
		return err
	}
	viz.SetTheme(theme)

	return viz.Run(viz.Options{
		Jar:         jar,
		Mapping:     cfg.Tilt,
		Store:       js,
		Collections: collections,
		Source:      cfg.Source,
		FPS:         cfg.Run.FPS,
		GIFPath:     dataDir + "/jar.gif",
		Logger:      logger,
	})
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	jar, collections, js, err := newJar(cfg)
	if err != nil {
		return err
	}

	gui.Run(gui.Options{
		Jar:         jar,
		Mapping:     cfg.Tilt,
		Store:       js,
		Collections: collections,
		Source:      cfg.Source,
		FPS:         cfg.Run.FPS,
		Logger:      logger,
	})
	return nil
}

// benchJar fills a default jar with n random balls.
func benchJar(n int, seed int64) (*sim.Runner, error) {
	cfg := config.DefaultConfig()
	cfg.Jar = physics.Bounds{Width: 300 * float64(1+n/50), Height: 400 * float64(1+n/50)}
	rng := rand.New(rand.NewSource(seed))
	balls := make([]ball.Ball, n)
	for i := range balls {
		balls[i] = ball.Draw(rng, ball.KindPhysics)
	}
	jar, err := sim.NewJar(cfg, balls, seed)
	if err != nil {
		return nil, err
	}
	return jar.Runner(), nil
}

func benchWorld(cmd *cobra.Command, args []string) error {
	switch profMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(dataDir), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(dataDir), profile.Quiet).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q (want cpu or mem)", profMode)
	}

	sizes := []int{10, 50, 100, 200}
	if benchBalls > 0 {
		sizes = []int{benchBalls}
	}

	fmt.Printf("benchmarking %d frames\n\n", benchSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BALLS\tRUNS\tSTEPS\tTIME\tSTEPS/SEC\tESCAPES")

	for _, n := range sizes {
		ensemble := sim.NewEnsemble(func(s int64) (*sim.Runner, error) {
			r, err := benchJar(n, s)
			if err != nil {
				return nil, err
			}
			r.AddMetric(metrics.NewEscapes(1e-6))
			return r, nil
		}, benchRuns, benchSeed)

		start := time.Now()
		results, err := ensemble.Run(context.Background(), sim.Config{Steps: benchSteps, SampleEvery: benchSteps})
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		total, escapes := 0, 0.0
		for _, r := range results {
			total += r.Steps
			escapes += r.Metrics["escapes"]
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\t%.0f\n",
			n, benchRuns, total, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds(), escapes)
	}

	if err := w.Flush(); err != nil {
		return err
	}
	if profMode != "" {
		logger.Info("profile written", "mode", profMode, "dir", dataDir)
	}
	return nil
}
