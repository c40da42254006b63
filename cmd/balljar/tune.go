package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/balljar/internal/automation"
	"github.com/san-kum/balljar/internal/config"
	"github.com/san-kum/balljar/internal/metrics"
	"github.com/san-kum/balljar/internal/optim"
	"github.com/san-kum/balljar/internal/sim"
	"github.com/san-kum/balljar/internal/storage"
)

var (
	sweepParam  string
	sweepMin    float64
	sweepMax    float64
	sweepPoints int
	settleBelow float64
	tuneGrid    []string
	tuneMetric  string
)

func newTuningCmds() []*cobra.Command {
	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "play a scripted tilt scenario headlessly",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one physics parameter and report how the jar settles",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	sweepCmd.Flags().StringVar(&preset, "preset", "default", "preset configuration")
	sweepCmd.Flags().StringVar(&source, "source", config.DefaultSource, "balls to load: today, longterm or config")
	sweepCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default time-based)")
	sweepCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "frames per point")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "bounce", fmt.Sprintf("parameter %v", config.ParamNames))
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 11, "number of values")
	sweepCmd.Flags().Float64Var(&settleBelow, "settle", 1, "kinetic energy counted as at rest")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search physics parameters for the lowest metric",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	tuneCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	tuneCmd.Flags().StringVar(&preset, "preset", "default", "preset configuration")
	tuneCmd.Flags().StringVar(&source, "source", config.DefaultSource, "balls to load: today, longterm or config")
	tuneCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default time-based)")
	tuneCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "frames per point")
	tuneCmd.Flags().StringArrayVar(&tuneGrid, "grid", []string{"friction=0.8:0.99:5", "bounce=0.2:0.8:4"}, "name=min:max:n, repeatable")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "overlap", "metric to minimize")

	return []*cobra.Command{scenarioCmd, sweepCmd, tuneCmd}
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	cfg := config.GetPreset(sc.Preset)
	if sc.Preset == "" {
		cfg = config.DefaultConfig()
	}
	if cfg == nil {
		return fmt.Errorf("scenario %s: unknown preset %q", sc.Name, sc.Preset)
	}
	if sc.Source != "" {
		cfg.Source = sc.Source
	}
	cfg.Run.Seed = sc.Seed

	jar, _, _, err := newJar(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}
	results, err := automation.RunScenario(ctx, sc, jar, cfg.Tilt, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tBALLS\tGRAVITY\tENERGY\tMAX SPEED\tESCAPES")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t(%.3f, %.3f)\t%.3f\t%.3f\t%.0f\n",
			r.Index, r.Bodies, r.Gravity.X, r.Gravity.Y, r.Energy, r.MaxSpeed, r.Escapes)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	balls, _, err := loadBalls(cfg, storage.NewJarStore(dataDir))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		ParamName:    sweepParam,
		ParamMin:     sweepMin,
		ParamMax:     sweepMax,
		NumSteps:     sweepPoints,
		Frames:       cfg.Run.Steps,
		Seed:         cfg.Run.Seed,
		SettleEnergy: settleBelow,
	}, cfg, balls)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tPEAK KE\tFINAL KE\tOVERLAP\tSETTLED AT\n", strings.ToUpper(sweepParam))
	peaks := make([]float64, len(results))
	for i, r := range results {
		settled := "never"
		if r.SettleStep >= 0 {
			settled = strconv.Itoa(r.SettleStep)
		}
		fmt.Fprintf(w, "%.4f\t%.3f\t%.3f\t%.4f\t%s\n", r.ParamValue, r.PeakEnergy, r.Final, r.Overlap, settled)
		peaks[i] = r.PeakEnergy
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(asciigraph.Plot(peaks, asciigraph.Height(8), asciigraph.Width(60),
		asciigraph.Caption(fmt.Sprintf("peak kinetic energy vs %s", sweepParam))))
	return nil
}

// parseGrid reads name=min:max:n entries.
func parseGrid(entries []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(entries))
	ranges := make([][]float64, 0, len(entries))
	for _, e := range entries {
		name, vals, ok := strings.Cut(e, "=")
		parts := strings.Split(vals, ":")
		if !ok || len(parts) != 3 {
			return nil, nil, fmt.Errorf("grid entry %q: want name=min:max:n", e)
		}
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil || n < 1 {
			return nil, nil, fmt.Errorf("grid entry %q: want name=min:max:n", e)
		}
		names = append(names, name)
		ranges = append(ranges, optim.Linspace(lo, hi, n))
	}
	return names, ranges, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	balls, _, err := loadBalls(cfg, storage.NewJarStore(dataDir))
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(tuneGrid)
	if err != nil {
		return err
	}

	build := func(params map[string]float64) (*sim.Runner, error) {
		point := *cfg
		for name, v := range params {
			if err := point.SetParam(name, v); err != nil {
				return nil, err
			}
		}
		jar, err := sim.NewJar(&point, balls, cfg.Run.Seed)
		if err != nil {
			logger.Debug("skipping grid point", "params", params, "err", err)
			return nil, err
		}
		r := jar.Runner()
		for _, m := range metrics.Standard() {
			r.AddMetric(m)
		}
		return r, nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	best, val, err := optim.NewGridSearch(names, ranges).Search(ctx, build,
		sim.Config{Steps: cfg.Run.Steps, SampleEvery: cfg.Run.Steps}, tuneMetric)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(best))
	for k := range best {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("best %s: %.6f\n", tuneMetric, val)
	for _, k := range keys {
		fmt.Printf("  %s: %.4f\n", k, best[k])
	}
	return nil
}
