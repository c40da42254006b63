package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/balljar/internal/ball"
	"github.com/san-kum/balljar/internal/config"
	"github.com/san-kum/balljar/internal/metrics"
	"github.com/san-kum/balljar/internal/physics"
	"github.com/san-kum/balljar/internal/sim"
	"github.com/san-kum/balljar/internal/tilt"
)

// Scenario is a scripted sequence of jar actions, each followed by some
// frames of simulation.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Source      string         `yaml:"source"`
	Seed        int64          `yaml:"seed"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep applies its actions in field order, then runs Frames frames.
type ScenarioStep struct {
	Clear     bool         `yaml:"clear"`
	Spin      int          `yaml:"spin"`
	Level     bool         `yaml:"level"`
	Roll      float64      `yaml:"roll"`
	Pitch     float64      `yaml:"pitch"`
	Sample    *tilt.Sample `yaml:"sample"`
	SensorOff bool         `yaml:"sensor_off"`
	Frames    int          `yaml:"frames"`
}

// StepResult is the jar state after one scenario step.
type StepResult struct {
	Index    int
	Bodies   int
	Gravity  physics.Vec2
	Energy   float64
	MaxSpeed float64
	Escapes  float64
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	for i, s := range scenario.Steps {
		if s.Frames < 0 || s.Spin < 0 {
			return nil, fmt.Errorf("step %d: frames and spin must be non-negative", i+1)
		}
	}

	return &scenario, nil
}

// RunScenario executes all steps against jar. Tilt goes through a feeder, so
// roll and pitch accumulate across steps exactly like arrow keys do.
func RunScenario(ctx context.Context, scenario *Scenario, jar *sim.Jar, mapping tilt.Mapping, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	feeder := tilt.NewFeeder(jar.World, mapping, logger)
	var attitude tilt.Attitude
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Debug("scenario step", "scenario", scenario.Name, "step", i+1, "frames", step.Frames)

		if step.Clear {
			jar.World.Clear()
		}
		for range step.Spin {
			b := ball.Draw(jar.Rand(), ball.KindPhysics)
			if _, err := jar.Drop(b); err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
		}
		if step.Level {
			attitude.Reset()
			feeder.Push(attitude.Sample())
		}
		if step.Roll != 0 || step.Pitch != 0 {
			attitude = attitude.Nudge(step.Roll, step.Pitch)
			feeder.Push(attitude.Sample())
		}
		if step.Sample != nil {
			feeder.Push(*step.Sample)
		}
		if step.SensorOff {
			feeder.Unavailable(errors.New("sensor disabled by scenario"))
		}

		maxSpeed := metrics.NewMaxSpeed()
		escapes := metrics.NewEscapes(1e-6)
		if step.Frames > 0 {
			runner := jar.Runner()
			runner.AddMetric(maxSpeed)
			runner.AddMetric(escapes)
			if _, err := runner.Run(ctx, sim.Config{Steps: step.Frames, SampleEvery: step.Frames}); err != nil {
				return results, fmt.Errorf("step %d run: %w", i+1, err)
			}
		}

		snap := jar.World.Snapshot()
		results = append(results, StepResult{
			Index:    i + 1,
			Bodies:   len(snap.Bodies),
			Gravity:  snap.Config.Gravity,
			Energy:   snap.KineticEnergy(),
			MaxSpeed: maxSpeed.Value(),
			Escapes:  escapes.Value(),
		})
	}

	return results, nil
}

// ParameterSweep runs the same jar across a range of one physics parameter.
type ParameterSweep struct {
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Frames    int
	Seed      int64
	// SettleEnergy is the kinetic energy below which the jar counts as at rest.
	SettleEnergy float64
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue float64
	PeakEnergy float64
	Final      float64
	Overlap    float64
	// SettleStep is the first step after which energy stays below
	// SettleEnergy, or -1 if the jar never came to rest.
	SettleStep int
}

// RunSweep executes a parameter sweep on copies of base filled with balls.
func RunSweep(ctx context.Context, sweep *ParameterSweep, base *config.Config, balls []ball.Ball) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 points, got %d", sweep.NumSteps)
	}
	if sweep.Frames <= 0 {
		return nil, fmt.Errorf("sweep needs a positive frame count, got %d", sweep.Frames)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := *base
		if err := cfg.SetParam(sweep.ParamName, paramVal); err != nil {
			return nil, err
		}
		jar, err := sim.NewJar(&cfg, balls, sweep.Seed)
		if err != nil {
			return nil, fmt.Errorf("%s=%.4f: %w", sweep.ParamName, paramVal, err)
		}

		runner := jar.Runner()
		overlap := metrics.NewOverlap()
		runner.AddMetric(overlap)
		result, err := runner.Run(ctx, sim.Config{Steps: sweep.Frames, SampleEvery: sweep.Frames})
		if err != nil {
			return nil, err
		}

		res := SweepResult{
			ParamValue: paramVal,
			Overlap:    overlap.Value(),
			SettleStep: SettleStep(result.Energy, sweep.SettleEnergy),
		}
		for _, e := range result.Energy {
			res.PeakEnergy = max(res.PeakEnergy, e)
		}
		if n := len(result.Energy); n > 0 {
			res.Final = result.Energy[n-1]
		}
		results = append(results, res)
	}

	return results, nil
}

// SettleStep returns the number of steps after which energy stays below
// threshold, or -1 if the last value is not below it.
func SettleStep(energy []float64, threshold float64) int {
	for i := len(energy) - 1; i >= 0; i-- {
		if energy[i] >= threshold {
			if i == len(energy)-1 {
				return -1
			}
			return i + 1
		}
	}
	return 0
}
