package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/balljar/internal/ball"
	"github.com/san-kum/balljar/internal/physics"
	"github.com/san-kum/balljar/internal/sim"
)

// Store keeps one directory per recorded run: metadata.json plus a
// bodies.csv with one row per body per sampled frame.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Preset    string             `json:"preset"`
	Source    string             `json:"source"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Steps     int                `json:"steps"`
	Bodies    int                `json:"bodies"`
	Bounds    physics.Bounds     `json:"bounds"`
	Physics   physics.Config     `json:"physics"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Sample is one body in one recorded frame.
type Sample struct {
	Step     uint64
	ID       string
	Position physics.Vec2
	Velocity physics.Vec2
	Radius   float64
	Minutes  int // 0 when the body carried no ball
}

var csvHeader = []string{"step", "id", "x", "y", "vx", "vy", "radius", "minutes"}

// Save writes meta and the sampled frames of result, filling in the id,
// timestamp and metrics. It returns the run id.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Preset, now.UnixNano())
	meta.Timestamp = now
	meta.Steps = result.Steps
	meta.Metrics = result.Metrics
	if final, ok := result.Final(); ok {
		meta.Bodies = len(final.Bodies)
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "bodies.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	var samples []Sample
	for _, frame := range result.Frames {
		for _, b := range frame.Bodies {
			samples = append(samples, sampleOf(frame.Step, b))
		}
	}
	if err := WriteSamples(csvFile, samples); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func sampleOf(step uint64, b physics.Body) Sample {
	sm := Sample{Step: step, ID: b.ID, Position: b.Position, Velocity: b.Velocity, Radius: b.Radius}
	if bl, ok := ball.FromBody(b); ok {
		sm.Minutes = bl.Minutes
	}
	return sm
}

func (sm Sample) record() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	return []string{
		strconv.FormatUint(sm.Step, 10), sm.ID,
		f(sm.Position.X), f(sm.Position.Y),
		f(sm.Velocity.X), f(sm.Velocity.Y),
		f(sm.Radius),
		strconv.Itoa(sm.Minutes),
	}
}

// WriteSamples writes samples as CSV in the bodies.csv layout.
func WriteSamples(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, sm := range samples {
		if err := cw.Write(sm.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// List returns all runs, oldest first. A missing directory is an empty list.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// CSVPath is where a run's samples live.
func (s *Store) CSVPath(runID string) string {
	return filepath.Join(s.baseDir, runID, "bodies.csv")
}

// LoadSamples reads every recorded body row. Malformed rows are skipped.
// Runs recorded before the minutes column load with Minutes 0.
func (s *Store) LoadSamples(runID string) ([]Sample, error) {
	file, err := os.Open(s.CSVPath(runID))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Sample{}, nil
	}

	samples := make([]Sample, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != len(csvHeader) && len(record) != len(csvHeader)-1 {
			continue
		}
		step, err := strconv.ParseUint(record[0], 10, 64)
		if err != nil {
			continue
		}
		vals := make([]float64, 5)
		ok := true
		for i := range vals {
			v, err := strconv.ParseFloat(record[i+2], 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue
		}
		minutes := 0
		if len(record) == len(csvHeader) {
			if minutes, err = strconv.Atoi(record[7]); err != nil {
				continue
			}
		}
		samples = append(samples, Sample{
			Step:     step,
			ID:       record[1],
			Position: physics.Vec2{X: vals[0], Y: vals[1]},
			Velocity: physics.Vec2{X: vals[2], Y: vals[3]},
			Radius:   vals[4],
			Minutes:  minutes,
		})
	}
	return samples, nil
}

// Trajectory filters samples down to one body, in step order.
func Trajectory(samples []Sample, id string) []Sample {
	out := make([]Sample, 0)
	for _, s := range samples {
		if s.ID == id {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Step < out[j].Step })
	return out
}

// Frames regroups samples into per-step snapshots over bounds. Samples with
// minutes get a ball payload back so renderers can label and color them.
func Frames(samples []Sample, bounds physics.Bounds) []physics.Snapshot {
	var frames []physics.Snapshot
	index := make(map[uint64]int)
	for _, s := range samples {
		i, ok := index[s.Step]
		if !ok {
			i = len(frames)
			index[s.Step] = i
			frames = append(frames, physics.Snapshot{Step: s.Step, Bounds: bounds})
		}
		body := physics.Body{
			ID:       s.ID,
			Position: s.Position,
			Velocity: s.Velocity,
			Radius:   s.Radius,
			Mass:     ball.Mass(s.Radius),
		}
		if s.Minutes > 0 {
			body.Payload = ball.Ball{ID: s.ID, Minutes: s.Minutes, Color: ball.ColorFor(s.Minutes)}
		}
		frames[i].Bodies = append(frames[i].Bodies, body)
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i].Step < frames[j].Step })
	return frames
}
