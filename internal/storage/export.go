package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/balljar/internal/physics"
	"github.com/san-kum/balljar/internal/sim"
)

type ExportData struct {
	Preset  string             `json:"preset"`
	Seed    int64              `json:"seed"`
	Bounds  physics.Bounds     `json:"bounds"`
	Physics physics.Config     `json:"physics"`
	Steps   int                `json:"steps"`
	Energy  []float64          `json:"energy"`
	Frames  []ExportFrame      `json:"frames"`
	Metrics map[string]float64 `json:"metrics"`
}

type ExportFrame struct {
	Step   uint64       `json:"step"`
	Bodies []ExportBody `json:"bodies"`
}

// ExportBody drops the payload, which has no stable encoding.
type ExportBody struct {
	ID       string       `json:"id"`
	Position physics.Vec2 `json:"position"`
	Velocity physics.Vec2 `json:"velocity"`
	Radius   float64      `json:"radius"`
	Mass     float64      `json:"mass"`
}

func NewExportData(meta RunMetadata, result *sim.Result) ExportData {
	data := ExportData{
		Preset:  meta.Preset,
		Seed:    meta.Seed,
		Bounds:  meta.Bounds,
		Physics: meta.Physics,
		Steps:   result.Steps,
		Energy:  result.Energy,
		Frames:  make([]ExportFrame, len(result.Frames)),
		Metrics: result.Metrics,
	}

	for i, f := range result.Frames {
		frame := ExportFrame{Step: f.Step, Bodies: make([]ExportBody, len(f.Bodies))}
		for j, b := range f.Bodies {
			frame.Bodies[j] = ExportBody{ID: b.ID, Position: b.Position, Velocity: b.Velocity, Radius: b.Radius, Mass: b.Mass}
		}
		data.Frames[i] = frame
	}
	return data
}

func ExportJSON(path string, meta RunMetadata, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, meta, result)
}

func WriteJSON(w io.Writer, meta RunMetadata, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, result))
}
