package persona

import (
	"fmt"

	"cropsight/internal/agronomy"
	"cropsight/internal/engine"
)

// Bar is one (category label, signed value) pair for a horizontal bar chart.
type Bar struct {
	Label string
	Value float64
}

// Positive reports whether the bar supports the predicted class.
func (b Bar) Positive() bool { return b.Value > 0 }

// SensitivityRecord is the structured decision-boundary probe.
type SensitivityRecord struct {
	CurrentClass agronomy.Crop
	Lever        agronomy.Feature
	Direction    engine.Direction
	Change       string
	FlipToClass  agronomy.Crop
}

// Lines renders the record as the monospace block scientists read.
func (s SensitivityRecord) Lines() []string {
	return []string{
		"Boundary_Detection:",
		"Current_Class: " + string(s.CurrentClass),
		fmt.Sprintf("Perturbation: %s %s -> %s", s.Lever.Label(), s.Direction, s.Change),
		"Flip_To_Class: " + string(s.FlipToClass),
	}
}

// ScientistView exposes the full attribution and the boundary probes.
type ScientistView struct {
	Header
	Confidence  float64
	ChartTitle  string
	Bars        []Bar
	Caption     string
	Sensitivity SensitivityRecord
	Boundaries  []engine.Boundary
}

func (v *ScientistView) Persona() Kind { return Scientist }
func (v *ScientistView) Head() Header { return v.Header }

// ScientistPresenter builds ScientistView.
type ScientistPresenter struct{}

func (ScientistPresenter) Kind() Kind { return Scientist }

func (ScientistPresenter) Present(res engine.Result, ms agronomy.MeasurementSet) View {
	entries := res.Attribution()
	bars := make([]Bar, len(entries))
	for i, e := range entries {
		bars[i] = Bar{Label: e.Label(), Value: e.Weight}
	}

	cf := res.Counterfactual()
	return &ScientistView{
		Header:     header(Scientist, res),
		Confidence: res.Confidence(),
		ChartTitle: "Model Logic Verification (Attribution)",
		Bars:       bars,
		Caption:    caption(entries, res.Crop()),
		Sensitivity: SensitivityRecord{
			CurrentClass: res.Crop(),
			Lever:        cf.Lever,
			Direction:    cf.Direction,
			Change:       cf.Change(),
			FlipToClass:  cf.Target,
		},
		Boundaries: res.Boundaries(),
	}
}

func caption(entries []engine.AttributionEntry, crop agronomy.Crop) string {
	text := fmt.Sprintf("Positive bars contribute towards %s; negative bars contribute against it.", crop)
	if len(entries) > 0 {
		text += fmt.Sprintf(" %s is the primary driver.", entries[0].Label())
	}
	return text
}
