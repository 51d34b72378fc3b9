package engine

import (
	"math"
	"sort"

	"cropsight/internal/agronomy"
)

// Impact is the direction in which a feature pushes the decision.
type Impact string

const (
	Positive Impact = "positive"
	Negative Impact = "negative"
)

// AttributionEntry is one feature's signed contribution to a classification.
// Only relative order and sign are meaningful; magnitudes need not sum to 1.
type AttributionEntry struct {
	Feature agronomy.Feature
	Weight  float64
	Impact  Impact
}

func entry(f agronomy.Feature, w float64) AttributionEntry {
	impact := Positive
	if w < 0 {
		impact = Negative
	}
	return AttributionEntry{Feature: f, Weight: w, Impact: impact}
}

// Label is the chart category label for the entry.
func (e AttributionEntry) Label() string { return e.Feature.Label() }

// attributionProfile is the static weight profile for each regime, written in
// no particular order; Explain ranks it.
func (r Regime) attributionProfile() []AttributionEntry {
	switch r {
	case WaterLoving:
		return []AttributionEntry{
			entry(agronomy.Rainfall, 0.52),
			entry(agronomy.Humidity, 0.28),
			entry(agronomy.Nitrogen, 0.12),
			entry(agronomy.Temperature, 0.05),
			entry(agronomy.PH, -0.02),
		}
	case DroughtResistant:
		return []AttributionEntry{
			entry(agronomy.Rainfall, 0.45),
			entry(agronomy.Humidity, -0.15),
			entry(agronomy.Temperature, 0.20),
			entry(agronomy.Nitrogen, -0.05),
			entry(agronomy.PH, 0.08),
		}
	default:
		return []AttributionEntry{
			entry(agronomy.PH, 0.35),
			entry(agronomy.Temperature, 0.25),
			entry(agronomy.Rainfall, 0.15),
			entry(agronomy.Humidity, 0.10),
			entry(agronomy.Potassium, -0.10),
		}
	}
}

// Explain returns the attribution for crop, ranked by descending absolute
// weight. Equal magnitudes keep feature vocabulary order.
func Explain(m agronomy.MeasurementSet, crop agronomy.Crop) []AttributionEntry {
	entries := regimeOfCrop(crop).attributionProfile()
	rankByInfluence(entries)
	return entries
}

func rankByInfluence(entries []AttributionEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ai, aj := math.Abs(entries[i].Weight), math.Abs(entries[j].Weight)
		if ai != aj {
			return ai > aj
		}
		return entries[i].Feature < entries[j].Feature
	})
}
