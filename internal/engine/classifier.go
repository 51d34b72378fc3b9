// Package engine is the decision and explanation core: it classifies a
// measurement set into a crop, explains the classification per feature,
// derives a single-feature counterfactual and tags the regional risk.
//
// Every function here is pure and total. Nothing returns an error; inputs
// that would be out of domain are sanitized to finite values first.
package engine

import "cropsight/internal/agronomy"

// ---------------------------------------------------------------------------
// Regimes
// ---------------------------------------------------------------------------

// Regime is the closed set of climate regimes the rule set distinguishes.
// Each regime maps to exactly one crop.
type Regime int

const (
	ModerateClimate Regime = iota
	WaterLoving
	DroughtResistant
)

func (r Regime) String() string {
	switch r {
	case WaterLoving:
		return "water-loving"
	case DroughtResistant:
		return "drought-resistant"
	default:
		return "moderate-climate"
	}
}

// Rule thresholds. All comparisons are strict.
const (
	wetRainfallAbove = 180.0
	wetHumidityAbove = 70.0
	dryRainfallBelow = 70.0
)

// RegimeOf evaluates the ordered rules, first match wins. The default arm
// makes the rule set exhaustive over the whole numeric domain.
func RegimeOf(m agronomy.MeasurementSet) Regime {
	switch {
	case m.Rainfall > wetRainfallAbove && m.Humidity > wetHumidityAbove:
		return WaterLoving
	case m.Rainfall < dryRainfallBelow:
		return DroughtResistant
	default:
		return ModerateClimate
	}
}

// regimeOfCrop is the inverse of Regime.Crop. Labels outside the closed set
// fall through to ModerateClimate.
func regimeOfCrop(c agronomy.Crop) Regime {
	switch c {
	case agronomy.Rice:
		return WaterLoving
	case agronomy.Mothbeans:
		return DroughtResistant
	default:
		return ModerateClimate
	}
}

// Crop returns the crop recommended under r.
func (r Regime) Crop() agronomy.Crop {
	return r.verdict().Crop
}

// ---------------------------------------------------------------------------
// Classification
// ---------------------------------------------------------------------------

// Verdict is the classifier output.
type Verdict struct {
	Crop        agronomy.Crop
	Confidence  float64 // 0..100
	Description string
}

// verdict holds the fixed per-branch confidence. A distance-to-boundary score
// could replace it without changing the [0,100] contract.
func (r Regime) verdict() Verdict {
	switch r {
	case WaterLoving:
		return Verdict{
			Crop:        agronomy.Rice,
			Confidence:  98.5,
			Description: "High water requirement, suitable for wetland conditions.",
		}
	case DroughtResistant:
		return Verdict{
			Crop:        agronomy.Mothbeans,
			Confidence:  94.2,
			Description: "Extremely drought-resistant, suitable for arid zones.",
		}
	default:
		return Verdict{
			Crop:        agronomy.Coffee,
			Confidence:  89.7,
			Description: "Requires moderate rainfall and tropical highland climate.",
		}
	}
}

// Classify maps a measurement set to exactly one crop of the closed set.
func Classify(m agronomy.MeasurementSet) Verdict {
	return RegimeOf(m.Sanitized()).verdict()
}
