package engine

import (
	"cropsight/internal/agronomy"
)

// Direction is the sign of a counterfactual change.
type Direction string

const (
	Increase Direction = "increase"
	Decrease Direction = "decrease"
)

// CounterfactualRecord names the single lever that flips the decision.
// Target never equals the crop the record was generated for.
type CounterfactualRecord struct {
	Target    agronomy.Crop
	Lever     agronomy.Feature
	Magnitude float64 // always >= 0, in the lever's unit
	Direction Direction
	RiskNote  string
}

// Change renders the magnitude with its unit, e.g. "70mm".
func (c CounterfactualRecord) Change() string {
	return agronomy.FormatValue(c.Magnitude) + c.Lever.Unit()
}

// Delta is the signed change.
func (c CounterfactualRecord) Delta() float64 {
	if c.Direction == Decrease {
		return -c.Magnitude
	}
	return c.Magnitude
}

func (r Regime) counterfactualProfile() CounterfactualRecord {
	switch r {
	case WaterLoving:
		return CounterfactualRecord{
			Target:    agronomy.Mothbeans,
			Lever:     agronomy.Rainfall,
			Magnitude: 70,
			Direction: Decrease,
			RiskNote:  "High Water Dependency",
		}
	case DroughtResistant:
		return CounterfactualRecord{
			Target:    agronomy.Coffee,
			Lever:     agronomy.Rainfall,
			Magnitude: 150,
			Direction: Increase,
			RiskNote:  "Drought Resilient",
		}
	default:
		return CounterfactualRecord{
			Target:    agronomy.Rice,
			Lever:     agronomy.Rainfall,
			Magnitude: 200,
			Direction: Increase,
			RiskNote:  "Moderate",
		}
	}
}

// Counterfactual returns the per-branch counterfactual for crop. If the
// profile would name crop itself, the nearest searched boundary to a
// different crop is used instead.
func Counterfactual(m agronomy.MeasurementSet, crop agronomy.Crop) CounterfactualRecord {
	cf := regimeOfCrop(crop).counterfactualProfile()
	// No shipped profile targets its own regime's crop, so the search only
	// runs if the profile table changes.
	if cf.Target != crop {
		return cf
	}
	return searchedCounterfactual(m, crop)
}

// searchedCounterfactual picks the smallest searched crossing that lands on
// a crop other than crop. With no crossing at all it names the first other
// crop with a zero change.
func searchedCounterfactual(m agronomy.MeasurementSet, crop agronomy.Crop) CounterfactualRecord {
	for _, b := range Boundaries(m) {
		if b.Target == crop {
			continue
		}
		return CounterfactualRecord{
			Target:    b.Target,
			Lever:     b.Feature,
			Magnitude: b.Magnitude(),
			Direction: b.Direction(),
			RiskNote:  "Nearest decision boundary",
		}
	}
	for _, c := range agronomy.Crops {
		if c != crop {
			return CounterfactualRecord{
				Target:    c,
				Lever:     agronomy.Rainfall,
				Direction: Increase,
				RiskNote:  "No reachable boundary",
			}
		}
	}
	return CounterfactualRecord{}
}
