package engine

import "cropsight/internal/agronomy"

// RiskTag is the coarse regional-risk category shown to planners.
type RiskTag string

const (
	FloodProne        RiskTag = "Flood Prone Region"
	DroughtVulnerable RiskTag = "Drought Vulnerable Zone"
	StableProduction  RiskTag = "Stable Production Zone"
)

func (t RiskTag) String() string { return string(t) }

// Narrative is the planner-facing explanation of the tag.
func (t RiskTag) Narrative() string {
	switch t {
	case FloodProne:
		return "High dependency on consistent rainfall makes this monoculture strategy risky for long-term food security."
	case DroughtVulnerable:
		return "Low and erratic rainfall leaves yields exposed to prolonged dry spells; a diversified portfolio limits the exposure."
	default:
		return "Moderate rainfall supports steady output; monitor for drift toward either climatic extreme."
	}
}

// Risk returns the risk tag for crop. Total over every label.
func Risk(m agronomy.MeasurementSet, crop agronomy.Crop) RiskTag {
	switch regimeOfCrop(crop) {
	case WaterLoving:
		return FloodProne
	case DroughtResistant:
		return DroughtVulnerable
	default:
		return StableProduction
	}
}
