package engine

import "cropsight/internal/agronomy"

// Result is the immutable recommendation produced by one analysis. It is only
// built by Analyze; accessors hand out copies so holders cannot alter it.
type Result struct {
	inputs         agronomy.MeasurementSet
	regime         Regime
	verdict        Verdict
	attribution    []AttributionEntry
	counterfactual CounterfactualRecord
	risk           RiskTag
	boundaries     []Boundary
}

// Analyze runs classifier → attribution → counterfactual → risk, then the
// per-feature boundary search. The classification feeds everything after it,
// so the parts always agree with it.
func Analyze(m agronomy.MeasurementSet) Result {
	m = m.Sanitized()
	regime := RegimeOf(m)
	v := regime.verdict()
	return Result{
		inputs:         m,
		regime:         regime,
		verdict:        v,
		attribution:    Explain(m, v.Crop),
		counterfactual: Counterfactual(m, v.Crop),
		risk:           Risk(m, v.Crop),
		boundaries:     Boundaries(m),
	}
}

// Engine adapts Analyze to an interface value.
type Engine struct{}

// Analyze implements the analyzer contract consumed by the session package.
func (Engine) Analyze(m agronomy.MeasurementSet) Result { return Analyze(m) }

// IsZero reports whether r was never produced by Analyze.
func (r Result) IsZero() bool { return r.verdict.Crop == "" }

func (r Result) Crop() agronomy.Crop { return r.verdict.Crop }
func (r Result) Confidence() float64 { return r.verdict.Confidence }
func (r Result) Description() string { return r.verdict.Description }
func (r Result) Regime() Regime { return r.regime }
func (r Result) Risk() RiskTag { return r.risk }
func (r Result) Counterfactual() CounterfactualRecord { return r.counterfactual }

// Inputs is the measurement set the result was computed from.
func (r Result) Inputs() agronomy.MeasurementSet { return r.inputs }

// Attribution returns a copy of the ranked attribution entries.
func (r Result) Attribution() []AttributionEntry {
	out := make([]AttributionEntry, len(r.attribution))
	copy(out, r.attribution)
	return out
}

// Boundaries returns a copy of the searched decision boundaries, nearest
// first.
func (r Result) Boundaries() []Boundary {
	out := make([]Boundary, len(r.boundaries))
	copy(out, r.boundaries)
	return out
}
