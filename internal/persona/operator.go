package persona

import (
	"fmt"
	"math"

	"cropsight/internal/agronomy"
	"cropsight/internal/engine"
)

// suitableAbove is the confidence at which operators are told the crop is a
// safe choice.
const suitableAbove = 80.0

// gaugeCount is how many attribution entries the operator sees as gauges.
const gaugeCount = 3

// Readiness is the operator's binary go/no-go signal.
type Readiness struct {
	Ready bool
	Label string
}

// Gauge is a simplified attribution bar: strength relative to the strongest
// factor, plus a one-word rating.
type Gauge struct {
	Label    string
	Strength float64 // 0..1
	Rating   string
}

// Callout is the actionable what-if box.
type Callout struct {
	Heading  string
	Question string
	Prompt   string
	Target   agronomy.Crop
	Reason   string
}

// OperatorView keeps the message short and action oriented.
type OperatorView struct {
	Header
	Readiness Readiness
	Why       string
	Gauges    []Gauge
	Callout   Callout
}

func (v *OperatorView) Persona() Kind { return Operator }
func (v *OperatorView) Head() Header { return v.Header }

// OperatorPresenter builds OperatorView.
type OperatorPresenter struct{}

func (OperatorPresenter) Kind() Kind { return Operator }

func (OperatorPresenter) Present(res engine.Result, ms agronomy.MeasurementSet) View {
	entries := res.Attribution()
	cf := res.Counterfactual()

	v := &OperatorView{
		Header:    header(Operator, res),
		Readiness: readiness(res.Confidence()),
		Why:       whySentence(entries, ms, res.Crop()),
		Gauges:    gauges(entries),
		Callout: Callout{
			Heading:  "Warning: Weather Change",
			Question: whatIfQuestion(cf),
			Prompt: fmt.Sprintf("If %s %ss by %s, you should switch to:",
				lowerFirst(cf.Lever.Label()), cf.Direction, cf.Change()),
			Target: cf.Target,
			Reason: "Reason: " + cf.RiskNote + ".",
		},
	}
	return v
}

func readiness(confidence float64) Readiness {
	if confidence >= suitableAbove {
		return Readiness{Ready: true, Label: "High Suitability"}
	}
	return Readiness{Ready: false, Label: "Check Conditions"}
}

// whySentence names the two strongest drivers with the operator's own values.
func whySentence(entries []engine.AttributionEntry, ms agronomy.MeasurementSet, crop agronomy.Crop) string {
	switch len(entries) {
	case 0:
		return fmt.Sprintf("Based on your field data, %s is recommended.", crop)
	case 1:
		f := entries[0].Feature
		return fmt.Sprintf("Based on your field data, %s (%s) is the main reason for recommending %s.",
			f.Label(), measured(ms, f), crop)
	}
	a, b := entries[0].Feature, entries[1].Feature
	return fmt.Sprintf("Based on your field data, %s (%s) and %s (%s) are the main reasons for recommending %s.",
		a.Label(), measured(ms, a), b.Label(), measured(ms, b), crop)
}

func gauges(entries []engine.AttributionEntry) []Gauge {
	if len(entries) == 0 {
		return nil
	}
	peak := math.Abs(entries[0].Weight)
	n := min(gaugeCount, len(entries))
	out := make([]Gauge, 0, n)
	for _, e := range entries[:n] {
		strength := 0.0
		if peak > 0 {
			strength = math.Abs(e.Weight) / peak
		}
		out = append(out, Gauge{Label: e.Label(), Strength: strength, Rating: rating(e, strength)})
	}
	return out
}

func rating(e engine.AttributionEntry, strength float64) string {
	switch {
	case e.Impact == engine.Negative:
		return "Poor"
	case strength >= 0.8:
		return "Good"
	case strength >= 0.4:
		return "OK"
	default:
		return "Fair"
	}
}

func whatIfQuestion(cf engine.CounterfactualRecord) string {
	if cf.Lever == agronomy.Rainfall {
		if cf.Direction == engine.Decrease {
			return "What should I do if the rain stops?"
		}
		return "What should I do if the rains get heavier?"
	}
	return fmt.Sprintf("What should I do if %s changes?", lowerFirst(cf.Lever.Label()))
}
