// Package persona maps one immutable engine.Result onto three audience
// specific view models: the field operator, the domain scientist and the
// regional planner.
//
// Presenters are stateless. They select, format and template Result fields;
// they never call back into the engine and never alter the Result.
package persona

import (
	"fmt"
	"strings"

	"cropsight/internal/agronomy"
	"cropsight/internal/engine"
)

// ---------------------------------------------------------------------------
// Kinds
// ---------------------------------------------------------------------------

// Kind selects one of the three presentation contracts.
type Kind int

const (
	Operator Kind = iota
	Scientist
	Planner
)

// Kinds lists every persona in tab order.
var Kinds = []Kind{Operator, Scientist, Planner}

func (k Kind) String() string {
	switch k {
	case Scientist:
		return "scientist"
	case Planner:
		return "planner"
	default:
		return "operator"
	}
}

// ParseKind resolves a persona name. The older role names (farmer,
// agronomist, policymaker) are accepted as aliases.
func ParseKind(name string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "operator", "farmer":
		return Operator, true
	case "scientist", "agronomist":
		return Scientist, true
	case "planner", "policymaker":
		return Planner, true
	}
	return Operator, false
}

// Config is the fixed, per-persona copy and accent used by every surface.
type Config struct {
	Accent              string // hex colour
	Tab                 string
	Title               string
	Subtitle            string
	InputTitle          string
	ResultLabel         string
	AttributionTitle    string
	CounterfactualTitle string
}

// Config returns the fixed configuration for k.
func (k Kind) Config() Config {
	switch k {
	case Scientist:
		return Config{
			Accent:              "#8b5cf6",
			Tab:                 "Scientist",
			Title:               "Domain Scientist View",
			Subtitle:            "Model Validation & Diagnostics",
			InputTitle:          "Sample Parameters (Test)",
			ResultLabel:         "Model Prediction",
			AttributionTitle:    "Feature Importance (Local Attribution)",
			CounterfactualTitle: "Sensitivity Analysis (Counterfactuals)",
		}
	case Planner:
		return Config{
			Accent:              "#3b82f6",
			Tab:                 "Planner",
			Title:               "Regional Planner View",
			Subtitle:            "Regional Strategy & Food Security",
			InputTitle:          "Regional Climate Simulation",
			ResultLabel:         "Dominant Crop Suitability",
			AttributionTitle:    "Regional Risk Drivers",
			CounterfactualTitle: "Climate Resilience Test",
		}
	default:
		return Config{
			Accent:              "#10b981",
			Tab:                 "Operator",
			Title:               "Field Operator View",
			Subtitle:            "Field Operations & Planning",
			InputTitle:          "My Field Conditions",
			ResultLabel:         "Recommended for You",
			AttributionTitle:    "Key Influencing Factors",
			CounterfactualTitle: "What-If Analysis (Risk Check)",
		}
	}
}

// ---------------------------------------------------------------------------
// Views
// ---------------------------------------------------------------------------

// Header is the part of every view shared across personas.
type Header struct {
	Kind        Kind
	Title       string
	Subtitle    string
	ResultLabel string
	Crop        agronomy.Crop
	Description string
}

// View is a render-ready view model. Concrete types are *OperatorView,
// *ScientistView and *PlannerView.
type View interface {
	Persona() Kind
	Head() Header
}

// Presenter turns a Result into the view model for one persona.
type Presenter interface {
	Kind() Kind
	Present(res engine.Result, ms agronomy.MeasurementSet) View
}

// For returns the presenter for k.
func For(k Kind) Presenter {
	switch k {
	case Scientist:
		return ScientistPresenter{}
	case Planner:
		return PlannerPresenter{}
	default:
		return OperatorPresenter{}
	}
}

// Present is shorthand for For(k).Present(res, ms).
func Present(k Kind, res engine.Result, ms agronomy.MeasurementSet) View {
	return For(k).Present(res, ms)
}

func header(k Kind, res engine.Result) Header {
	cfg := k.Config()
	return Header{
		Kind:        k,
		Title:       cfg.Title,
		Subtitle:    cfg.Subtitle,
		ResultLabel: cfg.ResultLabel,
		Crop:        res.Crop(),
		Description: res.Description(),
	}
}

// measured renders a feature value with its unit, e.g. "202.9mm".
func measured(ms agronomy.MeasurementSet, f agronomy.Feature) string {
	return fmt.Sprintf("%s%s", agronomy.FormatValue(ms.Get(f)), f.Unit())
}

// lowerFirst lowercases a feature label for use mid-sentence ("rainfall"),
// leaving "pH" alone.
func lowerFirst(s string) string {
	if s == "" || s == "pH" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
