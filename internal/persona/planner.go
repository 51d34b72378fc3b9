package persona

import (
	"fmt"

	"cropsight/internal/agronomy"
	"cropsight/internal/engine"
)

// Strategic action templates. The first takes the counterfactual target, the
// second the recommended crop.
const (
	bufferCropAction = "Subsidize %s seeds as a drought buffer crop."
	irrigationAction = "Invest in irrigation infrastructure if aiming to maintain %s production."
)

// PlannerView frames the result as regional risk and policy.
type PlannerView struct {
	Header
	Confidence    float64
	RiskTitle     string
	Risk          engine.RiskTag
	RiskNarrative string
	Actions       []string
}

func (v *PlannerView) Persona() Kind { return Planner }
func (v *PlannerView) Head() Header { return v.Header }

// PlannerPresenter builds PlannerView.
type PlannerPresenter struct{}

func (PlannerPresenter) Kind() Kind { return Planner }

func (PlannerPresenter) Present(res engine.Result, _ agronomy.MeasurementSet) View {
	return &PlannerView{
		Header:        header(Planner, res),
		Confidence:    res.Confidence(),
		RiskTitle:     "Regional Risk Assessment",
		Risk:          res.Risk(),
		RiskNarrative: res.Risk().Narrative(),
		Actions: []string{
			fmt.Sprintf(bufferCropAction, res.Counterfactual().Target),
			fmt.Sprintf(irrigationAction, res.Crop()),
		},
	}
}
