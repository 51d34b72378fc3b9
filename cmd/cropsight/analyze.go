package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"cropsight/internal/agronomy"
	"cropsight/internal/persona"
	"cropsight/internal/tui"
)

// measurementFlags registers one string flag per feature. Values go through
// the same lenient parsing as the interactive inputs.
type measurementFlags map[agronomy.Feature]*string

func addMeasurementFlags(cmd *cobra.Command) measurementFlags {
	mf := make(measurementFlags, len(agronomy.Features))
	for _, f := range agronomy.Features {
		usage := f.Label()
		if u := f.Unit(); u != "" {
			usage += " (" + u + ")"
		}
		mf[f] = cmd.Flags().String(f.Key(), "", usage+"; defaults to the configured value")
	}
	return mf
}

// apply overlays the flags the user set on base.
func (mf measurementFlags) apply(cmd *cobra.Command, base agronomy.MeasurementSet) agronomy.MeasurementSet {
	ms := base
	for _, f := range agronomy.Features {
		if cmd.Flags().Changed(f.Key()) {
			ms = ms.With(f, agronomy.ParseValue(*mf[f]))
		}
	}
	return ms
}

// parsePersonas resolves --persona. Empty means the configured persona.
func parsePersonas(raw string, fallback persona.Kind) ([]persona.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return []persona.Kind{fallback}, nil
	case "all":
		return persona.Kinds, nil
	}
	k, ok := persona.ParseKind(raw)
	if !ok {
		return nil, eris.Errorf("analyze: unknown persona %q", raw)
	}
	return []persona.Kind{k}, nil
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var personaFlag string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one set of measurements and print the persona view",
		Long: `Analyze one set of measurements and print the recommendation as seen by
the chosen persona (operator, scientist, planner or all).

Measurements not given as flags come from the configured defaults.
`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().StringVar(&personaFlag, "persona", "", "operator, scientist, planner or all")
	mf := addMeasurementFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		kinds, err := parsePersonas(personaFlag, a.cfg.PersonaKind())
		if err != nil {
			return err
		}

		ctrl := a.newController(mf.apply(cmd, a.cfg.Defaults))
		if !ctrl.TriggerAnalysis() {
			return eris.New("analyze: analysis did not complete")
		}

		out := cmd.OutOrStdout()
		for i, k := range kinds {
			ctrl.SelectPersona(k)
			v, ok := ctrl.View()
			if !ok {
				return eris.New("analyze: no result to present")
			}
			th := tui.ThemeFor(k)
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, th.Banner.Render(k.Config().Title))
			fmt.Fprintln(out, tui.Render(v, th))
		}
		return nil
	}
	return cmd
}
