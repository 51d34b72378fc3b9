package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"cropsight/internal/agronomy"
	"cropsight/internal/engine"
	"cropsight/internal/survey"
)

func newSurveyCmd(a *app) *cobra.Command {
	var (
		workers int
		detail  bool
	)
	cmd := &cobra.Command{
		Use:   "survey <file.csv>",
		Short: "Summarize recommendations over a regional sample file",
		Long: `Analyze every row of a CSV file with the columns
N,P,K,temperature,humidity,ph,rainfall and an optional label, then print how
the region splits across crops and risk tags. When rows are labeled, the
share of labels matching the recommendation is shown too.
`,
		Args: cobra.ExactArgs(1),
	}
	cmd.Flags().IntVar(&workers, "workers", survey.DefaultWorkers, "concurrent analyses")
	cmd.Flags().BoolVar(&detail, "detail", false, "print one row per sample")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		samples, err := survey.LoadFile(args[0])
		if err != nil {
			return err
		}
		outcomes, err := survey.Run(cmd.Context(), engine.Engine{}, samples, workers, a.logger)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if detail {
			fmt.Fprintln(out, detailTable(outcomes))
		}
		s := survey.Summarize(outcomes)
		fmt.Fprintln(out, summaryTable(s))
		fmt.Fprintf(out, "%d samples\n", s.Total)
		if s.Labeled > 0 {
			fmt.Fprintf(out, "label agreement: %d/%d (%.0f%%)\n", s.Agreed, s.Labeled, s.Agreement()*100)
		}
		return nil
	}
	return cmd
}

func summaryTable(s survey.Summary) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Crop", "Samples", "Share", "Risk")
	for _, c := range agronomy.Crops {
		t.Row(string(c), strconv.Itoa(s.Crops[c]), fmt.Sprintf("%.0f%%", s.Share(c)*100),
			engine.Risk(agronomy.MeasurementSet{}, c).String())
	}
	return t.String()
}

func detailTable(outcomes []survey.Outcome) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Line", "Crop", "Confidence", "Risk", "Label")
	for _, o := range outcomes {
		t.Row(strconv.Itoa(o.Sample.Line), o.Result.Crop().String(),
			fmt.Sprintf("%.1f%%", o.Result.Confidence()), o.Result.Risk().String(), o.Sample.Label)
	}
	return t.String()
}
