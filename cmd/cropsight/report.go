package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cropsight/internal/engine"
	"cropsight/internal/export"
	"cropsight/internal/persona"
)

const renderWidth = 80

func newReportCmd(a *app) *cobra.Command {
	var outDir, page string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a markdown report of one analysis",
		Long: `Analyze one set of measurements and write a markdown report: an index
page, one page per persona and the decision boundaries, each with YAML
frontmatter.

--render prints one page to the terminal: a persona name (operator,
scientist, planner) or a page path such as index or boundaries.
`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default from config report.dir)")
	cmd.Flags().StringVar(&page, "render", "", "page to print after writing")
	mf := addMeasurementFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if outDir == "" {
			outDir = a.cfg.Report.Dir
		}
		res := engine.Analyze(mf.apply(cmd, a.cfg.Defaults))
		r, err := export.GenerateReport(res)
		if err != nil {
			return err
		}
		if err := export.WriteReport(r, outDir); err != nil {
			return err
		}
		a.logger.Info("report written", zap.String("dir", outDir), zap.Int("pages", len(r.Paths())))
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d pages to %s\n", len(r.Paths()), outDir)

		if page == "" {
			return nil
		}
		content, ok := r.Page(pagePath(page))
		if !ok {
			return eris.Errorf("report: no page %q", page)
		}
		_, body, err := export.ParsePage([]byte(content))
		if err != nil {
			return err
		}
		rendered, err := renderMarkdown(body)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	}
	return cmd
}

// pagePath maps a --render argument to a report path.
func pagePath(name string) string {
	if k, ok := persona.ParseKind(name); ok {
		return export.PersonaPath(k)
	}
	if !strings.HasSuffix(name, ".md") {
		name += ".md"
	}
	return name
}

func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(renderWidth),
	)
	if err != nil {
		return "", eris.Wrap(err, "report: init renderer")
	}
	out, err := r.Render(md)
	if err != nil {
		return "", eris.Wrap(err, "report: render")
	}
	return out, nil
}
