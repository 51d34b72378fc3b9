package export

// export.go renders one analysis as a markdown vault.
//
// Vault layout:
//   index.md               - inputs, recommendation, links to persona pages
//   personas/<persona>.md  - one per persona view
//   boundaries.md          - searched decision boundaries
//
// Every page starts with YAML frontmatter (see frontmatter.go).

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"cropsight/internal/agronomy"
	"cropsight/internal/engine"
	"cropsight/internal/persona"
)

// Report holds pre-generated page content (path → markdown).
// Paths are relative to the output directory, using forward slashes.
type Report struct {
	pages map[string]string
}

// Paths returns the page paths in sorted order.
func (r *Report) Paths() []string {
	paths := make([]string, 0, len(r.pages))
	for p := range r.pages {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Page returns the content of one page.
func (r *Report) Page(path string) (string, bool) {
	s, ok := r.pages[path]
	return s, ok
}

// PersonaPath is the report path of the page for k.
func PersonaPath(k persona.Kind) string {
	return "personas/" + k.String() + ".md"
}

// GenerateReport builds all pages for res. No files are written, and the
// output depends only on res.
func GenerateReport(res engine.Result) (*Report, error) {
	if res.IsZero() {
		return nil, eris.New("export: empty result")
	}
	pages := make(map[string]string)

	index, err := buildIndexPage(res)
	if err != nil {
		return nil, err
	}
	pages["index.md"] = index

	for _, k := range persona.Kinds {
		page, err := buildPersonaPage(persona.Present(k, res, res.Inputs()), res)
		if err != nil {
			return nil, err
		}
		pages[PersonaPath(k)] = page
	}

	bounds, err := buildBoundaryPage(res)
	if err != nil {
		return nil, err
	}
	pages["boundaries.md"] = bounds

	return &Report{pages: pages}, nil
}

// WriteReport writes all pages in r to outputDir, in sorted path order.
// personas/ is always created.
func WriteReport(r *Report, outputDir string) error {
	if err := os.MkdirAll(filepath.Join(outputDir, "personas"), 0o755); err != nil {
		return eris.Wrapf(err, "export: mkdir %s", outputDir)
	}
	for _, p := range r.Paths() {
		abs := filepath.Join(outputDir, filepath.FromSlash(p))
		if err := writeNote(abs, r.pages[p]); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Page builders
// ---------------------------------------------------------------------------

func baseMeta(res engine.Result, title string, tags ...string) PageMeta {
	return PageMeta{
		Title:      title,
		Crop:       res.Crop().String(),
		Confidence: res.Confidence(),
		Risk:       res.Risk().String(),
		Tags:       append([]string{"cropsight", "crop/" + strings.ToLower(res.Crop().String())}, tags...),
	}
}

// buildIndexPage builds index.md: the measured inputs and the verdict.
func buildIndexPage(res engine.Result) (string, error) {
	in := res.Inputs()
	meta := baseMeta(res, "Crop Suitability Report", "cropsight/index")
	meta.Inputs = &in

	var b strings.Builder
	b.WriteString("# Crop Suitability Report\n\n")
	b.WriteString("## Inputs\n\n")
	b.WriteString("| Measurement | Value |\n")
	b.WriteString("|-------------|-------|\n")
	for _, f := range agronomy.Features {
		b.WriteString(fmt.Sprintf("| %s | %s%s |\n", f.Label(), agronomy.FormatValue(in.Get(f)), f.Unit()))
	}
	b.WriteString("\n## Recommendation\n\n")
	b.WriteString(fmt.Sprintf("- **Crop**: %s\n", res.Crop()))
	b.WriteString(fmt.Sprintf("- **Confidence**: %.1f%%\n", res.Confidence()))
	b.WriteString(fmt.Sprintf("- **Regime**: %s\n", res.Regime()))
	b.WriteString(fmt.Sprintf("- **Risk**: %s\n\n", res.Risk()))
	b.WriteString(res.Description() + "\n\n")
	b.WriteString("## Views\n\n")
	for _, k := range persona.Kinds {
		b.WriteString(fmt.Sprintf("- [[personas/%s|%s]]\n", k, k.Config().Title))
	}
	b.WriteString("- [[boundaries|Decision Boundaries]]\n")

	return withFrontmatter(meta, b.String())
}

// buildPersonaPage builds personas/<persona>.md from an already presented view.
func buildPersonaPage(v persona.View, res engine.Result) (string, error) {
	h := v.Head()
	cfg := v.Persona().Config()
	meta := baseMeta(res, h.Title, "persona/"+v.Persona().String())
	meta.Persona = v.Persona().String()

	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %s\n\n", h.Title))
	b.WriteString(fmt.Sprintf("_%s_\n\n", h.Subtitle))
	b.WriteString(fmt.Sprintf("## %s\n\n", h.ResultLabel))
	b.WriteString(fmt.Sprintf("**%s**\n\n", h.Crop))
	b.WriteString(h.Description + "\n\n")

	switch v := v.(type) {
	case *persona.OperatorView:
		b.WriteString(fmt.Sprintf("**%s**\n\n", v.Readiness.Label))
		b.WriteString(fmt.Sprintf("## %s\n\n", cfg.AttributionTitle))
		b.WriteString(v.Why + "\n\n")
		b.WriteString("| Factor | Strength | Rating |\n")
		b.WriteString("|--------|----------|--------|\n")
		for _, g := range v.Gauges {
			b.WriteString(fmt.Sprintf("| %s | %.0f%% | %s |\n", g.Label, g.Strength*100, g.Rating))
		}
		b.WriteString(fmt.Sprintf("\n## %s\n\n", cfg.CounterfactualTitle))
		b.WriteString(fmt.Sprintf("> **%s**\n>\n", v.Callout.Heading))
		b.WriteString(fmt.Sprintf("> %q\n>\n", v.Callout.Question))
		b.WriteString(fmt.Sprintf("> %s **%s**\n>\n", v.Callout.Prompt, v.Callout.Target))
		b.WriteString(fmt.Sprintf("> %s\n", v.Callout.Reason))

	case *persona.ScientistView:
		b.WriteString(fmt.Sprintf("**Confidence Score**: %.1f%%\n\n", v.Confidence))
		b.WriteString(fmt.Sprintf("## %s\n\n", v.ChartTitle))
		b.WriteString("| Feature | Attribution |\n")
		b.WriteString("|---------|-------------|\n")
		for _, bar := range v.Bars {
			b.WriteString(fmt.Sprintf("| %s | %+.2f |\n", bar.Label, bar.Value))
		}
		b.WriteString("\n" + v.Caption + "\n\n")
		b.WriteString(fmt.Sprintf("## %s\n\n", cfg.CounterfactualTitle))
		b.WriteString("```\n")
		for _, line := range v.Sensitivity.Lines() {
			b.WriteString(line + "\n")
		}
		b.WriteString("```\n")

	case *persona.PlannerView:
		b.WriteString(fmt.Sprintf("**Confidence Score**: %.1f%%\n\n", v.Confidence))
		b.WriteString(fmt.Sprintf("## %s\n\n", v.RiskTitle))
		b.WriteString(fmt.Sprintf("**%s**\n\n", v.Risk))
		b.WriteString(v.RiskNarrative + "\n\n")
		b.WriteString(fmt.Sprintf("## %s\n\n", cfg.CounterfactualTitle))
		for i, a := range v.Actions {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, a))
		}

	default:
		return "", eris.Errorf("export: no page layout for persona %s", v.Persona())
	}

	return withFrontmatter(meta, b.String())
}

// buildBoundaryPage builds boundaries.md: nearest flip per feature.
func buildBoundaryPage(res engine.Result) (string, error) {
	meta := baseMeta(res, "Decision Boundaries", "cropsight/boundaries")

	var b strings.Builder
	b.WriteString("# Decision Boundaries\n\n")
	bounds := res.Boundaries()
	if len(bounds) == 0 {
		b.WriteString("No single-feature change within range alters the recommendation.\n")
		return withFrontmatter(meta, b.String())
	}
	b.WriteString(fmt.Sprintf("Holding every other measurement fixed, these changes move the recommendation away from %s.\n\n", res.Crop()))
	b.WriteString("| Feature | Change | Becomes |\n")
	b.WriteString("|---------|--------|---------|\n")
	for _, bd := range bounds {
		b.WriteString(fmt.Sprintf("| %s | %s %.4g%s | %s |\n",
			bd.Feature.Label(), bd.Direction(), bd.Magnitude(), bd.Feature.Unit(), bd.Target))
	}
	return withFrontmatter(meta, b.String())
}

// writeNote writes content to path, creating parent directories as needed.
func writeNote(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "export: mkdir %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	return nil
}
