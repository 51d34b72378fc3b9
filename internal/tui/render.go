package tui

// render.go turns persona views into terminal text. The TUI result panel and
// the analyze command share it.

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cropsight/internal/engine"
	"cropsight/internal/persona"
)

const (
	negativeColor = lipgloss.Color("#ef4444")
	mutedColor    = lipgloss.Color("#94a3b8")
	warnColor     = lipgloss.Color("#d97706")

	barWidth   = 24
	labelWidth = 10
)

// Theme is the lipgloss palette for one persona.
type Theme struct {
	Kind     persona.Kind
	Accent   lipgloss.Style
	Banner   lipgloss.Style
	Heading  lipgloss.Style
	Crop     lipgloss.Style
	Muted    lipgloss.Style
	Negative lipgloss.Style
	Warn     lipgloss.Style
	Code     lipgloss.Style
	Panel    lipgloss.Style
}

// ThemeFor builds the palette from the persona's accent colour.
func ThemeFor(k persona.Kind) Theme {
	accent := lipgloss.Color(k.Config().Accent)
	return Theme{
		Kind:     k,
		Accent:   lipgloss.NewStyle().Foreground(accent),
		Banner:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(accent).Padding(0, 1),
		Heading:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		Crop:     lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(mutedColor),
		Negative: lipgloss.NewStyle().Foreground(negativeColor),
		Warn:     lipgloss.NewStyle().Bold(true).Foreground(warnColor),
		Code:     lipgloss.NewStyle().Foreground(mutedColor).PaddingLeft(2),
		Panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
	}
}

// Render draws any persona view.
func Render(v persona.View, th Theme) string {
	var b strings.Builder
	b.WriteString(renderHeader(v.Head(), th))
	switch v := v.(type) {
	case *persona.OperatorView:
		renderOperator(&b, v, th)
	case *persona.ScientistView:
		renderScientist(&b, v, th)
	case *persona.PlannerView:
		renderPlanner(&b, v, th)
	default:
		fmt.Fprintf(&b, "\n%s\n", th.Muted.Render("no renderer for "+v.Persona().String()))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderHeader(h persona.Header, th Theme) string {
	var b strings.Builder
	b.WriteString(th.Heading.Render(strings.ToUpper(h.ResultLabel)))
	b.WriteString("\n")
	b.WriteString(th.Crop.Render(string(h.Crop)))
	b.WriteString("\n")
	b.WriteString(th.Muted.Render(h.Description))
	b.WriteString("\n")
	return b.String()
}

func renderOperator(b *strings.Builder, v *persona.OperatorView, th Theme) {
	cfg := v.Persona().Config()
	if v.Readiness.Ready {
		fmt.Fprintf(b, "%s\n", th.Accent.Render("✔ "+v.Readiness.Label))
	} else {
		fmt.Fprintf(b, "%s\n", th.Warn.Render("! "+v.Readiness.Label))
	}

	fmt.Fprintf(b, "\n%s\n", th.Heading.Render(cfg.AttributionTitle))
	fmt.Fprintf(b, "%s\n", v.Why)
	for _, g := range v.Gauges {
		fill := int(math.Round(g.Strength * barWidth))
		bar := th.Accent.Render(strings.Repeat("█", fill))
		if g.Rating == "Poor" {
			bar = th.Negative.Render(strings.Repeat("█", fill))
		}
		fmt.Fprintf(b, "%-*s %s%s %s\n", labelWidth, g.Label, bar, strings.Repeat("░", barWidth-fill), g.Rating)
	}

	fmt.Fprintf(b, "\n%s\n", th.Heading.Render(cfg.CounterfactualTitle))
	fmt.Fprintf(b, "%s\n", th.Warn.Render("⚠ "+v.Callout.Heading))
	fmt.Fprintf(b, "%q\n", v.Callout.Question)
	fmt.Fprintf(b, "%s %s\n", v.Callout.Prompt, th.Crop.Render("→ "+string(v.Callout.Target)))
	fmt.Fprintf(b, "%s\n", th.Muted.Render(v.Callout.Reason))
}

func renderScientist(b *strings.Builder, v *persona.ScientistView, th Theme) {
	cfg := v.Persona().Config()
	fmt.Fprintf(b, "Confidence Score %s\n", th.Heading.Render(fmt.Sprintf("%.1f%%", v.Confidence)))

	fmt.Fprintf(b, "\n%s\n", th.Heading.Render(v.ChartTitle))
	b.WriteString(BarChart(v.Bars, th))
	fmt.Fprintf(b, "%s\n", th.Muted.Render(v.Caption))

	fmt.Fprintf(b, "\n%s\n", th.Heading.Render(cfg.CounterfactualTitle))
	for _, line := range v.Sensitivity.Lines() {
		fmt.Fprintf(b, "%s\n", th.Code.Render(line))
	}
	if len(v.Boundaries) > 0 {
		fmt.Fprintf(b, "\n%s\n", th.Heading.Render("Decision Boundaries"))
		for _, bd := range v.Boundaries {
			fmt.Fprintf(b, "%s\n", th.Code.Render(boundaryLine(bd)))
		}
	}
}

func renderPlanner(b *strings.Builder, v *persona.PlannerView, th Theme) {
	cfg := v.Persona().Config()
	fmt.Fprintf(b, "Confidence Score %s\n", th.Heading.Render(fmt.Sprintf("%.1f%%", v.Confidence)))

	fmt.Fprintf(b, "\n%s\n", th.Heading.Render(v.RiskTitle))
	risk := th.Accent
	if v.Risk != engine.StableProduction {
		risk = th.Warn
	}
	fmt.Fprintf(b, "%s\n", risk.Render(v.Risk.String()))
	fmt.Fprintf(b, "%s\n", v.RiskNarrative)

	fmt.Fprintf(b, "\n%s\n", th.Heading.Render(cfg.CounterfactualTitle))
	for i, a := range v.Actions {
		fmt.Fprintf(b, "%d. %s\n", i+1, a)
	}
}

// BarChart draws signed values as horizontal bars scaled to the largest
// magnitude. Negative bars use the negative colour.
func BarChart(bars []persona.Bar, th Theme) string {
	peak := 0.0
	for _, bar := range bars {
		peak = math.Max(peak, math.Abs(bar.Value))
	}
	var b strings.Builder
	for _, bar := range bars {
		fill := 0
		if peak > 0 {
			fill = int(math.Round(math.Abs(bar.Value) / peak * barWidth))
		}
		style := th.Accent
		if !bar.Positive() {
			style = th.Negative
		}
		fmt.Fprintf(&b, "%-*s %s%s %+.2f\n", labelWidth, bar.Label,
			style.Render(strings.Repeat("█", fill)), strings.Repeat(" ", barWidth-fill), bar.Value)
	}
	return b.String()
}

func boundaryLine(bd engine.Boundary) string {
	return fmt.Sprintf("%-*s %s %.4g%s -> %s", labelWidth, bd.Feature.Label(), bd.Direction(),
		bd.Magnitude(), bd.Feature.Unit(), bd.Target)
}
