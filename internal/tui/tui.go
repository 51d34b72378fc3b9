// Package tui is the interactive terminal surface: measurement inputs, the
// analyze trigger and the persona-specific result panel.
//
// All session state lives in a session.Controller that is only touched from
// Update. The simulated inference latency runs as a tea.Cmd waiting on a
// cancellable context; its result comes back as a message and is re-checked
// by the controller before it is shown.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"cropsight/internal/agronomy"
	"cropsight/internal/persona"
	"cropsight/internal/session"
)

// inputOrder is the focus order of the measurement fields.
var inputOrder = []agronomy.Feature{
	agronomy.Rainfall, agronomy.Humidity,
	agronomy.Nitrogen, agronomy.Phosphorus, agronomy.Potassium,
	agronomy.Temperature, agronomy.PH,
}

// inputGroups lays the fields out the way the panel shows them. Values index
// inputOrder.
var inputGroups = []struct {
	title  string
	fields []int
}{
	{"Climate", []int{0, 1}},
	{"Soil (N-P-K)", []int{2, 3, 4}},
	{"Temperature & pH", []int{5, 6}},
}

var personaKeys = map[string]persona.Kind{
	"f1": persona.Operator,
	"f2": persona.Scientist,
	"f3": persona.Planner,
}

const resultWidth = 64

type analysisMsg struct{ done session.Completion }

type analysisCanceledMsg struct{}

// Options configures a Model.
type Options struct {
	Latency time.Duration
	Logger  *zap.Logger
}

// Model is the bubbletea model.
type Model struct {
	ctrl    *session.Controller
	logger  *zap.Logger
	latency time.Duration

	inputs  []textinput.Model
	focus   int
	spinner spinner.Model
	cancel  context.CancelFunc
}

// New returns a model driving ctrl. The inputs start from ctrl's measurements.
func New(ctrl *session.Controller, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ms := ctrl.Measurements()
	inputs := make([]textinput.Model, len(inputOrder))
	for i, f := range inputOrder {
		ti := textinput.New()
		ti.Placeholder = f.Label()
		ti.CharLimit = 16
		ti.Width = 10
		ti.Prompt = ""
		ti.SetValue(agronomy.FormatValue(ms.Get(f)))
		inputs[i] = ti
	}
	inputs[0].Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctrl:    ctrl,
		logger:  logger,
		latency: opts.Latency,
		inputs:  inputs,
		spinner: sp,
	}
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctrl *session.Controller, opts Options) error {
	p := tea.NewProgram(New(ctrl, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return eris.Wrap(err, "tui: run")
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelPending()
			return m, tea.Quit
		case "tab":
			return m.moveFocus(1)
		case "shift+tab":
			return m.moveFocus(-1)
		case "enter":
			return m.analyze()
		case "f1", "f2", "f3":
			m.ctrl.SelectPersona(personaKeys[msg.String()])
			return m, nil
		case "ctrl+r":
			m.ctrl.Reset()
			m.syncPending()
			return m, nil
		}

	case spinner.TickMsg:
		if m.ctrl.State() != session.Computing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case analysisMsg:
		if m.ctrl.Complete(msg.done) {
			m.cancelPending()
		}
		return m, nil

	case analysisCanceledMsg:
		m.logger.Debug("analysis wait canceled")
		return m, nil
	}

	return m.updateInput(msg)
}

func (m Model) moveFocus(delta int) (tea.Model, tea.Cmd) {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
	return m, textinput.Blink
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if after := m.inputs[m.focus].Value(); after != before {
		m.ctrl.SetMeasurement(inputOrder[m.focus], after)
		m.syncPending()
	}
	return m, cmd
}

func (m Model) analyze() (tea.Model, tea.Cmd) {
	p, ok := m.ctrl.Trigger()
	if !ok {
		return m, nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	return m, tea.Batch(m.spinner.Tick, analyzeCmd(ctx, p, m.latency))
}

// syncPending stops the latency wait once the controller has left Computing.
func (m *Model) syncPending() {
	if m.ctrl.State() != session.Computing {
		m.cancelPending()
	}
}

func (m *Model) cancelPending() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// analyzeCmd waits out the latency, then runs the engine on the snapshot.
func analyzeCmd(ctx context.Context, p *session.Pending, latency time.Duration) tea.Cmd {
	return func() tea.Msg {
		timer := time.NewTimer(latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return analysisCanceledMsg{}
		case <-timer.C:
		}
		return analysisMsg{done: p.Run()}
	}
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (m Model) View() string {
	th := ThemeFor(m.ctrl.Persona())
	cfg := th.Kind.Config()

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		th.Banner.Render(cfg.Title), " ", th.Muted.Render(cfg.Subtitle))
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		th.Panel.Render(m.inputPanel(th)), " ",
		th.Panel.Width(resultWidth).Render(m.resultPanel(th)))

	return strings.Join([]string{header, m.tabs(th), body, th.Muted.Render(helpText)}, "\n") + "\n"
}

const helpText = "tab/shift+tab focus • enter analyze • f1-f3 persona • ctrl+r reset • esc quit"

func (m Model) tabs(th Theme) string {
	parts := make([]string, len(persona.Kinds))
	for i, k := range persona.Kinds {
		label := fmt.Sprintf("F%d %s", i+1, k.Config().Tab)
		if k == th.Kind {
			parts[i] = th.Heading.Underline(true).Render(label)
		} else {
			parts[i] = th.Muted.Render(label)
		}
	}
	return strings.Join(parts, "   ")
}

func (m Model) inputPanel(th Theme) string {
	var b strings.Builder
	b.WriteString(th.Heading.Render(th.Kind.Config().InputTitle))
	b.WriteString("\n")
	for _, g := range inputGroups {
		fmt.Fprintf(&b, "\n%s\n", th.Muted.Render(strings.ToUpper(g.title)))
		for _, i := range g.fields {
			f := inputOrder[i]
			marker := "  "
			if i == m.focus {
				marker = th.Accent.Render("> ")
			}
			fmt.Fprintf(&b, "%s%-16s %s\n", marker, fieldLabel(f), m.inputs[i].View())
		}
	}

	fmt.Fprintf(&b, "\n[ %s ]\n", ButtonLabel(m.ctrl.State()))
	if m.ctrl.State() == session.Ready {
		b.WriteString(th.Muted.Render("Change inputs to re-run"))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) resultPanel(th Theme) string {
	switch m.ctrl.State() {
	case session.Computing:
		return m.spinner.View() + " Running AI Model Inference..."
	case session.Ready:
		v, ok := m.ctrl.View()
		if ok {
			return Render(v, th)
		}
	}
	return th.Muted.Render("Awaiting Input Data...")
}

// ButtonLabel is the trigger caption for a state.
func ButtonLabel(s session.State) string {
	switch s {
	case session.Computing:
		return "Processing..."
	case session.Ready:
		return "Analysis Ready"
	default:
		return "Analyze Data"
	}
}

func fieldLabel(f agronomy.Feature) string {
	if u := f.Unit(); u != "" {
		return fmt.Sprintf("%s (%s)", f.Label(), u)
	}
	return f.Label()
}
