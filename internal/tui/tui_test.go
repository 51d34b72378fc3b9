package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"cropsight/internal/agronomy"
	"cropsight/internal/engine"
	"cropsight/internal/persona"
	"cropsight/internal/session"
)

func newTestModel(t *testing.T, latency time.Duration) (Model, *session.Controller) {
	t.Helper()
	ctrl := session.New(engine.Engine{}, agronomy.DefaultMeasurements())
	return New(ctrl, Options{Latency: latency}), ctrl
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func typed(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

// collect runs cmd to completion, expanding batches.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, collect(c)...)
	}
	return out
}

// analyze presses enter and feeds the analysis result back.
func analyze(t *testing.T, m Model) Model {
	t.Helper()
	m, cmd := send(t, m, key(tea.KeyEnter))
	for _, msg := range collect(cmd) {
		if done, ok := msg.(analysisMsg); ok {
			m, _ = send(t, m, done)
		}
	}
	return m
}

func TestView_Idle(t *testing.T) {
	m, _ := newTestModel(t, 0)
	out := m.View()
	assert.Contains(t, out, "Field Operator View")
	assert.Contains(t, out, "My Field Conditions")
	assert.Contains(t, out, "Awaiting Input Data...")
	assert.Contains(t, out, "Analyze Data")
	assert.Contains(t, out, "202.9")
}

func TestEnter_ComputesThenReady(t *testing.T) {
	m, ctrl := newTestModel(t, 0)

	m, cmd := send(t, m, key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, session.Computing, ctrl.State())
	assert.Contains(t, m.View(), "Processing...")
	assert.Contains(t, m.View(), "Running AI Model Inference...")

	var done *analysisMsg
	for _, msg := range collect(cmd) {
		if d, ok := msg.(analysisMsg); ok {
			done = &d
		}
	}
	require.NotNil(t, done)

	m, _ = send(t, m, *done)
	assert.Equal(t, session.Ready, ctrl.State())
	out := m.View()
	assert.Contains(t, out, "Analysis Ready")
	assert.Contains(t, out, "Rice")
	assert.Contains(t, out, "High Suitability")
	assert.Contains(t, out, "Change inputs to re-run")
}

func TestEnter_IgnoredWhileComputing(t *testing.T) {
	m, ctrl := newTestModel(t, time.Hour)
	m, first := send(t, m, key(tea.KeyEnter))
	require.NotNil(t, first)

	m, second := send(t, m, key(tea.KeyEnter))
	assert.Nil(t, second)
	assert.Equal(t, session.Computing, ctrl.State())

	_, quit := send(t, m, key(tea.KeyEsc))
	require.NotNil(t, quit)
}

func TestEdit_CancelsInFlight(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	m, ctrl := newTestModel(t, time.Hour)
	m, cmd := send(t, m, key(tea.KeyEnter))
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)

	msgs := make(chan tea.Msg, len(batch))
	for _, c := range batch {
		go func() { msgs <- c() }()
	}

	m, _ = send(t, m, typed("1"))
	assert.Equal(t, session.Idle, ctrl.State())
	assert.Equal(t, 202.91, ctrl.Measurements().Rainfall)

	var canceled bool
	for range batch {
		select {
		case msg := <-msgs:
			if _, ok := msg.(analysisCanceledMsg); ok {
				canceled = true
			}
			m, _ = send(t, m, msg)
		case <-time.After(5 * time.Second):
			t.Fatal("latency wait was not canceled")
		}
	}
	assert.True(t, canceled)
	assert.Equal(t, session.Idle, ctrl.State())
	assert.Contains(t, m.View(), "Awaiting Input Data...")
}

func TestStaleAnalysisDropped(t *testing.T) {
	m, ctrl := newTestModel(t, 0)
	m, cmd := send(t, m, key(tea.KeyEnter))
	msgs := collect(cmd)

	m, _ = send(t, m, key(tea.KeyCtrlU))
	m, _ = send(t, m, typed("50"))
	require.Equal(t, 50.0, ctrl.Measurements().Rainfall)

	for _, msg := range msgs {
		m, _ = send(t, m, msg)
	}
	assert.Equal(t, session.Idle, ctrl.State())
	_, ok := ctrl.Result()
	assert.False(t, ok)
}

func TestPersonaKeys_SwitchWithoutRecompute(t *testing.T) {
	m, ctrl := newTestModel(t, 0)
	m = analyze(t, m)
	require.Equal(t, session.Ready, ctrl.State())
	before, _ := ctrl.Result()

	m, cmd := send(t, m, key(tea.KeyF2))
	assert.Nil(t, cmd)
	assert.Equal(t, persona.Scientist, ctrl.Persona())
	out := m.View()
	assert.Contains(t, out, "Domain Scientist View")
	assert.Contains(t, out, "Boundary_Detection:")
	assert.Contains(t, out, "98.5%")

	m, _ = send(t, m, key(tea.KeyF3))
	out = m.View()
	assert.Contains(t, out, "Regional Planner View")
	assert.Contains(t, out, "Flood Prone Region")

	after, _ := ctrl.Result()
	assert.Equal(t, before, after)
	assert.Equal(t, session.Ready, ctrl.State())

	send(t, m, key(tea.KeyF1))
	assert.Equal(t, persona.Operator, ctrl.Persona())
}

func TestReset_CtrlR(t *testing.T) {
	m, ctrl := newTestModel(t, 0)
	m = analyze(t, m)
	require.Equal(t, session.Ready, ctrl.State())

	m, _ = send(t, m, key(tea.KeyCtrlR))
	assert.Equal(t, session.Idle, ctrl.State())
	assert.Contains(t, m.View(), "Analyze Data")
}

func TestTab_MovesFocus(t *testing.T) {
	m, ctrl := newTestModel(t, 0)

	m, _ = send(t, m, key(tea.KeyTab))
	assert.Equal(t, 1, m.focus)
	m, _ = send(t, m, typed("5"))
	assert.Equal(t, 825.0, ctrl.Measurements().Humidity)

	m, _ = send(t, m, key(tea.KeyShiftTab))
	m, _ = send(t, m, key(tea.KeyShiftTab))
	assert.Equal(t, len(inputOrder)-1, m.focus)
	assert.Equal(t, agronomy.PH, inputOrder[m.focus])
}

func TestUnparseableInputBecomesZero(t *testing.T) {
	m, ctrl := newTestModel(t, 0)
	m, _ = send(t, m, key(tea.KeyCtrlU))
	m, _ = send(t, m, typed("abc"))
	assert.Equal(t, 0.0, ctrl.Measurements().Rainfall)

	m = analyze(t, m)
	res, ok := ctrl.Result()
	require.True(t, ok)
	assert.Equal(t, agronomy.Mothbeans, res.Crop())
	assert.Contains(t, m.View(), "Mothbeans")
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, 0)
	_, cmd := send(t, m, key(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestButtonLabel(t *testing.T) {
	assert.Equal(t, "Analyze Data", ButtonLabel(session.Idle))
	assert.Equal(t, "Processing...", ButtonLabel(session.Computing))
	assert.Equal(t, "Analysis Ready", ButtonLabel(session.Ready))
}
