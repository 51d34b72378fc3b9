package session

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"cropsight/internal/agronomy"
	"cropsight/internal/engine"
	"cropsight/internal/persona"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newController(t *testing.T, opts ...Option) *Controller {
	t.Helper()
	return New(engine.Engine{}, agronomy.DefaultMeasurements(), opts...)
}

func TestNew_StartsIdle(t *testing.T) {
	c := newController(t)
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, persona.Operator, c.Persona())
	assert.Equal(t, agronomy.DefaultMeasurements(), c.Measurements())
	assert.True(t, c.CanTrigger())

	_, ok := c.Result()
	assert.False(t, ok)
	_, ok = c.View()
	assert.False(t, ok)
}

func TestNew_WithPersona(t *testing.T) {
	c := newController(t, WithPersona(persona.Scientist))
	assert.Equal(t, persona.Scientist, c.Persona())
}

func TestNew_SanitizesInitial(t *testing.T) {
	ms := agronomy.DefaultMeasurements()
	ms.Rainfall = math.NaN()
	c := New(engine.Engine{}, ms)
	assert.Equal(t, 0.0, c.Measurements().Rainfall)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "computing", Computing.String())
	assert.Equal(t, "ready", Ready.String())
}

// ---------------------------------------------------------------------------
// Trigger / Complete
// ---------------------------------------------------------------------------

func TestTrigger_IdleToComputingToReady(t *testing.T) {
	c := newController(t)

	p, ok := c.Trigger()
	require.True(t, ok)
	assert.Equal(t, Computing, c.State())
	assert.False(t, c.CanTrigger())
	_, ok = c.Result()
	assert.False(t, ok, "no result while computing")

	require.True(t, c.Complete(p.Run()))
	assert.Equal(t, Ready, c.State())

	res, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, agronomy.Rice, res.Crop())
	assert.Equal(t, 98.5, res.Confidence())
}

func TestTrigger_IgnoredWhileComputing(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := NewMockAnalyzer(ctrl)
	a.EXPECT().Analyze(gomock.Any()).DoAndReturn(engine.Analyze).Times(1)

	c := New(a, agronomy.DefaultMeasurements())
	p, ok := c.Trigger()
	require.True(t, ok)

	for range 5 {
		again, ok := c.Trigger()
		assert.False(t, ok)
		assert.Nil(t, again)
	}
	assert.Equal(t, Computing, c.State())

	require.True(t, c.Complete(p.Run()))
	assert.Equal(t, Ready, c.State())
}

func TestTrigger_IgnoredWhileReady(t *testing.T) {
	c := newController(t)
	require.True(t, c.TriggerAnalysis())
	before, _ := c.Result()

	assert.False(t, c.TriggerAnalysis())
	after, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestComplete_UsesSnapshot(t *testing.T) {
	c := newController(t)
	p, ok := c.Trigger()
	require.True(t, ok)
	assert.Equal(t, c.Measurements(), p.Measurements())
}

func TestComplete_StaleAfterEdit(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	c := newController(t, WithLogger(zap.New(core)))

	p, ok := c.Trigger()
	require.True(t, ok)

	c.SetMeasurement(agronomy.Rainfall, "50")
	assert.Equal(t, Idle, c.State())

	done := p.Run()
	assert.False(t, c.Complete(done), "completion for old inputs must be dropped")
	assert.Equal(t, Idle, c.State())
	_, ok = c.Result()
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("stale completion discarded").Len())
}

func TestComplete_StaleAfterReset(t *testing.T) {
	c := newController(t)
	p, _ := c.Trigger()
	c.Reset()
	assert.False(t, c.Complete(p.Run()))
	assert.Equal(t, Idle, c.State())
}

func TestComplete_OldJobAfterRetrigger(t *testing.T) {
	c := newController(t)

	first, _ := c.Trigger()
	c.SetMeasurement(agronomy.Rainfall, "50")
	c.SetMeasurement(agronomy.Humidity, "40")
	second, ok := c.Trigger()
	require.True(t, ok)

	assert.False(t, c.Complete(first.Run()))
	assert.Equal(t, Computing, c.State())

	require.True(t, c.Complete(second.Run()))
	res, _ := c.Result()
	assert.Equal(t, agronomy.Mothbeans, res.Crop())
}

func TestComplete_RunOffLoop(t *testing.T) {
	c := newController(t)
	p, ok := c.Trigger()
	require.True(t, ok)

	var (
		wg   sync.WaitGroup
		done Completion
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		done = p.Run()
	}()
	wg.Wait()

	require.True(t, c.Complete(done))
	assert.Equal(t, Ready, c.State())
}

// ---------------------------------------------------------------------------
// Edits and reset
// ---------------------------------------------------------------------------

func TestSetMeasurement_InvalidatesReady(t *testing.T) {
	c := newController(t)
	require.True(t, c.TriggerAnalysis())

	c.SetMeasurement(agronomy.PH, "6.6")
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, 6.6, c.Measurements().PH)
	_, ok := c.Result()
	assert.False(t, ok)
}

func TestSetMeasurement_UnparseableIsZero(t *testing.T) {
	c := newController(t)
	c.SetMeasurement(agronomy.Rainfall, "lots")
	assert.Equal(t, 0.0, c.Measurements().Rainfall)

	require.True(t, c.TriggerAnalysis())
	res, _ := c.Result()
	assert.Equal(t, agronomy.Mothbeans, res.Crop())
}

func TestSetMeasurement_WhileIdleStaysIdle(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	c := newController(t, WithLogger(zap.New(core)))
	c.SetMeasurement(agronomy.Nitrogen, "100")
	assert.Equal(t, Idle, c.State())
	assert.Zero(t, logs.FilterMessage("session invalidated").Len())
}

func TestReset(t *testing.T) {
	c := newController(t, WithPersona(persona.Planner))
	require.True(t, c.TriggerAnalysis())

	c.Reset()
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, persona.Planner, c.Persona(), "reset keeps the persona")
	assert.Equal(t, agronomy.DefaultMeasurements(), c.Measurements(), "reset keeps the inputs")
	assert.True(t, c.TriggerAnalysis())
}

// ---------------------------------------------------------------------------
// Persona switching
// ---------------------------------------------------------------------------

func TestSelectPersona_DoesNotRecompute(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := NewMockAnalyzer(ctrl)
	a.EXPECT().Analyze(gomock.Any()).DoAndReturn(engine.Analyze).Times(1)

	c := New(a, agronomy.DefaultMeasurements(), WithPersona(persona.Operator))
	require.True(t, c.TriggerAnalysis())

	v, ok := c.View()
	require.True(t, ok)
	op, ok := v.(*persona.OperatorView)
	require.True(t, ok)
	assert.Equal(t, agronomy.Rice, op.Head().Crop)

	c.SelectPersona(persona.Planner)
	assert.Equal(t, Ready, c.State())

	v, ok = c.View()
	require.True(t, ok)
	pv, ok := v.(*persona.PlannerView)
	require.True(t, ok)
	assert.Equal(t, "Flood Prone Region", pv.Risk.String())

	c.SelectPersona(persona.Scientist)
	v, _ = c.View()
	assert.Equal(t, persona.Scientist, v.Persona())
}

func TestSelectPersona_WhileComputing(t *testing.T) {
	c := newController(t)
	p, _ := c.Trigger()
	c.SelectPersona(persona.Scientist)
	assert.Equal(t, Computing, c.State(), "persona switch must not cancel")
	require.True(t, c.Complete(p.Run()))

	v, ok := c.View()
	require.True(t, ok)
	assert.IsType(t, &persona.ScientistView{}, v)
}

func TestViews_AgreeOnCrop(t *testing.T) {
	c := newController(t)
	ms := agronomy.DefaultMeasurements()
	ms.Rainfall, ms.Humidity = 120, 50
	for _, f := range agronomy.Features {
		c.SetMeasurement(f, agronomy.FormatValue(ms.Get(f)))
	}
	require.True(t, c.TriggerAnalysis())

	for _, k := range persona.Kinds {
		c.SelectPersona(k)
		v, ok := c.View()
		require.True(t, ok)
		assert.Equal(t, agronomy.Coffee, v.Head().Crop, k.String())
	}
}
