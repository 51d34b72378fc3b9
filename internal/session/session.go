// Package session owns the interactive state: the current measurement set,
// the selected persona, the current recommendation and the
// Idle → Computing → Ready state machine.
//
// The Controller has exactly one writer (the UI loop) and takes no locks.
// Long-running work is handed out as a Pending job that touches no controller
// state; its Completion is re-validated before it is applied, so a result for
// stale inputs can never become visible.
package session

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -source=session.go -destination=mock_analyzer_test.go -package=session

import (
	"go.uber.org/zap"

	"cropsight/internal/agronomy"
	"cropsight/internal/engine"
	"cropsight/internal/persona"
)

// State is the analysis state.
type State int

const (
	Idle      State = iota // no result, nothing in flight
	Computing              // trigger issued, result pending
	Ready                  // result present and valid for current inputs
)

func (s State) String() string {
	switch s {
	case Computing:
		return "computing"
	case Ready:
		return "ready"
	default:
		return "idle"
	}
}

// Analyzer runs the decision and explanation engine.
type Analyzer interface {
	Analyze(ms agronomy.MeasurementSet) engine.Result
}

// Controller is the single owner of session state.
type Controller struct {
	analyzer Analyzer
	logger   *zap.Logger

	measurements agronomy.MeasurementSet
	persona      persona.Kind
	state        State
	result       engine.Result
	generation   uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for state transitions.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPersona sets the initially selected persona.
func WithPersona(k persona.Kind) Option {
	return func(c *Controller) { c.persona = k }
}

// New returns an Idle controller holding initial.
func New(analyzer Analyzer, initial agronomy.MeasurementSet, opts ...Option) *Controller {
	c := &Controller{
		analyzer:     analyzer,
		logger:       zap.NewNop(),
		measurements: initial.Sanitized(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ---------------------------------------------------------------------------
// Read side
// ---------------------------------------------------------------------------

func (c *Controller) State() State                          { return c.state }
func (c *Controller) Persona() persona.Kind                 { return c.persona }
func (c *Controller) Measurements() agronomy.MeasurementSet { return c.measurements }

// Result returns the current recommendation. ok is false unless Ready.
func (c *Controller) Result() (res engine.Result, ok bool) {
	if c.state != Ready {
		return engine.Result{}, false
	}
	return c.result, true
}

// CanTrigger reports whether Trigger would start a computation.
func (c *Controller) CanTrigger() bool {
	return c.state == Idle
}

// View derives the current persona's view from the stored result. It never
// runs the analyzer.
func (c *Controller) View() (persona.View, bool) {
	res, ok := c.Result()
	if !ok {
		return nil, false
	}
	return persona.Present(c.persona, res, c.measurements), true
}

// ---------------------------------------------------------------------------
// Write side
// ---------------------------------------------------------------------------

// SetMeasurement parses raw and stores it for f. Unparseable text becomes 0.
// Any edit invalidates a Ready result or an in-flight computation.
func (c *Controller) SetMeasurement(f agronomy.Feature, raw string) {
	v := agronomy.ParseValue(raw)
	c.measurements = c.measurements.With(f, v)
	c.logger.Debug("measurement updated",
		zap.String("feature", f.Key()),
		zap.String("raw", raw),
		zap.Float64("value", v))
	c.invalidate("measurement edited")
}

// SelectPersona changes the persona. It never touches the state or result.
func (c *Controller) SelectPersona(k persona.Kind) {
	if k == c.persona {
		return
	}
	c.logger.Debug("persona selected", zap.Stringer("persona", k))
	c.persona = k
}

// Reset returns to Idle, discarding any result and in-flight computation.
func (c *Controller) Reset() {
	c.invalidate("reset")
}

func (c *Controller) invalidate(reason string) {
	if c.state == Idle {
		return
	}
	c.logger.Info("session invalidated",
		zap.String("reason", reason),
		zap.Stringer("from", c.state))
	c.state = Idle
	c.result = engine.Result{}
	c.generation++
}

// Pending is one outstanding computation. Run is safe to call off the UI
// loop: it only reads its own snapshot.
type Pending struct {
	analyzer     Analyzer
	generation   uint64
	measurements agronomy.MeasurementSet
}

// Completion carries a finished computation back to the controller.
type Completion struct {
	generation uint64
	result     engine.Result
}

// Measurements is the snapshot the job computes on.
func (p *Pending) Measurements() agronomy.MeasurementSet { return p.measurements }

// Run executes the engine on the snapshot.
func (p *Pending) Run() Completion {
	return Completion{generation: p.generation, result: p.analyzer.Analyze(p.measurements)}
}

// Trigger starts a computation. It is rejected while Computing, and while
// Ready (the result already matches the inputs).
func (c *Controller) Trigger() (*Pending, bool) {
	if c.state != Idle {
		c.logger.Debug("trigger rejected", zap.Stringer("state", c.state))
		return nil, false
	}
	c.generation++
	c.state = Computing
	c.logger.Info("analysis started", zap.Uint64("generation", c.generation))
	return &Pending{
		analyzer:     c.analyzer,
		generation:   c.generation,
		measurements: c.measurements,
	}, true
}

// Complete applies a finished computation if it still matches the current
// intent: state must be Computing and no edit or reset happened since its
// Trigger. Stale completions are dropped and false is returned.
func (c *Controller) Complete(done Completion) bool {
	if c.state != Computing || done.generation != c.generation {
		c.logger.Info("stale completion discarded",
			zap.Uint64("generation", done.generation),
			zap.Uint64("current", c.generation),
			zap.Stringer("state", c.state))
		return false
	}
	c.result = done.result
	c.state = Ready
	c.logger.Info("analysis ready",
		zap.Stringer("crop", done.result.Crop()),
		zap.Float64("confidence", done.result.Confidence()))
	return true
}

// TriggerAnalysis is the synchronous form of Trigger, Run and Complete.
func (c *Controller) TriggerAnalysis() bool {
	p, ok := c.Trigger()
	if !ok {
		return false
	}
	return c.Complete(p.Run())
}
