package engine

import (
	"io"
	"log/slog"

	"github.com/arthurvalves/IC-Tomato/internal/fa"
	"github.com/arthurvalves/IC-Tomato/internal/ir"
	"github.com/arthurvalves/IC-Tomato/internal/mealy"
	"github.com/arthurvalves/IC-Tomato/internal/moore"
	"github.com/arthurvalves/IC-Tomato/internal/pda"
	"github.com/arthurvalves/IC-Tomato/internal/tm"
)

// DefaultMaxSteps is the default step budget of a Turing machine run.
const DefaultMaxSteps = tm.DefaultMaxSteps

// Engine is one loaded machine. It is not safe for concurrent use.
type Engine struct {
	name     string
	r        runner
	fa       *fa.Automaton // set for finite automata only
	warnings []ir.Warning

	maxSteps   int
	maxConfigs int
	logger     *slog.Logger
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithMaxSteps sets the step budget of Turing machine runs.
//
// Default: 1000 steps (DefaultMaxSteps)
// Non-positive values keep the default.
func WithMaxSteps(maxSteps int) EngineOption {
	return func(e *Engine) {
		if maxSteps > 0 {
			e.maxSteps = maxSteps
		}
	}
}

// WithMaxConfigurations bounds one pushdown closure.
//
// Default: pda.DefaultMaxConfigurations
func WithMaxConfigurations(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxConfigs = n
		}
	}
}

// WithLogger sets the logger handed to the underlying engine.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEngine(name string, opts []EngineOption) *Engine {
	e := &Engine{
		name:       name,
		maxSteps:   DefaultMaxSteps,
		maxConfigs: pda.DefaultMaxConfigurations,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load builds the engine for a compiled or stored machine. Records the
// underlying engine could not use are skipped and reported by Warnings.
func Load(m *ir.Machine, opts ...EngineOption) (*Engine, error) {
	if m == nil || m.Document == nil {
		name := ""
		if m != nil {
			name = m.Name
		}
		return nil, NewUnsupportedKindError(name, "")
	}
	e := newEngine(m.Name, opts)

	switch doc := m.Document.(type) {
	case ir.FADocument:
		a, ws := fa.FromDocument(doc, fa.WithLogger(e.logger))
		e.setFA(a, ws)
	case ir.PDADocument:
		p, ws := pda.FromDocument(doc, e.pdaOptions()...)
		e.r, e.warnings = pdaRunner{p}, ws
	case ir.TMDocument:
		t, ws := tm.FromDocument(doc, tm.WithLogger(e.logger))
		e.r, e.warnings = tmRunner{t, e.maxSteps}, ws
	case ir.MealyDocument:
		me, ws := mealy.FromDocument(doc, mealy.WithLogger(e.logger))
		e.r, e.warnings = mealyRunner{me}, ws
	case ir.MooreDocument:
		mo, ws := moore.FromDocument(doc, moore.WithLogger(e.logger))
		e.r, e.warnings = mooreRunner{mo}, ws
	default:
		return nil, NewUnsupportedKindError(m.Name, m.Kind())
	}
	e.logger.Debug("machine loaded",
		"machine", e.name,
		"kind", m.Kind(),
		"warnings", len(e.warnings))
	return e, nil
}

// LoadJSON detects the kind of a JSON document and builds its engine.
func LoadJSON(name string, data []byte, opts ...EngineOption) (*Engine, error) {
	kind, err := ir.DetectKind(data)
	if err != nil {
		return nil, NewDecodeError(name, err)
	}
	e := newEngine(name, opts)

	var ws []ir.Warning
	switch kind {
	case ir.KindFA:
		var a *fa.Automaton
		if a, ws, err = fa.FromJSON(data, fa.WithLogger(e.logger)); err == nil {
			e.setFA(a, ws)
		}
	case ir.KindPDA:
		var p *pda.Automaton
		if p, ws, err = pda.FromJSON(data, e.pdaOptions()...); err == nil {
			e.r, e.warnings = pdaRunner{p}, ws
		}
	case ir.KindTM:
		var t *tm.Machine
		if t, ws, err = tm.FromJSON(data, tm.WithLogger(e.logger)); err == nil {
			e.r, e.warnings = tmRunner{t, e.maxSteps}, ws
		}
	case ir.KindMealy:
		var me *mealy.Machine
		if me, ws, err = mealy.FromJSON(data, mealy.WithLogger(e.logger)); err == nil {
			e.r, e.warnings = mealyRunner{me}, ws
		}
	case ir.KindMoore:
		var mo *moore.Machine
		if mo, ws, err = moore.FromJSON(data, moore.WithLogger(e.logger)); err == nil {
			e.r, e.warnings = mooreRunner{mo}, ws
		}
	default:
		return nil, NewUnsupportedKindError(name, kind)
	}
	if err != nil {
		return nil, NewDecodeError(name, err)
	}
	return e, nil
}

func (e *Engine) pdaOptions() []pda.Option {
	return []pda.Option{pda.WithLogger(e.logger), pda.WithMaxConfigurations(e.maxConfigs)}
}

func (e *Engine) setFA(a *fa.Automaton, ws []ir.Warning) {
	e.fa, e.r, e.warnings = a, faRunner{a}, ws
}

// derive wraps a finite automaton produced from this engine's one.
func (e *Engine) derive(a *fa.Automaton) *Engine {
	d := *e
	d.warnings = nil
	d.setFA(a, nil)
	return &d
}

// Name returns the machine name.
func (e *Engine) Name() string { return e.name }

// Kind returns the machine kind.
func (e *Engine) Kind() ir.Kind { return e.r.document().DocumentKind() }

// Warnings returns the records skipped while loading.
func (e *Engine) Warnings() []ir.Warning { return e.warnings }

// Document snapshots the current machine.
func (e *Engine) Document() ir.Document { return e.r.document() }

// Machine returns the named snapshot of the current machine.
func (e *Engine) Machine() *ir.Machine {
	return &ir.Machine{Name: e.name, Document: e.Document()}
}

// ToJSON encodes the current machine as an indented JSON document.
func (e *Engine) ToJSON() ([]byte, error) {
	return ir.EncodeDocument(e.Document())
}

// Automaton returns the finite automaton, or nil for any other kind.
func (e *Engine) Automaton() *fa.Automaton { return e.fa }

// ToDFA returns an engine for the equivalent DFA.
func (e *Engine) ToDFA() (*Engine, error) {
	if e.fa == nil {
		return nil, NewUnsupportedOperationError(e.name, "to_dfa", e.Kind())
	}
	d, err := e.fa.ToDFA()
	if err != nil {
		return nil, NewPreconditionError(e.name, err)
	}
	return e.derive(d), nil
}

// Minimize returns an engine for the minimal DFA. The machine must already
// be deterministic; call ToDFA first otherwise.
func (e *Engine) Minimize() (*Engine, error) {
	if e.fa == nil {
		return nil, NewUnsupportedOperationError(e.name, "minimize", e.Kind())
	}
	m, err := e.fa.Minimize()
	if err != nil {
		return nil, NewPreconditionError(e.name, err)
	}
	return e.derive(m), nil
}

// Grammar derives the right-linear grammar of a finite automaton.
func (e *Engine) Grammar(strict bool) (*fa.Grammar, error) {
	if e.fa == nil {
		return nil, NewUnsupportedOperationError(e.name, "regular_grammar", e.Kind())
	}
	g, err := e.fa.RegularGrammar(strict)
	if err != nil {
		return nil, NewPreconditionError(e.name, err)
	}
	return g, nil
}
