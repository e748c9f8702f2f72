package engine

import (
	"github.com/arthurvalves/IC-Tomato/internal/fa"
	"github.com/arthurvalves/IC-Tomato/internal/ir"
	"github.com/arthurvalves/IC-Tomato/internal/mealy"
	"github.com/arthurvalves/IC-Tomato/internal/moore"
	"github.com/arthurvalves/IC-Tomato/internal/pda"
	"github.com/arthurvalves/IC-Tomato/internal/tm"
)

// Verdict is how a run ended, independent of kind.
type Verdict string

const (
	Accept Verdict = "accept"
	Reject Verdict = "reject"
	Loop   Verdict = "loop"
	OK     Verdict = "ok"
	Stuck  Verdict = "stuck"
)

// Outcome is the result of running one input.
type Outcome struct {
	Input     string      `json:"input"`
	Verdict   Verdict     `json:"verdict"`
	Output    string      `json:"output,omitempty"`
	Steps     int         `json:"steps"`
	Truncated bool        `json:"truncated,omitempty"`
	Trace     []TraceStep `json:"trace"`
}

// Accepted reports whether an acceptor accepted the input.
func (o Outcome) Accepted() bool { return o.Verdict == Accept }

// TraceStep is one snapshot of a run. Which fields are set depends on the
// kind: States for finite automata, State with Stack and Active for pushdown
// automata, State with Tape and Offset for Turing machines (Pos is the head),
// State with Output for transducers.
type TraceStep struct {
	Pos    int      `json:"pos"`
	States []string `json:"states,omitempty"`
	State  string   `json:"state,omitempty"`
	Stack  []string `json:"stack,omitempty"`
	Active int      `json:"active,omitempty"`
	Tape   []string `json:"tape,omitempty"`
	Offset int      `json:"offset,omitempty"`
	Output string   `json:"output,omitempty"`
}

// Run feeds input to the machine.
func (e *Engine) Run(input string) Outcome {
	o := e.r.run(input)
	o.Input = input
	o.Steps = max(len(o.Trace)-1, 0)
	e.logger.Debug("run finished",
		"machine", e.name,
		"input", input,
		"verdict", o.Verdict,
		"steps", o.Steps)
	return o
}

// RunAll runs every input in order.
func (e *Engine) RunAll(inputs []string) []Outcome {
	out := make([]Outcome, len(inputs))
	for i, in := range inputs {
		out[i] = e.Run(in)
	}
	return out
}

// runner adapts one engine package to Run and Document.
type runner interface {
	run(input string) Outcome
	document() ir.Document
}

func acceptance(ok bool) Verdict {
	if ok {
		return Accept
	}
	return Reject
}

type faRunner struct{ a *fa.Automaton }

func (r faRunner) run(input string) Outcome {
	history, ok := r.a.SimulateHistory(input)
	o := Outcome{Verdict: acceptance(ok), Trace: make([]TraceStep, len(history))}
	for i, s := range history {
		o.Trace[i] = TraceStep{Pos: s.Pos, States: s.States}
	}
	return o
}

func (r faRunner) document() ir.Document { return r.a.ToDocument() }

type pdaRunner struct{ p *pda.Automaton }

func (r pdaRunner) run(input string) Outcome {
	history, ok := r.p.SimulateHistory(input)
	o := Outcome{Verdict: acceptance(ok), Trace: make([]TraceStep, len(history))}
	for i, s := range history {
		o.Trace[i] = TraceStep{Pos: s.Pos, State: s.State, Stack: s.Stack, Active: s.Active}
		o.Truncated = o.Truncated || s.Truncated
	}
	return o
}

func (r pdaRunner) document() ir.Document { return r.p.ToDocument() }

type tmRunner struct {
	m        *tm.Machine
	maxSteps int
}

func (r tmRunner) run(input string) Outcome {
	history, result := r.m.SimulateHistory(input, r.maxSteps)
	o := Outcome{Trace: make([]TraceStep, len(history))}
	switch result {
	case tm.Accept:
		o.Verdict = Accept
	case tm.Loop:
		o.Verdict = Loop
	default:
		o.Verdict = Reject
	}
	for i, c := range history {
		offset, cells := c.Cells(r.m.Blank())
		o.Trace[i] = TraceStep{Pos: c.Head, State: c.State, Tape: cells, Offset: offset}
	}
	return o
}

func (r tmRunner) document() ir.Document { return r.m.ToDocument() }

func translation(ok bool) Verdict {
	if ok {
		return OK
	}
	return Stuck
}

type mealyRunner struct{ m *mealy.Machine }

func (r mealyRunner) run(input string) Outcome {
	history, out, ok := r.m.SimulateHistory(input)
	o := Outcome{Verdict: translation(ok), Output: out, Trace: make([]TraceStep, len(history))}
	for i, s := range history {
		o.Trace[i] = TraceStep{Pos: s.Pos, State: s.State, Output: s.Output}
	}
	return o
}

func (r mealyRunner) document() ir.Document { return r.m.ToDocument() }

type mooreRunner struct{ m *moore.Machine }

func (r mooreRunner) run(input string) Outcome {
	history, out, ok := r.m.SimulateHistory(input)
	o := Outcome{Verdict: translation(ok), Output: out, Trace: make([]TraceStep, len(history))}
	for i, s := range history {
		o.Trace[i] = TraceStep{Pos: s.Pos, State: s.State, Output: s.Output}
	}
	return o
}

func (r mooreRunner) document() ir.Document { return r.m.ToDocument() }
