package tm

import (
	"maps"

	"github.com/arthurvalves/IC-Tomato/internal/arena"
	"github.com/arthurvalves/IC-Tomato/internal/symbol"
)

// Result is how a run ended.
type Result string

const (
	Accept Result = "ACCEPT"
	Reject Result = "REJECT"
	Loop   Result = "LOOP"
)

// Configuration is a snapshot of a run. Tape holds every cell that was
// initialised from the input or written; other cells are blank.
type Configuration struct {
	State string         `json:"state"`
	Tape  map[int]string `json:"tape"`
	Head  int            `json:"head"`
}

// Cells returns the tape from its leftmost to its rightmost known cell,
// widened to include the head, and the index of the first cell.
func (c Configuration) Cells(blank string) (offset int, cells []string) {
	lo, hi := c.Head, c.Head
	for i := range c.Tape {
		lo, hi = min(lo, i), max(hi, i)
	}
	cells = make([]string, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		s, ok := c.Tape[i]
		if !ok {
			s = blank
		}
		cells = append(cells, s)
	}
	return lo, cells
}

// SimulateHistory runs the machine on input for at most maxSteps steps and
// returns every configuration, the initial one first. A negative budget is
// treated as zero.
//
// A run accepts when a step begins in a final state, before looking up a
// rule, and rejects when no rule matches the symbol under the head. Once the
// budget is spent the result is Loop, even if the last step entered a final
// state.
func (m *Machine) SimulateHistory(input string, maxSteps int) ([]Configuration, Result) {
	maxSteps = max(maxSteps, 0)
	state := m.states.Start()
	if state == arena.NoState {
		return []Configuration{}, Reject
	}

	tape := make(map[int]string)
	for i, c := range symbol.Chars(symbol.Normalize(input)) {
		tape[i] = c
	}
	head := 0
	history := []Configuration{m.snapshot(state, tape, head)}

	for step := 0; step < maxSteps; step++ {
		if m.states.At(state).Final {
			return history, Accept
		}
		read, ok := tape[head]
		if !ok {
			read = m.blank
		}
		r, ok := m.states.At(state).Edges[read]
		if !ok {
			return history, Reject
		}
		tape[head] = r.write
		if r.move == Right {
			head++
		} else {
			head--
		}
		state = r.to
		history = append(history, m.snapshot(state, tape, head))
	}

	m.logger.Debug("step budget exhausted", "max_steps", maxSteps, "state", m.states.Name(state))
	return history, Loop
}

// Simulate reports whether the machine accepts input within DefaultMaxSteps.
func (m *Machine) Simulate(input string) bool {
	_, res := m.SimulateHistory(input, DefaultMaxSteps)
	return res == Accept
}

func (m *Machine) snapshot(state int, tape map[int]string, head int) Configuration {
	return Configuration{State: m.states.Name(state), Tape: maps.Clone(tape), Head: head}
}
