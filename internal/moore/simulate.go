package moore

import (
	"strings"

	"github.com/arthurvalves/IC-Tomato/internal/arena"
	"github.com/arthurvalves/IC-Tomato/internal/symbol"
)

// Step is one entry of a run: the state entered, the output so far and the
// number of input characters consumed.
type Step struct {
	State  string `json:"state"`
	Output string `json:"output"`
	Pos    int    `json:"pos"`
}

// SimulateHistory translates input. The output starts with the output of the
// start state and grows by the output of every state entered. Symbol choice
// and stuck runs behave as in a Mealy machine: longest prefix first, ties to
// the byte-wise smaller symbol, and no output when stuck.
func (m *Machine) SimulateHistory(input string) ([]Step, string, bool) {
	state := m.states.Start()
	if state == arena.NoState {
		return []Step{}, "", false
	}

	rest := symbol.Normalize(input)
	var out strings.Builder
	m.emit(&out, state)
	pos := 0
	history := []Step{{State: m.states.Name(state), Output: out.String(), Pos: pos}}

	for rest != "" {
		sym, to, ok := m.next(state, rest)
		if !ok {
			return history, "", false
		}
		state = to
		m.emit(&out, state)
		rest = rest[len(sym):]
		pos += symbol.Len(sym)
		history = append(history, Step{State: m.states.Name(state), Output: out.String(), Pos: pos})
	}
	return history, out.String(), true
}

// Simulate returns the translation of input, or false when the machine got
// stuck.
func (m *Machine) Simulate(input string) (string, bool) {
	_, out, ok := m.SimulateHistory(input)
	return out, ok
}

func (m *Machine) emit(b *strings.Builder, state int) {
	if out := m.states.At(state).Edges.output; out != m.epsilon {
		b.WriteString(out)
	}
}

func (m *Machine) next(state int, rest string) (string, int, bool) {
	next := m.states.At(state).Edges.next
	candidates := make([]string, 0, len(next))
	for in := range next {
		if strings.HasPrefix(rest, in) {
			candidates = append(candidates, in)
		}
	}
	if len(candidates) == 0 {
		return "", 0, false
	}
	symbol.SortLongestFirst(candidates)
	return candidates[0], next[candidates[0]], true
}
