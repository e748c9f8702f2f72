package mealy

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

// SimulateHistory translates input. At each step the longest input symbol of
// the current state that prefixes the remaining input is taken; ties go to
// the byte-wise smaller symbol. The bool is false when the machine got stuck,
// in which case the history ends at the last state reached and no output is
// returned.
func (m *Machine) SimulateHistory(input string) ([]Step, string, bool) {
	state := m.states.Start()
	if state == arena.NoState {
		return []Step{}, "", false
	}

	rest := symbol.Normalize(input)
	var out strings.Builder
	pos := 0
	history := []Step{{State: m.states.Name(state), Pos: pos}}

	for rest != "" {
		sym, r, ok := m.next(state, rest)
		if !ok {
			return history, "", false
		}
		if r.output != m.epsilon {
			out.WriteString(r.output)
		}
		state = r.to
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

// next picks the rule of state that consumes the longest prefix of rest.
func (m *Machine) next(state int, rest string) (string, rule, bool) {
	e := m.states.At(state).Edges
	candidates := make([]string, 0, len(e))
	for in := range e {
		if strings.HasPrefix(rest, in) {
			candidates = append(candidates, in)
		}
	}
	if len(candidates) == 0 {
		return "", rule{}, false
	}
	symbol.SortLongestFirst(candidates)
	return candidates[0], e[candidates[0]], true
}
