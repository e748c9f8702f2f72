package fa

import (
	"slices"
	"strings"

	"github.com/arthurvalves/IC-Tomato/internal/arena"
	"github.com/arthurvalves/IC-Tomato/internal/symbol"
)

// Step is one entry of a simulation history: the active states after
// consuming the input up to Pos characters.
type Step struct {
	States []string `json:"states"`
	Pos    int      `json:"pos"`
}

// closure expands seed with every state reachable through empty moves.
// Uses an explicit stack; cyclic empty-move graphs terminate.
func (a *Automaton) closure(seed indexSet) indexSet {
	out := make(indexSet, len(seed))
	stack := make([]int, 0, len(seed))
	for s := range seed {
		out[s] = struct{}{}
		stack = append(stack, s)
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for t := range a.states.At(s).Edges[a.epsilon] {
			if _, seen := out[t]; !seen {
				out[t] = struct{}{}
				stack = append(stack, t)
			}
		}
	}
	return out
}

// move unions the targets of sym from every state in from.
func (a *Automaton) move(from indexSet, sym string) indexSet {
	out := make(indexSet)
	for s := range from {
		for t := range a.states.At(s).Edges[sym] {
			out[t] = struct{}{}
		}
	}
	return out
}

func (a *Automaton) resolve(op string, names []string) (indexSet, error) {
	out := make(indexSet, len(names))
	for _, n := range names {
		i, err := a.lookup(op, n)
		if err != nil {
			return nil, err
		}
		out[i] = struct{}{}
	}
	return out, nil
}

func (a *Automaton) labels(set indexSet) []string {
	idx := make([]int, 0, len(set))
	for i := range set {
		idx = append(idx, i)
	}
	return a.states.NamesOf(idx)
}

func (a *Automaton) anyFinal(set indexSet) bool {
	for i := range set {
		if a.states.At(i).Final {
			return true
		}
	}
	return false
}

// EpsilonClosure returns states plus every state reachable from them through
// empty moves, sorted.
func (a *Automaton) EpsilonClosure(states ...string) ([]string, error) {
	seed, err := a.resolve("epsilon_closure", states)
	if err != nil {
		return nil, err
	}
	return a.labels(a.closure(seed)), nil
}

// Move returns the union of the targets of sym from every state, sorted.
// No closure is applied.
func (a *Automaton) Move(states []string, sym string) ([]string, error) {
	from, err := a.resolve("move", states)
	if err != nil {
		return nil, err
	}
	return a.labels(a.move(from, symbol.Normalize(sym))), nil
}

// SimulateHistory runs the automaton on input and records the active state
// set after every consumed symbol, starting with the closure of the start
// state at position 0. At each step the longest applicable symbol wins; ties
// go to the byte-wise smaller symbol. Simulation stops when the input is
// exhausted or no symbol applies.
//
// An automaton without a start state returns an empty history and false.
func (a *Automaton) SimulateHistory(input string) ([]Step, bool) {
	start := a.states.Start()
	if start == arena.NoState {
		return []Step{}, false
	}

	rest := symbol.Normalize(input)
	current := a.closure(indexSet{start: {}})
	history := []Step{{States: a.labels(current), Pos: 0}}
	pos := 0

	for rest != "" {
		next, sym := a.advance(current, rest)
		if sym == "" {
			break
		}
		rest = rest[len(sym):]
		pos += symbol.Len(sym)
		current = a.closure(next)
		history = append(history, Step{States: a.labels(current), Pos: pos})
	}

	return history, rest == "" && a.anyFinal(current)
}

// Simulate reports whether the automaton accepts input.
func (a *Automaton) Simulate(input string) bool {
	_, accepted := a.SimulateHistory(input)
	return accepted
}

// advance picks the first candidate symbol, in longest-first order, that
// prefixes rest and moves the current set somewhere.
func (a *Automaton) advance(current indexSet, rest string) (indexSet, string) {
	candidates := symbol.NewSet()
	for s := range current {
		for sym := range a.states.At(s).Edges {
			if sym != a.epsilon {
				candidates.Add(sym)
			}
		}
	}
	ordered := candidates.Sorted()
	symbol.SortLongestFirst(ordered)

	for _, sym := range ordered {
		if !strings.HasPrefix(rest, sym) {
			continue
		}
		if next := a.move(current, sym); len(next) > 0 {
			return next, sym
		}
	}
	return nil, ""
}

// sortedIndices returns the members of set in ascending index order.
func sortedIndices(set indexSet) []int {
	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}
