// Package mealy implements deterministic Mealy transducers: every transition
// carries an output, and input symbols may be several characters long.
//
// The epsilon symbol (ir.Epsilon unless set with WithEpsilon) is an output
// that emits nothing: a transition whose output is epsilon adds no characters to
// the result. Epsilon is never an input symbol; AddTransition rejects it with
// ir.ErrEpsilonInput, and a document whose transitions read "&" loads with a
// warning for each such record instead of the transition. Older snapshots
// that stored "&" as a literal output character load as empty outputs.
package mealy

import (
	"cmp"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/arthurvalves/IC-Tomato/internal/arena"
	"github.com/arthurvalves/IC-Tomato/internal/ir"
	"github.com/arthurvalves/IC-Tomato/internal/symbol"
)

type rule struct {
	to     int
	output string
}

type edges map[string]rule

// Machine is a Mealy machine. Construct with New.
type Machine struct {
	states         *arena.Arena[edges]
	inputAlphabet  symbol.Set
	outputAlphabet symbol.Set
	epsilon        string
	logger         *slog.Logger
}

// Option configures a Machine.
type Option func(*Machine)

// WithEpsilon sets the output symbol that emits nothing. Default ir.Epsilon.
func WithEpsilon(eps string) Option {
	return func(m *Machine) {
		if eps != "" {
			m.epsilon = symbol.Normalize(eps)
		}
	}
}

// WithLogger sets the logger. Default slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates an empty machine.
func New(opts ...Option) *Machine {
	m := &Machine{
		states:         arena.New(func() edges { return make(edges) }),
		inputAlphabet:  symbol.NewSet(),
		outputAlphabet: symbol.NewSet(),
		epsilon:        ir.Epsilon,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StateOption sets flags on a state being added.
type StateOption func(*bool)

// AsStart marks the state as the start state.
func AsStart() StateOption { return func(start *bool) { *start = true } }

// Epsilon returns the empty output symbol.
func (m *Machine) Epsilon() string { return m.epsilon }

// AddState adds a state, or makes an existing one the start state when
// AsStart is given.
func (m *Machine) AddState(name string, opts ...StateOption) error {
	name = symbol.Normalize(name)
	if name == "" {
		return ir.Precondition("add_state", name, ir.ErrEmptyName)
	}
	var start bool
	for _, opt := range opts {
		opt(&start)
	}
	i, _ := m.states.Add(name)
	if start {
		m.states.SetStart(i)
	}
	return nil
}

func (m *Machine) lookup(op, name string) (int, error) {
	i, ok := m.states.Lookup(symbol.Normalize(name))
	if !ok {
		return 0, ir.Precondition(op, name, ir.ErrUnknownState)
	}
	return i, nil
}

// output maps an empty output to the epsilon symbol.
func (m *Machine) output(out string) string {
	if out = symbol.Normalize(out); out == "" {
		return m.epsilon
	}
	return out
}

// AddTransition sets (src, input) -> (dst, output), replacing any rule for
// (src, input). An empty or epsilon output emits nothing.
func (m *Machine) AddTransition(src, input, dst, output string) error {
	input, output = symbol.Normalize(input), m.output(output)
	switch {
	case input == "":
		return ir.Precondition("add_transition", input, ir.ErrEmptySymbol)
	case input == m.epsilon || input == ir.Epsilon:
		return ir.Precondition("add_transition", input, ir.ErrEpsilonInput)
	case output == ir.Epsilon && m.epsilon != ir.Epsilon:
		return ir.Precondition("add_transition", output, ir.ErrReservedSymbol)
	}
	s, err := m.lookup("add_transition", src)
	if err != nil {
		return err
	}
	d, err := m.lookup("add_transition", dst)
	if err != nil {
		return err
	}

	m.states.At(s).Edges[input] = rule{to: d, output: output}
	m.inputAlphabet.Add(input)
	if output != m.epsilon {
		m.outputAlphabet.Add(output)
	}
	return nil
}

// RemoveTransition removes the rule for (src, input). It reports whether one
// existed.
func (m *Machine) RemoveTransition(src, input string) bool {
	s, ok := m.states.Lookup(symbol.Normalize(src))
	if !ok {
		return false
	}
	e := m.states.At(s).Edges
	input = symbol.Normalize(input)
	if _, ok := e[input]; !ok {
		return false
	}
	delete(e, input)
	return true
}

// RemoveState deletes a state and every rule into or out of it.
func (m *Machine) RemoveState(name string) bool {
	return m.states.Remove(symbol.Normalize(name), func(e edges, removed int) edges {
		for in, r := range e {
			to, ok := arena.Shift(r.to, removed)
			if !ok {
				delete(e, in)
				continue
			}
			r.to = to
			e[in] = r
		}
		return e
	})
}

// RenameState relabels a state.
func (m *Machine) RenameState(oldName, newName string) error {
	return m.states.Rename(symbol.Normalize(oldName), symbol.Normalize(newName))
}

// SetStart makes name the start state.
func (m *Machine) SetStart(name string) error {
	i, err := m.lookup("set_start", name)
	if err != nil {
		return err
	}
	m.states.SetStart(i)
	return nil
}

// States returns every state label in ascending order.
func (m *Machine) States() []string { return m.states.Names() }

// Start returns the start state label.
func (m *Machine) Start() (string, bool) { return m.states.StartName() }

// InputAlphabet returns every input symbol ever used.
func (m *Machine) InputAlphabet() []string { return m.inputAlphabet.Sorted() }

// OutputAlphabet returns every non-empty output symbol ever used.
func (m *Machine) OutputAlphabet() []string { return m.outputAlphabet.Sorted() }

// Transition is one rule of the machine.
type Transition struct {
	Src    string `json:"src"`
	Input  string `json:"input"`
	Dst    string `json:"dst"`
	Output string `json:"output"`
}

// Transitions lists every rule ordered by source then input.
func (m *Machine) Transitions() []Transition {
	var out []Transition
	for i := 0; i < m.states.Len(); i++ {
		slot := m.states.At(i)
		for in, r := range slot.Edges {
			out = append(out, Transition{Src: slot.Name, Input: in, Dst: m.states.Name(r.to), Output: r.output})
		}
	}
	slices.SortFunc(out, func(x, y Transition) int {
		return cmp.Or(strings.Compare(x.Src, y.Src), strings.Compare(x.Input, y.Input))
	})
	return out
}

// Clone returns an independent copy.
func (m *Machine) Clone() *Machine {
	c := *m
	c.states = m.states.Clone(maps.Clone[edges])
	c.inputAlphabet = m.inputAlphabet.Clone()
	c.outputAlphabet = m.outputAlphabet.Clone()
	return &c
}
