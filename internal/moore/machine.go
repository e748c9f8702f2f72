// Package moore implements deterministic Moore transducers: every state
// carries an output, and input symbols may be several characters long.
//
// The epsilon symbol (ir.Epsilon unless set with WithEpsilon) is an output
// that emits nothing: a state whose output is epsilon adds no characters to
// the result. Epsilon is never an input symbol; AddTransition rejects it with
// ir.ErrEpsilonInput, and a document whose transitions read "&" loads with a
// warning for each such record instead of the transition. Older snapshots
// that stored "&" as a literal output character load as empty outputs.
package moore

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

// node is the payload of one state: its output and its moves by input.
type node struct {
	output string
	next   map[string]int
}

// Machine is a Moore machine. Construct with New.
type Machine struct {
	states         *arena.Arena[node]
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
		inputAlphabet:  symbol.NewSet(),
		outputAlphabet: symbol.NewSet(),
		epsilon:        ir.Epsilon,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.states = arena.New(func() node { return node{output: m.epsilon, next: make(map[string]int)} })
	return m
}

// StateOption sets flags on a state being added.
type StateOption func(*bool)

// AsStart marks the state as the start state.
func AsStart() StateOption { return func(start *bool) { *start = true } }

// Epsilon returns the empty output symbol.
func (m *Machine) Epsilon() string { return m.epsilon }

func (m *Machine) checkOutput(op, out string) (string, error) {
	if out = symbol.Normalize(out); out == "" {
		return m.epsilon, nil
	}
	if out == ir.Epsilon && m.epsilon != ir.Epsilon {
		return "", ir.Precondition(op, out, ir.ErrReservedSymbol)
	}
	return out, nil
}

func (m *Machine) setOutput(i int, out string) {
	m.states.At(i).Edges.output = out
	if out != m.epsilon {
		m.outputAlphabet.Add(out)
	}
}

// AddState adds a state with its output, or replaces the output of an
// existing one. An empty or epsilon output emits nothing.
func (m *Machine) AddState(name, output string, opts ...StateOption) error {
	name = symbol.Normalize(name)
	if name == "" {
		return ir.Precondition("add_state", name, ir.ErrEmptyName)
	}
	out, err := m.checkOutput("add_state", output)
	if err != nil {
		return err
	}
	var start bool
	for _, opt := range opts {
		opt(&start)
	}
	i, _ := m.states.Add(name)
	if start {
		m.states.SetStart(i)
	}
	m.setOutput(i, out)
	return nil
}

func (m *Machine) lookup(op, name string) (int, error) {
	i, ok := m.states.Lookup(symbol.Normalize(name))
	if !ok {
		return 0, ir.Precondition(op, name, ir.ErrUnknownState)
	}
	return i, nil
}

// SetOutput changes the output of an existing state.
func (m *Machine) SetOutput(name, output string) error {
	i, err := m.lookup("set_output", name)
	if err != nil {
		return err
	}
	out, err := m.checkOutput("set_output", output)
	if err != nil {
		return err
	}
	m.setOutput(i, out)
	return nil
}

// Output returns the output of a state.
func (m *Machine) Output(name string) (string, bool) {
	i, ok := m.states.Lookup(symbol.Normalize(name))
	if !ok {
		return "", false
	}
	return m.states.At(i).Edges.output, true
}

// OutputFunction returns the output of every state.
func (m *Machine) OutputFunction() map[string]string {
	out := make(map[string]string, m.states.Len())
	for i := 0; i < m.states.Len(); i++ {
		slot := m.states.At(i)
		out[slot.Name] = slot.Edges.output
	}
	return out
}

// AddTransition sets (src, input) -> dst, replacing any rule for (src, input).
func (m *Machine) AddTransition(src, input, dst string) error {
	input = symbol.Normalize(input)
	switch {
	case input == "":
		return ir.Precondition("add_transition", input, ir.ErrEmptySymbol)
	case input == m.epsilon || input == ir.Epsilon:
		return ir.Precondition("add_transition", input, ir.ErrEpsilonInput)
	}
	s, err := m.lookup("add_transition", src)
	if err != nil {
		return err
	}
	d, err := m.lookup("add_transition", dst)
	if err != nil {
		return err
	}
	m.states.At(s).Edges.next[input] = d
	m.inputAlphabet.Add(input)
	return nil
}

// RemoveTransition removes the rule for (src, input). It reports whether one
// existed.
func (m *Machine) RemoveTransition(src, input string) bool {
	s, ok := m.states.Lookup(symbol.Normalize(src))
	if !ok {
		return false
	}
	next := m.states.At(s).Edges.next
	input = symbol.Normalize(input)
	if _, ok := next[input]; !ok {
		return false
	}
	delete(next, input)
	return true
}

// RemoveState deletes a state, its output and every rule into or out of it.
func (m *Machine) RemoveState(name string) bool {
	return m.states.Remove(symbol.Normalize(name), func(n node, removed int) node {
		for in, to := range n.next {
			to, ok := arena.Shift(to, removed)
			if !ok {
				delete(n.next, in)
				continue
			}
			n.next[in] = to
		}
		return n
	})
}

// RenameState relabels a state; its output follows it.
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

// OutputAlphabet returns every non-empty output ever assigned.
func (m *Machine) OutputAlphabet() []string { return m.outputAlphabet.Sorted() }

// Transition is one rule of the machine.
type Transition struct {
	Src   string `json:"src"`
	Input string `json:"input"`
	Dst   string `json:"dst"`
}

// Transitions lists every rule ordered by source then input.
func (m *Machine) Transitions() []Transition {
	var out []Transition
	for i := 0; i < m.states.Len(); i++ {
		slot := m.states.At(i)
		for in, to := range slot.Edges.next {
			out = append(out, Transition{Src: slot.Name, Input: in, Dst: m.states.Name(to)})
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
	c.states = m.states.Clone(func(n node) node {
		return node{output: n.output, next: maps.Clone(n.next)}
	})
	c.inputAlphabet = m.inputAlphabet.Clone()
	c.outputAlphabet = m.outputAlphabet.Clone()
	return &c
}
