// Package tm implements deterministic single-tape Turing machines with a
// step budget.
package tm

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

// DefaultMaxSteps bounds a simulation when the caller gives no budget.
const DefaultMaxSteps = 1000

// Move is the direction the head takes after writing.
type Move int

const (
	Left Move = iota
	Right
)

// String returns "L" or "R".
func (m Move) String() string {
	switch m {
	case Left:
		return "L"
	case Right:
		return "R"
	default:
		return "?"
	}
}

// ParseMove reads "L" or "R".
func ParseMove(s string) (Move, error) {
	switch strings.TrimSpace(s) {
	case "L":
		return Left, nil
	case "R":
		return Right, nil
	}
	return 0, ir.Precondition("parse_move", s, ir.ErrInvalidMove)
}

// rule is the action for one (state, read) pair.
type rule struct {
	to    int
	write string
	move  Move
}

type edges map[string]rule

// Machine is a deterministic Turing machine. Construct with New.
type Machine struct {
	states        *arena.Arena[edges]
	inputAlphabet symbol.Set
	tapeAlphabet  symbol.Set
	blank         string
	logger        *slog.Logger
}

// Option configures a Machine.
type Option func(*Machine)

// WithBlank sets the symbol of unwritten tape cells. Default ir.Blank.
func WithBlank(b string) Option {
	return func(m *Machine) {
		if b != "" {
			m.blank = symbol.Normalize(b)
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
		states:        arena.New(func() edges { return make(edges) }),
		inputAlphabet: symbol.NewSet(),
		tapeAlphabet:  symbol.NewSet(),
		blank:         ir.Blank,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StateOption sets flags on a state being added.
type StateOption func(*stateFlags)

type stateFlags struct{ start, final bool }

// AsStart marks the state as the start state.
func AsStart() StateOption { return func(f *stateFlags) { f.start = true } }

// AsFinal marks the state as halting-accepting.
func AsFinal() StateOption { return func(f *stateFlags) { f.final = true } }

// Blank returns the blank symbol.
func (m *Machine) Blank() string { return m.blank }

// AddState adds a state or updates the flags of an existing one.
func (m *Machine) AddState(name string, opts ...StateOption) error {
	name = symbol.Normalize(name)
	if name == "" {
		return ir.Precondition("add_state", name, ir.ErrEmptyName)
	}
	if strings.Contains(name, ir.KeySeparator) {
		return ir.Precondition("add_state", name, ir.ErrKeySeparator)
	}
	var f stateFlags
	for _, opt := range opts {
		opt(&f)
	}
	i, _ := m.states.Add(name)
	if f.start {
		m.states.SetStart(i)
	}
	if f.final {
		m.states.At(i).Final = true
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

func (m *Machine) checkSymbol(op, sym string) error {
	if sym == "" {
		return ir.Precondition(op, sym, ir.ErrEmptySymbol)
	}
	if sym == ir.Blank && m.blank != ir.Blank {
		return ir.Precondition(op, sym, ir.ErrReservedSymbol)
	}
	return nil
}

// AddTransition sets the rule (src, read) -> (dst, write, move), replacing
// any rule already present for (src, read).
func (m *Machine) AddTransition(src, read, dst, write string, move Move) error {
	read, write = symbol.Normalize(read), symbol.Normalize(write)
	for _, sym := range []string{read, write} {
		if err := m.checkSymbol("add_transition", sym); err != nil {
			return err
		}
	}
	if move != Left && move != Right {
		return ir.Precondition("add_transition", move.String(), ir.ErrInvalidMove)
	}
	s, err := m.lookup("add_transition", src)
	if err != nil {
		return err
	}
	d, err := m.lookup("add_transition", dst)
	if err != nil {
		return err
	}

	m.states.At(s).Edges[read] = rule{to: d, write: write, move: move}
	if read != m.blank {
		m.inputAlphabet.Add(read)
	}
	m.tapeAlphabet.Add(read)
	m.tapeAlphabet.Add(write)
	return nil
}

// RemoveTransition removes the rule for (src, read). It reports whether one
// existed.
func (m *Machine) RemoveTransition(src, read string) bool {
	s, ok := m.states.Lookup(symbol.Normalize(src))
	if !ok {
		return false
	}
	e := m.states.At(s).Edges
	read = symbol.Normalize(read)
	if _, ok := e[read]; !ok {
		return false
	}
	delete(e, read)
	return true
}

// RemoveState deletes a state and every rule into or out of it.
func (m *Machine) RemoveState(name string) bool {
	return m.states.Remove(symbol.Normalize(name), func(e edges, removed int) edges {
		for read, r := range e {
			to, ok := arena.Shift(r.to, removed)
			if !ok {
				delete(e, read)
				continue
			}
			r.to = to
			e[read] = r
		}
		return e
	})
}

// RenameState relabels a state.
func (m *Machine) RenameState(oldName, newName string) error {
	if strings.Contains(newName, ir.KeySeparator) {
		return ir.Precondition("rename_state", newName, ir.ErrKeySeparator)
	}
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

// SetFinal marks or unmarks name as final.
func (m *Machine) SetFinal(name string, final bool) error {
	i, err := m.lookup("set_final", name)
	if err != nil {
		return err
	}
	m.states.At(i).Final = final
	return nil
}

// States returns every state label in ascending order.
func (m *Machine) States() []string { return m.states.Names() }

// Start returns the start state label.
func (m *Machine) Start() (string, bool) { return m.states.StartName() }

// FinalStates returns the final states in ascending order.
func (m *Machine) FinalStates() []string { return m.states.FinalNames() }

// InputAlphabet returns every read symbol other than the blank.
func (m *Machine) InputAlphabet() []string { return m.inputAlphabet.Sorted() }

// TapeAlphabet returns every symbol read or written, plus the blank.
func (m *Machine) TapeAlphabet() []string {
	s := m.tapeAlphabet.Clone()
	s.Add(m.blank)
	return s.Sorted()
}

// Transition is one rule of the machine.
type Transition struct {
	Src   string `json:"src"`
	Read  string `json:"read"`
	Dst   string `json:"dst"`
	Write string `json:"write"`
	Move  Move   `json:"move"`
}

// Transitions lists every rule ordered by source then read symbol.
func (m *Machine) Transitions() []Transition {
	var out []Transition
	for i := 0; i < m.states.Len(); i++ {
		slot := m.states.At(i)
		for read, r := range slot.Edges {
			out = append(out, Transition{
				Src: slot.Name, Read: read,
				Dst: m.states.Name(r.to), Write: r.write, Move: r.move,
			})
		}
	}
	slices.SortFunc(out, func(x, y Transition) int {
		return cmp.Or(strings.Compare(x.Src, y.Src), strings.Compare(x.Read, y.Read))
	})
	return out
}

// Clone returns an independent copy.
func (m *Machine) Clone() *Machine {
	c := *m
	c.states = m.states.Clone(maps.Clone[edges])
	c.inputAlphabet = m.inputAlphabet.Clone()
	c.tapeAlphabet = m.tapeAlphabet.Clone()
	return &c
}
