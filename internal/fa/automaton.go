// Package fa implements nondeterministic and deterministic finite automata:
// epsilon-closure, longest-match simulation over multi-character symbols,
// subset construction, minimization and right-linear grammar extraction.
package fa

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/arthurvalves/IC-Tomato/internal/arena"
	"github.com/arthurvalves/IC-Tomato/internal/ir"
	"github.com/arthurvalves/IC-Tomato/internal/symbol"
)

// indexSet is a set of arena indices.
type indexSet map[int]struct{}

// edges is the adjacency of one state, keyed by symbol.
type edges map[string]indexSet

// Automaton is a finite automaton over multi-character symbols.
// The zero value is not usable; construct with New.
type Automaton struct {
	states   *arena.Arena[edges]
	alphabet symbol.Set
	epsilon  string
	logger   *slog.Logger
}

// Option configures an Automaton.
type Option func(*Automaton)

// WithEpsilon sets the symbol that denotes an empty move. Default ir.Epsilon.
func WithEpsilon(eps string) Option {
	return func(a *Automaton) {
		if eps != "" {
			a.epsilon = symbol.Normalize(eps)
		}
	}
}

// WithLogger sets the logger used for load warnings. Default slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *Automaton) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an empty automaton.
func New(opts ...Option) *Automaton {
	a := &Automaton{
		states:   arena.New(func() edges { return make(edges) }),
		alphabet: symbol.NewSet(),
		epsilon:  ir.Epsilon,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// derive returns an empty automaton with the same sentinel and logger.
func (a *Automaton) derive() *Automaton {
	return New(WithEpsilon(a.epsilon), WithLogger(a.logger))
}

// StateOption sets flags on a state being added.
type StateOption func(*stateFlags)

type stateFlags struct {
	start bool
	final bool
}

// AsStart marks the state as the start state.
func AsStart() StateOption { return func(f *stateFlags) { f.start = true } }

// AsFinal marks the state as accepting.
func AsFinal() StateOption { return func(f *stateFlags) { f.final = true } }

// Epsilon returns the empty-move symbol of this automaton.
func (a *Automaton) Epsilon() string { return a.epsilon }

// AddState adds a state, or updates the flags of an existing one.
// The first state added while no start state is set becomes the start.
func (a *Automaton) AddState(name string, opts ...StateOption) error {
	name = symbol.Normalize(name)
	if name == "" {
		return ir.Precondition("add_state", name, ir.ErrEmptyName)
	}
	var f stateFlags
	for _, opt := range opts {
		opt(&f)
	}
	i, _ := a.states.Add(name)
	if f.start {
		a.states.SetStart(i)
	}
	if f.final {
		a.states.At(i).Final = true
	}
	return nil
}

// AddTransition adds dst to the targets of (src, sym). Both states must exist.
func (a *Automaton) AddTransition(src, sym, dst string) error {
	sym = symbol.Normalize(sym)
	if err := a.checkSymbol("add_transition", sym); err != nil {
		return err
	}
	s, err := a.lookup("add_transition", src)
	if err != nil {
		return err
	}
	d, err := a.lookup("add_transition", dst)
	if err != nil {
		return err
	}
	a.link(s, sym, d)
	return nil
}

func (a *Automaton) link(src int, sym string, dst int) {
	e := a.states.At(src).Edges
	if e[sym] == nil {
		e[sym] = make(indexSet)
	}
	e[sym][dst] = struct{}{}
	if sym != a.epsilon {
		a.alphabet.Add(sym)
	}
}

func (a *Automaton) checkSymbol(op, sym string) error {
	if sym == "" {
		return ir.Precondition(op, sym, ir.ErrEmptySymbol)
	}
	if sym == ir.Epsilon && a.epsilon != ir.Epsilon {
		return ir.Precondition(op, sym, ir.ErrReservedSymbol)
	}
	return nil
}

func (a *Automaton) lookup(op, name string) (int, error) {
	i, ok := a.states.Lookup(symbol.Normalize(name))
	if !ok {
		return 0, ir.Precondition(op, name, ir.ErrUnknownState)
	}
	return i, nil
}

// RemoveTransition removes dst from the targets of (src, sym).
// The alphabet is left as is. It reports whether anything was removed.
func (a *Automaton) RemoveTransition(src, sym, dst string) bool {
	s, ok1 := a.states.Lookup(symbol.Normalize(src))
	d, ok2 := a.states.Lookup(symbol.Normalize(dst))
	if !ok1 || !ok2 {
		return false
	}
	sym = symbol.Normalize(sym)
	e := a.states.At(s).Edges
	if _, ok := e[sym][d]; !ok {
		return false
	}
	delete(e[sym], d)
	if len(e[sym]) == 0 {
		delete(e, sym)
	}
	return true
}

// RemoveState deletes a state and every transition into or out of it.
func (a *Automaton) RemoveState(name string) bool {
	return a.states.Remove(symbol.Normalize(name), func(e edges, removed int) edges {
		for sym, ts := range e {
			next := make(indexSet, len(ts))
			for t := range ts {
				if nt, ok := arena.Shift(t, removed); ok {
					next[nt] = struct{}{}
				}
			}
			if len(next) == 0 {
				delete(e, sym)
				continue
			}
			e[sym] = next
		}
		return e
	})
}

// RenameState relabels a state everywhere it appears.
func (a *Automaton) RenameState(oldName, newName string) error {
	return a.states.Rename(symbol.Normalize(oldName), symbol.Normalize(newName))
}

// SetStart makes name the start state.
func (a *Automaton) SetStart(name string) error {
	i, err := a.lookup("set_start", name)
	if err != nil {
		return err
	}
	a.states.SetStart(i)
	return nil
}

// SetFinal marks or unmarks name as accepting.
func (a *Automaton) SetFinal(name string, final bool) error {
	i, err := a.lookup("set_final", name)
	if err != nil {
		return err
	}
	a.states.At(i).Final = final
	return nil
}

// States returns every state label in ascending order.
func (a *Automaton) States() []string { return a.states.Names() }

// Start returns the start state label.
func (a *Automaton) Start() (string, bool) { return a.states.StartName() }

// FinalStates returns the accepting states in ascending order.
func (a *Automaton) FinalStates() []string { return a.states.FinalNames() }

// Alphabet returns every non-empty symbol ever used, in ascending order.
func (a *Automaton) Alphabet() []string { return a.alphabet.Sorted() }

// Transition is one (src, symbol, dst) triple.
type Transition struct {
	Src    string `json:"src"`
	Symbol string `json:"symbol"`
	Dst    string `json:"dst"`
}

// Transitions lists the relation sorted by source, symbol, then destination.
func (a *Automaton) Transitions() []Transition {
	var out []Transition
	for i := 0; i < a.states.Len(); i++ {
		slot := a.states.At(i)
		for sym, ts := range slot.Edges {
			for t := range ts {
				out = append(out, Transition{Src: slot.Name, Symbol: sym, Dst: a.states.Name(t)})
			}
		}
	}
	slices.SortFunc(out, func(x, y Transition) int {
		if c := strings.Compare(x.Src, y.Src); c != 0 {
			return c
		}
		if c := strings.Compare(x.Symbol, y.Symbol); c != 0 {
			return c
		}
		return strings.Compare(x.Dst, y.Dst)
	})
	return out
}

// Clone returns an independent copy.
func (a *Automaton) Clone() *Automaton {
	return &Automaton{
		states:   a.states.Clone(cloneEdges),
		alphabet: a.alphabet.Clone(),
		epsilon:  a.epsilon,
		logger:   a.logger,
	}
}

func cloneEdges(e edges) edges {
	out := make(edges, len(e))
	for sym, ts := range e {
		c := make(indexSet, len(ts))
		for t := range ts {
			c[t] = struct{}{}
		}
		out[sym] = c
	}
	return out
}

// IsDFA reports whether every (state, symbol) pair has exactly one target, no
// transition is an empty move, and every symbol is one character long.
func (a *Automaton) IsDFA() bool {
	for i := 0; i < a.states.Len(); i++ {
		for sym, ts := range a.states.At(i).Edges {
			if len(ts) != 1 || sym == a.epsilon || symbol.Len(sym) > 1 {
				return false
			}
		}
	}
	return true
}
