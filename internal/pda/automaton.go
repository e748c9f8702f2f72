// Package pda implements nondeterministic pushdown automata that accept by
// final state. Input symbols may be several characters long; the stack holds
// one symbol per element and push strings are split into characters.
package pda

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"

	"github.com/arthurvalves/IC-Tomato/internal/arena"
	"github.com/arthurvalves/IC-Tomato/internal/ir"
	"github.com/arthurvalves/IC-Tomato/internal/symbol"
)

// DefaultMaxConfigurations bounds the size of one configuration closure.
const DefaultMaxConfigurations = 10000

// DefaultStartStackSymbol is the bottom-of-stack marker.
const DefaultStartStackSymbol = "Z"

// key selects the moves of one state: the input consumed and the stack top
// popped, either of which may be the empty-move symbol.
type key struct {
	input string
	pop   string
}

// move is one alternative: the destination index and the string pushed.
type move struct {
	to   int
	push string
}

type moves map[move]struct{}

type edges map[key]moves

// Automaton is a pushdown automaton. Construct with New.
type Automaton struct {
	states        *arena.Arena[edges]
	inputAlphabet symbol.Set
	stackAlphabet symbol.Set
	epsilon       string
	startStack    string
	maxConfigs    int
	logger        *slog.Logger
}

// Option configures an Automaton.
type Option func(*Automaton)

// WithEpsilon sets the empty-move symbol. Default ir.Epsilon.
func WithEpsilon(eps string) Option {
	return func(p *Automaton) {
		if eps != "" {
			p.epsilon = symbol.Normalize(eps)
		}
	}
}

// WithStartStackSymbol sets the symbol initially on the stack. Default "Z".
func WithStartStackSymbol(s string) Option {
	return func(p *Automaton) {
		if s != "" {
			p.startStack = symbol.Normalize(s)
		}
	}
}

// WithMaxConfigurations bounds how many configurations one closure may hold.
// Non-positive values keep DefaultMaxConfigurations.
func WithMaxConfigurations(n int) Option {
	return func(p *Automaton) {
		if n > 0 {
			p.maxConfigs = n
		}
	}
}

// WithLogger sets the logger. Default slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Automaton) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates an empty pushdown automaton.
func New(opts ...Option) *Automaton {
	p := &Automaton{
		states:        arena.New(func() edges { return make(edges) }),
		inputAlphabet: symbol.NewSet(),
		stackAlphabet: symbol.NewSet(),
		epsilon:       ir.Epsilon,
		startStack:    DefaultStartStackSymbol,
		maxConfigs:    DefaultMaxConfigurations,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// StateOption sets flags on a state being added.
type StateOption func(*stateFlags)

type stateFlags struct{ start, final bool }

// AsStart marks the state as the start state.
func AsStart() StateOption { return func(f *stateFlags) { f.start = true } }

// AsFinal marks the state as accepting.
func AsFinal() StateOption { return func(f *stateFlags) { f.final = true } }

// Epsilon returns the empty-move symbol.
func (p *Automaton) Epsilon() string { return p.epsilon }

// StartStackSymbol returns the symbol initially on the stack.
func (p *Automaton) StartStackSymbol() string { return p.startStack }

// AddState adds a state or updates the flags of an existing one.
func (p *Automaton) AddState(name string, opts ...StateOption) error {
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
	i, _ := p.states.Add(name)
	if f.start {
		p.states.SetStart(i)
	}
	if f.final {
		p.states.At(i).Final = true
	}
	return nil
}

func (p *Automaton) lookup(op, name string) (int, error) {
	i, ok := p.states.Lookup(symbol.Normalize(name))
	if !ok {
		return 0, ir.Precondition(op, name, ir.ErrUnknownState)
	}
	return i, nil
}

func (p *Automaton) checkSymbol(op, sym string) error {
	if sym == "" {
		return ir.Precondition(op, sym, ir.ErrEmptySymbol)
	}
	if sym == ir.Epsilon && p.epsilon != ir.Epsilon {
		return ir.Precondition(op, sym, ir.ErrReservedSymbol)
	}
	return nil
}

// AddTransition adds the move (src, input, pop) -> (dst, push). Any of input,
// pop and push may be the empty-move symbol. push is pushed character by
// character so its last character ends on top.
func (p *Automaton) AddTransition(src, input, pop, dst, push string) error {
	input, pop, push = symbol.Normalize(input), symbol.Normalize(pop), symbol.Normalize(push)
	for _, sym := range []string{input, pop, push} {
		if err := p.checkSymbol("add_transition", sym); err != nil {
			return err
		}
	}
	// Pop is the last part of a transition key and may hold the separator.
	if strings.Contains(input, ir.KeySeparator) {
		return ir.Precondition("add_transition", input, ir.ErrKeySeparator)
	}
	s, err := p.lookup("add_transition", src)
	if err != nil {
		return err
	}
	d, err := p.lookup("add_transition", dst)
	if err != nil {
		return err
	}
	p.link(s, key{input: input, pop: pop}, move{to: d, push: push})
	return nil
}

func (p *Automaton) link(src int, k key, m move) {
	e := p.states.At(src).Edges
	if e[k] == nil {
		e[k] = make(moves)
	}
	e[k][m] = struct{}{}

	if k.input != p.epsilon {
		p.inputAlphabet.Add(k.input)
	}
	if k.pop != p.epsilon {
		p.stackAlphabet.Add(k.pop)
	}
	for _, c := range p.pushed(m.push) {
		p.stackAlphabet.Add(c)
	}
}

// pushed returns the stack elements a push string adds, bottom first.
func (p *Automaton) pushed(push string) []string {
	if push == p.epsilon {
		return nil
	}
	chars := symbol.Chars(push)
	out := chars[:0]
	for _, c := range chars {
		if c != p.epsilon {
			out = append(out, c)
		}
	}
	return out
}

// RemoveTransition removes one alternative. It reports whether it existed.
func (p *Automaton) RemoveTransition(src, input, pop, dst, push string) bool {
	s, ok1 := p.states.Lookup(symbol.Normalize(src))
	d, ok2 := p.states.Lookup(symbol.Normalize(dst))
	if !ok1 || !ok2 {
		return false
	}
	k := key{input: symbol.Normalize(input), pop: symbol.Normalize(pop)}
	m := move{to: d, push: symbol.Normalize(push)}
	e := p.states.At(s).Edges
	if _, ok := e[k][m]; !ok {
		return false
	}
	delete(e[k], m)
	if len(e[k]) == 0 {
		delete(e, k)
	}
	return true
}

// RemoveState deletes a state and every move into or out of it.
func (p *Automaton) RemoveState(name string) bool {
	return p.states.Remove(symbol.Normalize(name), func(e edges, removed int) edges {
		for k, ms := range e {
			next := make(moves, len(ms))
			for m := range ms {
				if to, ok := arena.Shift(m.to, removed); ok {
					next[move{to: to, push: m.push}] = struct{}{}
				}
			}
			if len(next) == 0 {
				delete(e, k)
				continue
			}
			e[k] = next
		}
		return e
	})
}

// RenameState relabels a state.
func (p *Automaton) RenameState(oldName, newName string) error {
	if strings.Contains(newName, ir.KeySeparator) {
		return ir.Precondition("rename_state", newName, ir.ErrKeySeparator)
	}
	return p.states.Rename(symbol.Normalize(oldName), symbol.Normalize(newName))
}

// SetStart makes name the start state.
func (p *Automaton) SetStart(name string) error {
	i, err := p.lookup("set_start", name)
	if err != nil {
		return err
	}
	p.states.SetStart(i)
	return nil
}

// SetFinal marks or unmarks name as accepting.
func (p *Automaton) SetFinal(name string, final bool) error {
	i, err := p.lookup("set_final", name)
	if err != nil {
		return err
	}
	p.states.At(i).Final = final
	return nil
}

// States returns every state label in ascending order.
func (p *Automaton) States() []string { return p.states.Names() }

// Start returns the start state label.
func (p *Automaton) Start() (string, bool) { return p.states.StartName() }

// FinalStates returns the accepting states in ascending order.
func (p *Automaton) FinalStates() []string { return p.states.FinalNames() }

// InputAlphabet returns every non-empty input symbol ever used.
func (p *Automaton) InputAlphabet() []string { return p.inputAlphabet.Sorted() }

// StackAlphabet returns every stack symbol used, including the start symbol.
func (p *Automaton) StackAlphabet() []string {
	s := p.stackAlphabet.Clone()
	s.Add(p.startStack)
	return s.Sorted()
}

// Transition is one alternative of the relation.
type Transition struct {
	Src   string `json:"src"`
	Input string `json:"input"`
	Pop   string `json:"pop"`
	Dst   string `json:"dst"`
	Push  string `json:"push"`
}

func compareTransitions(x, y Transition) int {
	return cmp.Or(
		strings.Compare(x.Src, y.Src),
		strings.Compare(x.Input, y.Input),
		strings.Compare(x.Pop, y.Pop),
		strings.Compare(x.Dst, y.Dst),
		strings.Compare(x.Push, y.Push),
	)
}

// Transitions lists every alternative in sorted order.
func (p *Automaton) Transitions() []Transition {
	var out []Transition
	for i := 0; i < p.states.Len(); i++ {
		slot := p.states.At(i)
		for k, ms := range slot.Edges {
			for m := range ms {
				out = append(out, Transition{
					Src: slot.Name, Input: k.input, Pop: k.pop,
					Dst: p.states.Name(m.to), Push: m.push,
				})
			}
		}
	}
	slices.SortFunc(out, compareTransitions)
	return out
}

// Clone returns an independent copy.
func (p *Automaton) Clone() *Automaton {
	c := *p
	c.states = p.states.Clone(func(e edges) edges {
		out := make(edges, len(e))
		for k, ms := range e {
			cm := make(moves, len(ms))
			for m := range ms {
				cm[m] = struct{}{}
			}
			out[k] = cm
		}
		return out
	})
	c.inputAlphabet = p.inputAlphabet.Clone()
	c.stackAlphabet = p.stackAlphabet.Clone()
	return &c
}
