package pda

import (
	"slices"
	"strconv"
	"strings"

	"github.com/arthurvalves/IC-Tomato/internal/arena"
	"github.com/arthurvalves/IC-Tomato/internal/symbol"
)

// Configuration is one point of a run: a state, how many input characters
// were consumed, and the stack with its top as the last element.
type Configuration struct {
	State string   `json:"state"`
	Pos   int      `json:"pos"`
	Stack []string `json:"stack"`
}

// Step is one entry of a simulation history. The configuration shown is a
// representative of the active set (the smallest by state, then stack);
// Active is the size of the whole set.
type Step struct {
	Configuration
	Active    int  `json:"active"`
	Truncated bool `json:"truncated,omitempty"`
}

// config is the internal form of a configuration. The input position is
// shared by a whole set, so it is kept outside.
type config struct {
	state int
	stack []string
}

func (c config) id() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(c.state))
	for _, s := range c.stack {
		b.WriteByte(0)
		b.WriteString(s)
	}
	return b.String()
}

// configSet holds configurations keyed by id.
type configSet map[string]config

func (s configSet) add(c config) bool {
	id := c.id()
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = c
	return true
}

// apply follows every move of state under k, popping top first when pop is set.
func (p *Automaton) apply(c config, k key, pop bool, emit func(config)) {
	ms := p.states.At(c.state).Edges[k]
	if len(ms) == 0 {
		return
	}
	base := c.stack
	if pop {
		base = c.stack[:len(c.stack)-1]
	}
	for m := range ms {
		pushed := p.pushed(m.push)
		stack := make([]string, 0, len(base)+len(pushed))
		stack = append(stack, base...)
		stack = append(stack, pushed...)
		emit(config{state: m.to, stack: stack})
	}
}

// step applies the moves reading input (or nothing, when input is the
// empty-move symbol) from c: first those that leave the stack alone, then
// those that pop the current top.
func (p *Automaton) step(c config, input string, emit func(config)) {
	p.apply(c, key{input: input, pop: p.epsilon}, false, emit)
	if n := len(c.stack); n > 0 {
		p.apply(c, key{input: input, pop: c.stack[n-1]}, true, emit)
	}
}

// closure extends seed with every configuration reachable through empty
// moves, breadth first. It stops growing once the set holds maxConfigs
// configurations and reports that it did.
func (p *Automaton) closure(seed configSet) (configSet, bool) {
	out := make(configSet, len(seed))
	queue := make([]config, 0, len(seed))
	for _, c := range sortConfigs(p, seed) {
		out.add(c)
		queue = append(queue, c)
	}

	truncated := false
	for len(queue) > 0 && !truncated {
		c := queue[0]
		queue = queue[1:]
		p.step(c, p.epsilon, func(n config) {
			if _, seen := out[n.id()]; seen || truncated {
				return
			}
			if len(out) >= p.maxConfigs {
				truncated = true
				return
			}
			out.add(n)
			queue = append(queue, n)
		})
	}
	return out, truncated
}

// move applies every move consuming sym. No closure is taken.
func (p *Automaton) move(from configSet, sym string) configSet {
	out := make(configSet)
	for _, c := range from {
		p.step(c, sym, func(n config) { out.add(n) })
	}
	return out
}

func compareConfigs(p *Automaton, x, y config) int {
	if c := strings.Compare(p.states.Name(x.state), p.states.Name(y.state)); c != 0 {
		return c
	}
	return slices.Compare(x.stack, y.stack)
}

func sortConfigs(p *Automaton, set configSet) []config {
	out := make([]config, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	slices.SortFunc(out, func(x, y config) int { return compareConfigs(p, x, y) })
	return out
}

func (p *Automaton) export(set configSet, pos int) []Configuration {
	sorted := sortConfigs(p, set)
	out := make([]Configuration, len(sorted))
	for i, c := range sorted {
		out[i] = Configuration{State: p.states.Name(c.state), Pos: pos, Stack: slices.Clone(c.stack)}
	}
	return out
}

func (p *Automaton) resolve(op string, cs []Configuration) (configSet, error) {
	out := make(configSet, len(cs))
	for _, c := range cs {
		i, err := p.lookup(op, c.State)
		if err != nil {
			return nil, err
		}
		stack := make([]string, len(c.Stack))
		for j, s := range c.Stack {
			stack[j] = symbol.Normalize(s)
		}
		out.add(config{state: i, stack: stack})
	}
	return out, nil
}

// EpsilonClosure returns the configurations reachable from cs through empty
// moves, cs included, sorted by state then stack. The input position of the
// result is taken from the first configuration. The bool reports that the
// configuration budget was exhausted.
func (p *Automaton) EpsilonClosure(cs ...Configuration) ([]Configuration, bool, error) {
	seed, err := p.resolve("epsilon_closure", cs)
	if err != nil {
		return nil, false, err
	}
	out, truncated := p.closure(seed)
	return p.export(out, firstPos(cs)), truncated, nil
}

// Move returns the configurations reached by consuming sym, with no closure.
// Positions advance by the length of sym.
func (p *Automaton) Move(cs []Configuration, sym string) ([]Configuration, error) {
	from, err := p.resolve("move", cs)
	if err != nil {
		return nil, err
	}
	sym = symbol.Normalize(sym)
	return p.export(p.move(from, sym), firstPos(cs)+symbol.Len(sym)), nil
}

func firstPos(cs []Configuration) int {
	if len(cs) == 0 {
		return 0
	}
	return cs[0].Pos
}

// inputSymbols returns every non-empty input symbol on a current transition,
// longest first.
func (p *Automaton) inputSymbols() []string {
	set := symbol.NewSet()
	for i := 0; i < p.states.Len(); i++ {
		for k := range p.states.At(i).Edges {
			if k.input != p.epsilon {
				set.Add(k.input)
			}
		}
	}
	out := set.Sorted()
	symbol.SortLongestFirst(out)
	return out
}

// SimulateHistory runs the automaton on input, starting from the start state
// with the start stack symbol on the stack.
//
// Each step takes the longest input symbol that prefixes the remaining input
// and leads to at least one configuration; ties go to the byte-wise smaller
// symbol. When no symbol qualifies the run is stuck and stops. The input is
// accepted when it is fully consumed and some configuration of the final set
// is in a final state; the stack does not matter.
func (p *Automaton) SimulateHistory(input string) ([]Step, bool) {
	start := p.states.Start()
	if start == arena.NoState {
		return []Step{}, false
	}

	rest := symbol.Normalize(input)
	pos := 0
	current, truncated := p.closure(configSet{"": config{state: start, stack: []string{p.startStack}}})
	history := []Step{p.snapshot(current, pos, truncated)}
	symbols := p.inputSymbols()

	for rest != "" {
		var next configSet
		var consumed string
		for _, sym := range symbols {
			if !strings.HasPrefix(rest, sym) {
				continue
			}
			moved := p.move(current, sym)
			if len(moved) == 0 {
				continue
			}
			next, truncated = p.closure(moved)
			consumed = sym
			break
		}
		if consumed == "" {
			return history, false
		}
		rest = rest[len(consumed):]
		pos += symbol.Len(consumed)
		current = next
		history = append(history, p.snapshot(current, pos, truncated))
	}

	for _, c := range current {
		if p.states.At(c.state).Final {
			return history, true
		}
	}
	return history, false
}

// Simulate reports whether the automaton accepts input.
func (p *Automaton) Simulate(input string) bool {
	_, accepted := p.SimulateHistory(input)
	return accepted
}

func (p *Automaton) snapshot(set configSet, pos int, truncated bool) Step {
	if truncated {
		p.logger.Warn("configuration budget exhausted",
			"limit", p.maxConfigs,
			"pos", pos)
	}
	rep := sortConfigs(p, set)[0]
	return Step{
		Configuration: Configuration{State: p.states.Name(rep.state), Pos: pos, Stack: slices.Clone(rep.stack)},
		Active:        len(set),
		Truncated:     truncated,
	}
}
