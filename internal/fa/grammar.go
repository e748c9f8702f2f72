package fa

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
	"github.com/arthurvalves/IC-Tomato/internal/symbol"
)

// Production is one right-hand side of a right-linear grammar. The empty
// production has neither a terminal nor a successor; a terminating production
// has a terminal and no successor.
type Production struct {
	Terminal string `json:"terminal,omitempty"`
	Next     string `json:"next,omitempty"`
}

// IsEmpty reports whether p is the empty production.
func (p Production) IsEmpty() bool { return p.Terminal == "" && p.Next == "" }

func (p Production) String() string {
	switch {
	case p.IsEmpty():
		return "ε"
	case p.Next == "":
		return p.Terminal
	default:
		return p.Terminal + " " + p.Next
	}
}

func compareProductions(x, y Production) int {
	if c := cmp.Compare(x.Terminal, y.Terminal); c != 0 {
		return c
	}
	return cmp.Compare(x.Next, y.Next)
}

// Grammar is a right-linear grammar whose nonterminals are state labels.
type Grammar struct {
	Strict       bool                    `json:"strict"`
	Start        string                  `json:"start"`
	Terminals    []string                `json:"terminals"`
	Nonterminals []string                `json:"nonterminals"`
	Productions  map[string][]Production `json:"productions"`
}

// String renders the grammar as text. Heads appear in ascending order and
// each head's alternatives are sorted with the empty production first.
func (g *Grammar) String() string {
	mode := "extended"
	if g.Strict {
		mode = "strict"
	}
	lines := []string{
		fmt.Sprintf("# Regular grammar (%s)", mode),
		"# Terminals: " + strings.Join(g.Terminals, ", "),
		"# Nonterminals: " + strings.Join(g.Nonterminals, ", "),
		"",
		"S = " + g.Start,
		"",
	}
	for _, head := range g.Nonterminals {
		rhs := g.Productions[head]
		if len(rhs) == 0 {
			continue
		}
		parts := make([]string, len(rhs))
		for i, p := range rhs {
			parts[i] = p.String()
		}
		lines = append(lines, head+" -> "+strings.Join(parts, " | "))
	}
	return strings.Join(lines, "\n")
}

// productionSet collects alternatives of one head without duplicates.
type productionSet map[Production]struct{}

func (s productionSet) sorted() []Production {
	out := make([]Production, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.SortFunc(out, compareProductions)
	return out
}

// RegularGrammar derives a right-linear grammar generating the language of a.
//
// Every state p gets the empty production when its closure reaches a final
// state. For each non-empty move r -sym-> d with r in the closure of p, p gets
// "sym d", plus "sym" alone when d is final.
//
// In strict mode every multi-character terminal is unrolled into a chain of
// single-character productions through fresh nonterminals named __G0, __G1,
// ..., skipping names already used by states.
func (a *Automaton) RegularGrammar(strict bool) (*Grammar, error) {
	start, ok := a.states.StartName()
	if !ok {
		return nil, ir.Precondition("regular_grammar", "", ir.ErrNoStartState)
	}

	prods := make(map[string]productionSet)
	for _, p := range a.states.Order() {
		head := a.states.Name(p)
		set := make(productionSet)
		closure := a.closure(indexSet{p: {}})
		if a.anyFinal(closure) {
			set[Production{}] = struct{}{}
		}
		for r := range closure {
			for sym, ts := range a.states.At(r).Edges {
				if sym == a.epsilon {
					continue
				}
				for d := range ts {
					set[Production{Terminal: sym, Next: a.states.Name(d)}] = struct{}{}
					if a.states.At(d).Final {
						set[Production{Terminal: sym}] = struct{}{}
					}
				}
			}
		}
		prods[head] = set
	}

	g := &Grammar{Strict: strict, Start: start, Productions: make(map[string][]Production)}
	if !strict {
		g.Terminals = a.Alphabet()
		g.Nonterminals = a.States()
		for head, set := range prods {
			if len(set) > 0 {
				g.Productions[head] = set.sorted()
			}
		}
		return g, nil
	}

	a.strictGrammar(g, prods)
	return g, nil
}

func (a *Automaton) strictGrammar(g *Grammar, prods map[string]productionSet) {
	nonterminals := symbol.NewSet(a.States()...)
	strict := make(map[string]productionSet)
	add := func(head string, p Production) {
		if strict[head] == nil {
			strict[head] = make(productionSet)
		}
		strict[head][p] = struct{}{}
	}

	counter := 0
	fresh := func() string {
		for {
			name := fmt.Sprintf("__G%d", counter)
			counter++
			if _, used := a.states.Lookup(name); !used {
				nonterminals.Add(name)
				return name
			}
		}
	}

	for _, head := range a.States() {
		for _, p := range prods[head].sorted() {
			chars := symbol.Chars(p.Terminal)
			if len(chars) <= 1 {
				add(head, p)
				continue
			}
			prev := head
			for i, c := range chars {
				if i == len(chars)-1 {
					add(prev, Production{Terminal: c, Next: p.Next})
					break
				}
				nt := fresh()
				add(prev, Production{Terminal: c, Next: nt})
				prev = nt
			}
		}
	}

	terminals := symbol.NewSet()
	for i := 0; i < a.states.Len(); i++ {
		for sym := range a.states.At(i).Edges {
			if sym == a.epsilon {
				continue
			}
			for _, c := range symbol.Chars(sym) {
				terminals.Add(c)
			}
		}
	}

	g.Terminals = terminals.Sorted()
	g.Nonterminals = nonterminals.Sorted()
	for head, set := range strict {
		g.Productions[head] = set.sorted()
	}
}
