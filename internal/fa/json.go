package fa

import (
	"slices"
	"strings"

	"github.com/arthurvalves/IC-Tomato/internal/arena"
	"github.com/arthurvalves/IC-Tomato/internal/ir"
	"github.com/arthurvalves/IC-Tomato/internal/symbol"
)

// ToDocument snapshots the automaton. Every list is sorted and the empty-move
// symbol is written as ir.Epsilon.
func (a *Automaton) ToDocument() ir.FADocument {
	doc := ir.FADocument{
		Kind:        ir.KindFA,
		States:      a.States(),
		FinalStates: a.FinalStates(),
		Alphabet:    a.Alphabet(),
		Transitions: []ir.FATransition{},
	}
	doc.StartState, _ = a.Start()

	for _, i := range a.states.Order() {
		e := a.states.At(i).Edges
		syms := make([]string, 0, len(e))
		for sym := range e {
			syms = append(syms, sym)
		}
		wire := make(map[string]string, len(syms))
		for _, sym := range syms {
			wire[sym] = a.toWire(sym)
		}
		slices.SortFunc(syms, func(x, y string) int { return strings.Compare(wire[x], wire[y]) })
		for _, sym := range syms {
			doc.Transitions = append(doc.Transitions, ir.FATransition{
				Src:    a.states.Name(i),
				Symbol: wire[sym],
				Dsts:   a.labels(e[sym]),
			})
		}
	}
	return doc
}

func (a *Automaton) toWire(sym string) string {
	if sym == a.epsilon {
		return ir.Epsilon
	}
	return sym
}

// ToJSON encodes the automaton as an indented JSON document.
func (a *Automaton) ToJSON() ([]byte, error) {
	return ir.EncodeDocument(a.ToDocument())
}

// MarshalJSON implements json.Marshaler.
func (a *Automaton) MarshalJSON() ([]byte, error) {
	return a.ToJSON()
}

// FromJSON decodes a document produced by ToJSON. Malformed transition
// records are skipped and returned as warnings; only unreadable JSON is an error.
func FromJSON(data []byte, opts ...Option) (*Automaton, []ir.Warning, error) {
	doc, warnings, err := ir.DecodeFA(data)
	if err != nil {
		return nil, nil, err
	}
	a, more := FromDocument(doc, opts...)
	w := ir.Warnings{Kind: ir.KindFA, Logger: a.logger}
	w.Extend(warnings...)
	return a, append(w.List, more...), nil
}

// FromDocument rebuilds an automaton from a snapshot. Records that reference
// unknown states are skipped with a warning. A missing or unknown start state
// falls back to the smallest state label.
func FromDocument(doc ir.FADocument, opts ...Option) (*Automaton, []ir.Warning) {
	a := New(opts...)
	l := ir.Warnings{Kind: ir.KindFA, Logger: a.logger}

	for _, name := range doc.States {
		if err := a.AddState(name); err != nil {
			l.Add("states", err.Error())
		}
	}
	a.states.SetStart(arena.NoState)
	if doc.StartState != "" {
		if err := a.SetStart(doc.StartState); err != nil {
			l.Add("start_state", err.Error())
		}
	}
	if a.states.EnsureStart() {
		name, _ := a.Start()
		l.Add("start_state", "missing or unknown, using "+name)
	}

	for _, name := range doc.FinalStates {
		if err := a.SetFinal(name, true); err != nil {
			l.Add("final_states", err.Error())
		}
	}
	for _, sym := range doc.Alphabet {
		sym = symbol.Normalize(sym)
		if sym == "" || sym == ir.Epsilon || sym == a.epsilon {
			l.Add("alphabet", "reserved or empty symbol "+sym)
			continue
		}
		a.alphabet.Add(sym)
	}

	for _, t := range doc.Transitions {
		sym := symbol.Normalize(t.Symbol)
		switch {
		case sym == ir.Epsilon:
			sym = a.epsilon
		case sym == a.epsilon:
			l.Add(t.Src+","+t.Symbol, "symbol collides with the empty-move symbol")
			continue
		}
		for _, dst := range t.Dsts {
			if err := a.AddTransition(t.Src, sym, dst); err != nil {
				l.Add(t.Src+","+t.Symbol, err.Error())
			}
		}
	}
	return a, l.List
}
