package pda

import (
	"maps"
	"slices"

	"github.com/arthurvalves/IC-Tomato/internal/arena"
	"github.com/arthurvalves/IC-Tomato/internal/ir"
	"github.com/arthurvalves/IC-Tomato/internal/symbol"
)

func (p *Automaton) toWire(sym string) string {
	if sym == p.epsilon {
		return ir.Epsilon
	}
	return sym
}

func (p *Automaton) fromWire(sym string) string {
	sym = symbol.Normalize(sym)
	if sym == ir.Epsilon {
		return p.epsilon
	}
	return sym
}

// ToDocument snapshots the automaton. Transitions are keyed "src,input,pop"
// and each alternative is a [dst, push] pair; the empty-move symbol is
// written as ir.Epsilon.
func (p *Automaton) ToDocument() ir.PDADocument {
	doc := ir.PDADocument{
		Kind:             ir.KindPDA,
		States:           p.States(),
		InputAlphabet:    p.InputAlphabet(),
		StackAlphabet:    p.StackAlphabet(),
		StartStackSymbol: p.startStack,
		FinalStates:      p.FinalStates(),
		Transitions:      make(map[string][][]string),
	}
	doc.StartState, _ = p.Start()

	for _, t := range p.Transitions() {
		k := ir.PDAKey(t.Src, p.toWire(t.Input), p.toWire(t.Pop))
		doc.Transitions[k] = append(doc.Transitions[k], []string{t.Dst, p.toWire(t.Push)})
	}
	for k := range doc.Transitions {
		slices.SortFunc(doc.Transitions[k], func(x, y []string) int { return slices.Compare(x, y) })
	}
	return doc
}

// ToJSON encodes the automaton as an indented JSON document.
func (p *Automaton) ToJSON() ([]byte, error) {
	return ir.EncodeDocument(p.ToDocument())
}

// MarshalJSON implements json.Marshaler.
func (p *Automaton) MarshalJSON() ([]byte, error) {
	return p.ToJSON()
}

// FromJSON decodes a document produced by ToJSON. Malformed records are
// skipped and returned as warnings.
func FromJSON(data []byte, opts ...Option) (*Automaton, []ir.Warning, error) {
	doc, warnings, err := ir.DecodePDA(data)
	if err != nil {
		return nil, nil, err
	}
	p, more := FromDocument(doc, opts...)
	w := ir.Warnings{Kind: ir.KindPDA, Logger: p.logger}
	w.Extend(warnings...)
	return p, append(w.List, more...), nil
}

// FromDocument rebuilds an automaton from a snapshot. The document's start
// stack symbol replaces the one set by options.
func FromDocument(doc ir.PDADocument, opts ...Option) (*Automaton, []ir.Warning) {
	p := New(opts...)
	if doc.StartStackSymbol != "" {
		p.startStack = p.fromWire(doc.StartStackSymbol)
	}
	w := ir.Warnings{Kind: ir.KindPDA, Logger: p.logger}

	for _, name := range doc.States {
		if err := p.AddState(name); err != nil {
			w.Add("states", err.Error())
		}
	}
	p.states.SetStart(arena.NoState)
	if doc.StartState != "" {
		if err := p.SetStart(doc.StartState); err != nil {
			w.Add("start_state", err.Error())
		}
	}
	if p.states.EnsureStart() {
		name, _ := p.Start()
		w.Add("start_state", "missing or unknown, using "+name)
	}
	for _, name := range doc.FinalStates {
		if err := p.SetFinal(name, true); err != nil {
			w.Add("final_states", err.Error())
		}
	}
	for _, sym := range doc.InputAlphabet {
		if sym = p.fromWire(sym); sym != "" && sym != p.epsilon {
			p.inputAlphabet.Add(sym)
		}
	}
	for _, sym := range doc.StackAlphabet {
		if sym = p.fromWire(sym); sym != "" && sym != p.epsilon {
			p.stackAlphabet.Add(sym)
		}
	}

	for _, k := range slices.Sorted(maps.Keys(doc.Transitions)) {
		src, input, pop, ok := ir.SplitPDAKey(k)
		if !ok {
			w.Add(k, "malformed transition key")
			continue
		}
		for _, alt := range doc.Transitions[k] {
			if len(alt) != 2 {
				w.Add(k, "destination must be [dst, push]")
				continue
			}
			err := p.AddTransition(src, p.fromWire(input), p.fromWire(pop), alt[0], p.fromWire(alt[1]))
			if err != nil {
				w.Add(k, err.Error())
			}
		}
	}
	return p, w.List
}
