package mealy

import (
	"github.com/arthurvalves/IC-Tomato/internal/arena"
	"github.com/arthurvalves/IC-Tomato/internal/ir"
	"github.com/arthurvalves/IC-Tomato/internal/symbol"
)

// ToDocument snapshots the machine. The empty output is written as
// ir.Epsilon.
func (m *Machine) ToDocument() ir.MealyDocument {
	doc := ir.MealyDocument{
		Kind:           ir.KindMealy,
		States:         m.States(),
		InputAlphabet:  m.InputAlphabet(),
		OutputAlphabet: m.OutputAlphabet(),
		Transitions:    []ir.MealyTransition{},
	}
	doc.StartState, _ = m.Start()
	for _, t := range m.Transitions() {
		out := t.Output
		if out == m.epsilon {
			out = ir.Epsilon
		}
		doc.Transitions = append(doc.Transitions, ir.MealyTransition{Src: t.Src, Input: t.Input, Dst: t.Dst, Output: out})
	}
	return doc
}

// ToJSON encodes the machine as an indented JSON document.
func (m *Machine) ToJSON() ([]byte, error) {
	return ir.EncodeDocument(m.ToDocument())
}

// MarshalJSON implements json.Marshaler.
func (m *Machine) MarshalJSON() ([]byte, error) {
	return m.ToJSON()
}

// FromJSON decodes a document produced by ToJSON. Malformed records are
// skipped and returned as warnings.
func FromJSON(data []byte, opts ...Option) (*Machine, []ir.Warning, error) {
	doc, warnings, err := ir.DecodeMealy(data)
	if err != nil {
		return nil, nil, err
	}
	m, more := FromDocument(doc, opts...)
	w := ir.Warnings{Kind: ir.KindMealy, Logger: m.logger}
	w.Extend(warnings...)
	return m, append(w.List, more...), nil
}

// FromDocument rebuilds a machine from a snapshot.
func FromDocument(doc ir.MealyDocument, opts ...Option) (*Machine, []ir.Warning) {
	m := New(opts...)
	w := ir.Warnings{Kind: ir.KindMealy, Logger: m.logger}

	for _, name := range doc.States {
		if err := m.AddState(name); err != nil {
			w.Add("states", err.Error())
		}
	}
	m.states.SetStart(arena.NoState)
	if doc.StartState != "" {
		if err := m.SetStart(doc.StartState); err != nil {
			w.Add("start_state", err.Error())
		}
	}
	if m.states.EnsureStart() {
		name, _ := m.Start()
		w.Add("start_state", "missing or unknown, using "+name)
	}
	for _, sym := range doc.InputAlphabet {
		if sym = symbol.Normalize(sym); sym != "" && sym != ir.Epsilon && sym != m.epsilon {
			m.inputAlphabet.Add(sym)
		}
	}
	for _, sym := range doc.OutputAlphabet {
		if sym = symbol.Normalize(sym); sym != "" && sym != ir.Epsilon && sym != m.epsilon {
			m.outputAlphabet.Add(sym)
		}
	}

	for _, t := range doc.Transitions {
		out := symbol.Normalize(t.Output)
		if out == ir.Epsilon {
			out = m.epsilon
		}
		if err := m.AddTransition(t.Src, t.Input, t.Dst, out); err != nil {
			w.Add(t.Src+","+t.Input, err.Error())
		}
	}
	return m, w.List
}
