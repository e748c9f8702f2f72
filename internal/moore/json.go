package moore

import (
	"maps"
	"slices"

	"github.com/arthurvalves/IC-Tomato/internal/arena"
	"github.com/arthurvalves/IC-Tomato/internal/ir"
	"github.com/arthurvalves/IC-Tomato/internal/symbol"
)

// ToDocument snapshots the machine. The empty output is written as
// ir.Epsilon.
func (m *Machine) ToDocument() ir.MooreDocument {
	doc := ir.MooreDocument{
		Kind:           ir.KindMoore,
		States:         m.States(),
		InputAlphabet:  m.InputAlphabet(),
		OutputAlphabet: m.OutputAlphabet(),
		OutputFunction: m.OutputFunction(),
		Transitions:    []ir.MooreTransition{},
	}
	doc.StartState, _ = m.Start()
	for name, out := range doc.OutputFunction {
		if out == m.epsilon {
			doc.OutputFunction[name] = ir.Epsilon
		}
	}
	for _, t := range m.Transitions() {
		doc.Transitions = append(doc.Transitions, ir.MooreTransition{Src: t.Src, Input: t.Input, Dst: t.Dst})
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
	doc, warnings, err := ir.DecodeMoore(data)
	if err != nil {
		return nil, nil, err
	}
	m, more := FromDocument(doc, opts...)
	w := ir.Warnings{Kind: ir.KindMoore, Logger: m.logger}
	w.Extend(warnings...)
	return m, append(w.List, more...), nil
}

// FromDocument rebuilds a machine from a snapshot. States named only in the
// output function are added; listed states without an output emit nothing.
func FromDocument(doc ir.MooreDocument, opts ...Option) (*Machine, []ir.Warning) {
	m := New(opts...)
	w := ir.Warnings{Kind: ir.KindMoore, Logger: m.logger}

	outputs := make(map[string]string, len(doc.OutputFunction))
	for name, out := range doc.OutputFunction {
		if out = symbol.Normalize(out); out == ir.Epsilon {
			out = m.epsilon
		}
		outputs[symbol.Normalize(name)] = out
	}

	listed := make(map[string]bool, len(doc.States))
	for _, name := range doc.States {
		name = symbol.Normalize(name)
		listed[name] = true
		out, ok := outputs[name]
		if !ok {
			w.Add(name, "state has no output")
		}
		if err := m.AddState(name, out); err != nil {
			w.Add("states", err.Error())
		}
	}
	for _, name := range slices.Sorted(maps.Keys(outputs)) {
		if listed[name] {
			continue
		}
		w.Add(name, "state listed only in output_function")
		if err := m.AddState(name, outputs[name]); err != nil {
			w.Add("output_function", err.Error())
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
		if err := m.AddTransition(t.Src, t.Input, t.Dst); err != nil {
			w.Add(t.Src+","+t.Input, err.Error())
		}
	}
	return m, w.List
}
