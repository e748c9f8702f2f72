package tm

import (
	"maps"
	"slices"

	"github.com/arthurvalves/IC-Tomato/internal/arena"
	"github.com/arthurvalves/IC-Tomato/internal/ir"
	"github.com/arthurvalves/IC-Tomato/internal/symbol"
)

func (m *Machine) toWire(sym string) string {
	if sym == m.blank {
		return ir.Blank
	}
	return sym
}

// ToDocument snapshots the machine. Rules are keyed "src,read" and map to
// [dst, write, move]; the blank is written as ir.Blank.
func (m *Machine) ToDocument() ir.TMDocument {
	doc := ir.TMDocument{
		Kind:          ir.KindTM,
		States:        m.States(),
		FinalStates:   m.FinalStates(),
		InputAlphabet: m.InputAlphabet(),
		BlankSymbol:   ir.Blank,
		Transitions:   make(map[string][]string),
	}
	doc.StartState, _ = m.Start()
	for _, sym := range m.TapeAlphabet() {
		doc.TapeAlphabet = append(doc.TapeAlphabet, m.toWire(sym))
	}
	slices.Sort(doc.TapeAlphabet)
	for _, t := range m.Transitions() {
		doc.Transitions[ir.TMKey(t.Src, m.toWire(t.Read))] = []string{t.Dst, m.toWire(t.Write), t.Move.String()}
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

// FromJSON decodes a document produced by ToJSON. Malformed rules are skipped
// and returned as warnings.
func FromJSON(data []byte, opts ...Option) (*Machine, []ir.Warning, error) {
	doc, warnings, err := ir.DecodeTM(data)
	if err != nil {
		return nil, nil, err
	}
	m, more := FromDocument(doc, opts...)
	w := ir.Warnings{Kind: ir.KindTM, Logger: m.logger}
	w.Extend(warnings...)
	return m, append(w.List, more...), nil
}

// FromDocument rebuilds a machine from a snapshot. Cells equal to the
// document's blank symbol become the machine's blank.
func FromDocument(doc ir.TMDocument, opts ...Option) (*Machine, []ir.Warning) {
	m := New(opts...)
	w := ir.Warnings{Kind: ir.KindTM, Logger: m.logger}

	docBlank := symbol.Normalize(doc.BlankSymbol)
	if docBlank == "" {
		docBlank = ir.Blank
	}
	fromWire := func(sym string) string {
		if sym = symbol.Normalize(sym); sym == docBlank {
			return m.blank
		}
		return sym
	}

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
	for _, name := range doc.FinalStates {
		if err := m.SetFinal(name, true); err != nil {
			w.Add("final_states", err.Error())
		}
	}
	for _, sym := range doc.InputAlphabet {
		if sym = fromWire(sym); sym != "" && sym != m.blank {
			m.inputAlphabet.Add(sym)
		}
	}
	for _, sym := range doc.TapeAlphabet {
		if sym = fromWire(sym); sym != "" {
			m.tapeAlphabet.Add(sym)
		}
	}

	for _, k := range slices.Sorted(maps.Keys(doc.Transitions)) {
		src, read, ok := ir.SplitTMKey(k)
		r := doc.Transitions[k]
		if !ok || len(r) != 3 {
			w.Add(k, "rule must be [dst, write, move]")
			continue
		}
		move, err := ParseMove(r[2])
		if err != nil {
			w.Add(k, err.Error())
			continue
		}
		if err := m.AddTransition(src, fromWire(read), r[0], fromWire(r[1]), move); err != nil {
			w.Add(k, err.Error())
		}
	}
	return m, w.List
}
