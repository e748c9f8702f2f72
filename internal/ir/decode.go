package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// EncodeDocument renders a document as indented JSON.
// HTML escaping is disabled so the epsilon sentinel "&" stays literal.
func EncodeDocument(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode %s document: %w", doc.DocumentKind(), err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// DetectKind reports which engine a JSON document belongs to.
// The explicit "kind" field wins; otherwise the kind is inferred from the
// fields only one engine writes.
func DetectKind(data []byte) (Kind, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return "", fmt.Errorf("detect kind: %w", err)
	}

	if raw, ok := fields["kind"]; ok {
		var k Kind
		if err := json.Unmarshal(raw, &k); err == nil && k != "" {
			if !ValidKinds[k] {
				return "", fmt.Errorf("detect kind: unknown kind %q", k)
			}
			return k, nil
		}
	}

	switch {
	case has(fields, "stack_alphabet"), has(fields, "start_stack_symbol"):
		return KindPDA, nil
	case has(fields, "tape_alphabet"), has(fields, "blank_symbol"):
		return KindTM, nil
	case has(fields, "output_function"):
		return KindMoore, nil
	}

	var loose struct {
		Transitions []map[string]json.RawMessage `json:"transitions"`
	}
	if err := json.Unmarshal(data, &loose); err == nil {
		for _, t := range loose.Transitions {
			if _, ok := t["output"]; ok {
				return KindMealy, nil
			}
		}
	}
	return KindFA, nil
}

func has(m map[string]json.RawMessage, key string) bool {
	_, ok := m[key]
	return ok
}

// DecodeMachine detects the kind of a JSON document and decodes it under
// name.
func DecodeMachine(name string, data []byte) (*Machine, []Warning, error) {
	kind, err := DetectKind(data)
	if err != nil {
		return nil, nil, err
	}
	m := &Machine{Name: name}
	var warnings []Warning
	switch kind {
	case KindFA:
		var doc FADocument
		doc, warnings, err = DecodeFA(data)
		m.Document = doc
	case KindPDA:
		var doc PDADocument
		doc, warnings, err = DecodePDA(data)
		m.Document = doc
	case KindTM:
		var doc TMDocument
		doc, warnings, err = DecodeTM(data)
		m.Document = doc
	case KindMealy:
		var doc MealyDocument
		doc, warnings, err = DecodeMealy(data)
		m.Document = doc
	case KindMoore:
		var doc MooreDocument
		doc, warnings, err = DecodeMoore(data)
		m.Document = doc
	}
	if err != nil {
		return nil, nil, err
	}
	return m, warnings, nil
}

// DecodeFA parses a finite automaton document. Transition records that do not
// have the expected shape are skipped and reported as warnings.
func DecodeFA(data []byte) (FADocument, []Warning, error) {
	var raw struct {
		States      []string          `json:"states"`
		StartState  *string           `json:"start_state"`
		FinalStates []string          `json:"final_states"`
		Alphabet    []string          `json:"alphabet"`
		Transitions []json.RawMessage `json:"transitions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return FADocument{}, nil, fmt.Errorf("decode fa document: %w", err)
	}

	doc := FADocument{
		Kind:        KindFA,
		States:      raw.States,
		StartState:  deref(raw.StartState),
		FinalStates: raw.FinalStates,
		Alphabet:    raw.Alphabet,
	}
	var warnings []Warning
	for i, rec := range raw.Transitions {
		var t FATransition
		if err := strictRecord(rec, &t); err != nil {
			warnings = append(warnings, Warning{Record: fmt.Sprintf("transitions[%d]", i), Reason: err.Error()})
			continue
		}
		if t.Src == "" || t.Symbol == "" {
			warnings = append(warnings, Warning{Record: fmt.Sprintf("transitions[%d]", i), Reason: "missing src or symbol"})
			continue
		}
		doc.Transitions = append(doc.Transitions, t)
	}
	return doc, warnings, nil
}

// DecodePDA parses a pushdown automaton document.
func DecodePDA(data []byte) (PDADocument, []Warning, error) {
	var raw struct {
		States           []string                   `json:"states"`
		InputAlphabet    []string                   `json:"input_alphabet"`
		StackAlphabet    []string                   `json:"stack_alphabet"`
		StartState       *string                    `json:"start_state"`
		StartStackSymbol *string                    `json:"start_stack_symbol"`
		FinalStates      []string                   `json:"final_states"`
		Transitions      map[string]json.RawMessage `json:"transitions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return PDADocument{}, nil, fmt.Errorf("decode pda document: %w", err)
	}

	doc := PDADocument{
		Kind:          KindPDA,
		States:        raw.States,
		InputAlphabet: raw.InputAlphabet,
		StackAlphabet: raw.StackAlphabet,
		StartState:    deref(raw.StartState),
		FinalStates:   raw.FinalStates,
		Transitions:   make(map[string][][]string, len(raw.Transitions)),
	}
	if raw.StartStackSymbol != nil {
		doc.StartStackSymbol = *raw.StartStackSymbol
	} else {
		doc.StartStackSymbol = "Z"
	}

	var warnings []Warning
	for _, key := range sortedKeys(raw.Transitions) {
		if _, _, _, ok := SplitPDAKey(key); !ok {
			warnings = append(warnings, Warning{Record: key, Reason: "malformed transition key"})
			continue
		}
		var dests []json.RawMessage
		if err := json.Unmarshal(raw.Transitions[key], &dests); err != nil {
			warnings = append(warnings, Warning{Record: key, Reason: err.Error()})
			continue
		}
		for i, d := range dests {
			var pair []string
			if err := json.Unmarshal(d, &pair); err != nil || len(pair) != 2 {
				warnings = append(warnings, Warning{Record: fmt.Sprintf("%s[%d]", key, i), Reason: "destination must be [dst, push]"})
				continue
			}
			doc.Transitions[key] = append(doc.Transitions[key], pair)
		}
	}
	return doc, warnings, nil
}

// DecodeTM parses a Turing machine document.
func DecodeTM(data []byte) (TMDocument, []Warning, error) {
	var raw struct {
		States        []string                   `json:"states"`
		StartState    *string                    `json:"start_state"`
		FinalStates   []string                   `json:"final_states"`
		InputAlphabet []string                   `json:"input_alphabet"`
		TapeAlphabet  []string                   `json:"tape_alphabet"`
		BlankSymbol   *string                    `json:"blank_symbol"`
		Transitions   map[string]json.RawMessage `json:"transitions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return TMDocument{}, nil, fmt.Errorf("decode tm document: %w", err)
	}

	doc := TMDocument{
		Kind:          KindTM,
		States:        raw.States,
		StartState:    deref(raw.StartState),
		FinalStates:   raw.FinalStates,
		InputAlphabet: raw.InputAlphabet,
		TapeAlphabet:  raw.TapeAlphabet,
		BlankSymbol:   Blank,
		Transitions:   make(map[string][]string, len(raw.Transitions)),
	}
	if raw.BlankSymbol != nil && *raw.BlankSymbol != "" {
		doc.BlankSymbol = *raw.BlankSymbol
	}

	var warnings []Warning
	for _, key := range sortedKeys(raw.Transitions) {
		if _, _, ok := SplitTMKey(key); !ok {
			warnings = append(warnings, Warning{Record: key, Reason: "malformed transition key"})
			continue
		}
		var rule []string
		if err := json.Unmarshal(raw.Transitions[key], &rule); err != nil || len(rule) != 3 {
			warnings = append(warnings, Warning{Record: key, Reason: "rule must be [dst, write, move]"})
			continue
		}
		doc.Transitions[key] = rule
	}
	return doc, warnings, nil
}

// DecodeMealy parses a Mealy machine document.
func DecodeMealy(data []byte) (MealyDocument, []Warning, error) {
	var raw struct {
		States         []string          `json:"states"`
		StartState     *string           `json:"start_state"`
		InputAlphabet  []string          `json:"input_alphabet"`
		OutputAlphabet []string          `json:"output_alphabet"`
		Transitions    []json.RawMessage `json:"transitions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return MealyDocument{}, nil, fmt.Errorf("decode mealy document: %w", err)
	}

	doc := MealyDocument{
		Kind:           KindMealy,
		States:         raw.States,
		StartState:     deref(raw.StartState),
		InputAlphabet:  raw.InputAlphabet,
		OutputAlphabet: raw.OutputAlphabet,
	}
	var warnings []Warning
	for i, rec := range raw.Transitions {
		var t MealyTransition
		if err := strictRecord(rec, &t); err != nil || t.Src == "" || t.Input == "" || t.Dst == "" {
			warnings = append(warnings, Warning{Record: fmt.Sprintf("transitions[%d]", i), Reason: "expected {src, input, dst, output}"})
			continue
		}
		doc.Transitions = append(doc.Transitions, t)
	}
	return doc, warnings, nil
}

// DecodeMoore parses a Moore machine document.
func DecodeMoore(data []byte) (MooreDocument, []Warning, error) {
	var raw struct {
		States         []string          `json:"states"`
		StartState     *string           `json:"start_state"`
		InputAlphabet  []string          `json:"input_alphabet"`
		OutputAlphabet []string          `json:"output_alphabet"`
		OutputFunction map[string]string `json:"output_function"`
		Transitions    []json.RawMessage `json:"transitions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return MooreDocument{}, nil, fmt.Errorf("decode moore document: %w", err)
	}

	doc := MooreDocument{
		Kind:           KindMoore,
		States:         raw.States,
		StartState:     deref(raw.StartState),
		InputAlphabet:  raw.InputAlphabet,
		OutputAlphabet: raw.OutputAlphabet,
		OutputFunction: raw.OutputFunction,
	}
	var warnings []Warning
	for i, rec := range raw.Transitions {
		var t MooreTransition
		if err := strictRecord(rec, &t); err != nil || t.Src == "" || t.Input == "" || t.Dst == "" {
			warnings = append(warnings, Warning{Record: fmt.Sprintf("transitions[%d]", i), Reason: "expected {src, input, dst}"})
			continue
		}
		doc.Transitions = append(doc.Transitions, t)
	}
	return doc, warnings, nil
}

// KeySeparator joins the parts of PDA and TM transition keys. Only the last
// part of a key may contain it, so engines reject it in state labels and in
// PDA input symbols.
const KeySeparator = ","

// PDAKey joins a PDA transition key as written in documents.
func PDAKey(src, input, pop string) string {
	return src + KeySeparator + input + KeySeparator + pop
}

// SplitPDAKey splits "src,input,pop". The pop part may itself contain commas.
func SplitPDAKey(key string) (src, input, pop string, ok bool) {
	parts := strings.SplitN(key, KeySeparator, 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// TMKey joins a TM transition key as written in documents.
func TMKey(src, read string) string {
	return src + KeySeparator + read
}

// SplitTMKey splits "src,read". The read part may itself contain commas.
func SplitTMKey(key string) (src, read string, ok bool) {
	parts := strings.SplitN(key, KeySeparator, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// strictRecord decodes one record and rejects unknown fields, so a record
// written for another engine is not silently half-read.
func strictRecord(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
