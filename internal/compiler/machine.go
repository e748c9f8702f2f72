package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

// CompileMachine parses a CUE value into a named machine document.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the machine struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`machine: evenAs: { kind: "tm", ... }`)
//	m, err := CompileMachine(v.LookupPath(cue.ParsePath("machine.evenAs")))
//
// Every kind shares states, start and final. Transitions are a list of
// structs whose fields depend on the kind:
//
//	fa:    {from, symbol, to}            to may be a string or a list
//	pda:   {from, input, pop, to, push}
//	tm:    {from, read, to, write, move}
//	mealy: {from, input, to, output}
//	moore: {from, input, to}             plus outputs: {<state>: <output>}
func CompileMachine(v cue.Value) (*ir.Machine, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	m := &ir.Machine{}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		m.Name = labels[len(labels)-1].String()
	}

	kindStr, err := requiredString(v, "kind")
	if err != nil {
		return nil, err
	}
	kind := ir.Kind(kindStr)
	if !ir.ValidKinds[kind] {
		return nil, &CompileError{
			Field:   "kind",
			Message: fmt.Sprintf("unknown machine kind %q", kindStr),
			Pos:     v.LookupPath(cue.ParsePath("kind")).Pos(),
		}
	}

	h, err := parseHeader(v)
	if err != nil {
		return nil, err
	}

	switch kind {
	case ir.KindFA:
		m.Document, err = compileFA(v, h)
	case ir.KindPDA:
		m.Document, err = compilePDA(v, h)
	case ir.KindTM:
		m.Document, err = compileTM(v, h)
	case ir.KindMealy:
		m.Document, err = compileMealy(v, h)
	case ir.KindMoore:
		m.Document, err = compileMoore(v, h)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// header holds the fields every kind shares.
type header struct {
	states []string
	start  string
	final  []string
}

func parseHeader(v cue.Value) (header, error) {
	var h header
	if !v.LookupPath(cue.ParsePath("states")).Exists() {
		return h, &CompileError{Field: "states", Message: "states is required", Pos: v.Pos()}
	}
	var err error
	if h.states, err = stringList(v, "states"); err != nil {
		return h, err
	}
	if h.start, err = optionalString(v, "start"); err != nil {
		return h, err
	}
	if h.final, err = stringList(v, "final"); err != nil {
		return h, err
	}
	return h, nil
}

func compileFA(v cue.Value, h header) (ir.FADocument, error) {
	doc := ir.FADocument{
		Kind:        ir.KindFA,
		States:      h.states,
		StartState:  h.start,
		FinalStates: h.final,
	}
	var err error
	if doc.Alphabet, err = stringList(v, "alphabet"); err != nil {
		return doc, err
	}

	// One record per (from, symbol), in first-seen order.
	index := make(map[[2]string]int)
	err = eachTransition(v, func(field string, t cue.Value) error {
		from, err := requiredString(t, "from")
		if err != nil {
			return err
		}
		sym, err := requiredString(t, "symbol")
		if err != nil {
			return err
		}
		to, err := oneOrMany(t, "to")
		if err != nil {
			return err
		}
		k := [2]string{from, sym}
		i, ok := index[k]
		if !ok {
			i = len(doc.Transitions)
			index[k] = i
			doc.Transitions = append(doc.Transitions, ir.FATransition{Src: from, Symbol: sym})
		}
		doc.Transitions[i].Dsts = append(doc.Transitions[i].Dsts, to...)
		return nil
	})
	return doc, err
}

func compilePDA(v cue.Value, h header) (ir.PDADocument, error) {
	doc := ir.PDADocument{
		Kind:             ir.KindPDA,
		States:           h.states,
		StartState:       h.start,
		FinalStates:      h.final,
		StartStackSymbol: "Z",
		Transitions:      make(map[string][][]string),
	}
	var err error
	if doc.InputAlphabet, err = stringList(v, "input_alphabet"); err != nil {
		return doc, err
	}
	if doc.StackAlphabet, err = stringList(v, "stack_alphabet"); err != nil {
		return doc, err
	}
	bottom, err := optionalString(v, "start_stack")
	if err != nil {
		return doc, err
	}
	if bottom != "" {
		doc.StartStackSymbol = bottom
	}

	err = eachTransition(v, func(field string, t cue.Value) error {
		f, err := requiredStrings(t, "from", "input", "pop", "to", "push")
		if err != nil {
			return err
		}
		k := ir.PDAKey(f[0], f[1], f[2])
		doc.Transitions[k] = append(doc.Transitions[k], []string{f[3], f[4]})
		return nil
	})
	return doc, err
}

func compileTM(v cue.Value, h header) (ir.TMDocument, error) {
	doc := ir.TMDocument{
		Kind:        ir.KindTM,
		States:      h.states,
		StartState:  h.start,
		FinalStates: h.final,
		BlankSymbol: ir.Blank,
		Transitions: make(map[string][]string),
	}
	var err error
	if doc.InputAlphabet, err = stringList(v, "input_alphabet"); err != nil {
		return doc, err
	}
	if doc.TapeAlphabet, err = stringList(v, "tape_alphabet"); err != nil {
		return doc, err
	}
	blank, err := optionalString(v, "blank")
	if err != nil {
		return doc, err
	}
	if blank != "" {
		doc.BlankSymbol = blank
	}

	err = eachTransition(v, func(field string, t cue.Value) error {
		f, err := requiredStrings(t, "from", "read", "to", "write", "move")
		if err != nil {
			return err
		}
		k := ir.TMKey(f[0], f[1])
		if _, dup := doc.Transitions[k]; dup {
			return &CompileError{
				Field:   field,
				Message: fmt.Sprintf("duplicate rule for state %q reading %q", f[0], f[1]),
				Pos:     t.Pos(),
			}
		}
		doc.Transitions[k] = []string{f[2], f[3], f[4]}
		return nil
	})
	return doc, err
}

func compileMealy(v cue.Value, h header) (ir.MealyDocument, error) {
	doc := ir.MealyDocument{
		Kind:       ir.KindMealy,
		States:     h.states,
		StartState: h.start,
	}
	var err error
	if doc.InputAlphabet, err = stringList(v, "input_alphabet"); err != nil {
		return doc, err
	}
	if doc.OutputAlphabet, err = stringList(v, "output_alphabet"); err != nil {
		return doc, err
	}
	err = eachTransition(v, func(field string, t cue.Value) error {
		f, err := requiredStrings(t, "from", "input", "to")
		if err != nil {
			return err
		}
		out, err := optionalString(t, "output")
		if err != nil {
			return err
		}
		if out == "" {
			out = ir.Epsilon
		}
		doc.Transitions = append(doc.Transitions, ir.MealyTransition{Src: f[0], Input: f[1], Dst: f[2], Output: out})
		return nil
	})
	return doc, err
}

func compileMoore(v cue.Value, h header) (ir.MooreDocument, error) {
	doc := ir.MooreDocument{
		Kind:           ir.KindMoore,
		States:         h.states,
		StartState:     h.start,
		OutputFunction: make(map[string]string),
	}
	var err error
	if doc.InputAlphabet, err = stringList(v, "input_alphabet"); err != nil {
		return doc, err
	}
	if doc.OutputAlphabet, err = stringList(v, "output_alphabet"); err != nil {
		return doc, err
	}

	outputsVal := v.LookupPath(cue.ParsePath("outputs"))
	if outputsVal.Exists() {
		iter, err := outputsVal.Fields()
		if err != nil {
			return doc, formatCUEError(err)
		}
		for iter.Next() {
			out, err := iter.Value().String()
			if err != nil {
				return doc, formatCUEError(err)
			}
			doc.OutputFunction[iter.Label()] = out
		}
	}

	err = eachTransition(v, func(field string, t cue.Value) error {
		f, err := requiredStrings(t, "from", "input", "to")
		if err != nil {
			return err
		}
		doc.Transitions = append(doc.Transitions, ir.MooreTransition{Src: f[0], Input: f[1], Dst: f[2]})
		return nil
	})
	return doc, err
}

// eachTransition calls fn for every element of the transitions list.
func eachTransition(v cue.Value, fn func(field string, t cue.Value) error) error {
	list := v.LookupPath(cue.ParsePath("transitions"))
	if !list.Exists() {
		return nil
	}
	iter, err := list.List()
	if err != nil {
		return formatCUEError(err)
	}
	for i := 0; iter.Next(); i++ {
		if err := fn(fmt.Sprintf("transitions[%d]", i), iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

func requiredString(v cue.Value, field string) (string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return "", &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func requiredStrings(v cue.Value, fields ...string) ([]string, error) {
	out := make([]string, len(fields))
	for i, field := range fields {
		s, err := requiredString(v, field)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// stringList reads an optional list of strings. A missing field is an empty
// list.
func stringList(v cue.Value, field string) ([]string, error) {
	out := []string{}
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return out, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// oneOrMany reads a required field holding a string or a list of strings.
func oneOrMany(v cue.Value, field string) ([]string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return nil, &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	if s, err := f.String(); err == nil {
		return []string{s}, nil
	}
	return stringList(v, field)
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
