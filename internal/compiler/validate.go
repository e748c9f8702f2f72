package compiler

import (
	"fmt"
	"strings"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
	"github.com/arthurvalves/IC-Tomato/internal/tm"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedDocument = "E100" // unsupported type for validation

	// State set errors (E101-E105)
	ErrNoStates         = "E101" // at least one state required
	ErrStartState       = "E102" // start state missing or unknown
	ErrUnknownStateRef  = "E103" // reference to an undeclared state
	ErrEmptySymbolValue = "E104" // empty input, push, write or output symbol
	ErrDuplicateState   = "E105" // duplicate or empty state name

	// Transition errors (E106-E110)
	ErrEpsilonInputRule = "E106" // transducer consumes epsilon
	ErrInvalidMoveValue = "E107" // TM move other than L or R
	ErrNondeterministic = "E108" // transducer has two rules for one (state, input)
	ErrMissingOutput    = "E109" // Moore state without output
	ErrMalformedKey     = "E110" // malformed transition key or destination
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a machine document against structural rules.
// Returns all errors found (does not fail-fast).
// Supports *ir.Machine and the five document types.
func Validate(v any) []ValidationError {
	switch doc := v.(type) {
	case *ir.Machine:
		if doc == nil || doc.Document == nil {
			break
		}
		return Validate(doc.Document)
	case ir.Machine:
		return Validate(&doc)
	case ir.FADocument:
		return validateFA(doc)
	case ir.PDADocument:
		return validatePDA(doc)
	case ir.TMDocument:
		return validateTM(doc)
	case ir.MealyDocument:
		return validateMealy(doc)
	case ir.MooreDocument:
		return validateMoore(doc)
	}
	return []ValidationError{{
		Field:   "type",
		Message: fmt.Sprintf("unsupported document type: %T", v),
		Code:    ErrUnsupportedDocument,
	}}
}

// stateCheck accumulates errors for one document and remembers its states.
type stateCheck struct {
	errs   []ValidationError
	states map[string]bool
}

func (c *stateCheck) add(field, code, format string, args ...any) {
	c.errs = append(c.errs, ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	})
}

func newStateCheck(states []string, start string) *stateCheck {
	c := &stateCheck{states: make(map[string]bool, len(states))}

	// E101: at least one state
	if len(states) == 0 {
		c.add("states", ErrNoStates, "at least one state is required")
	}

	// E105: names are unique and non-empty
	for i, s := range states {
		field := fmt.Sprintf("states[%d]", i)
		switch {
		case strings.TrimSpace(s) == "":
			c.add(field, ErrDuplicateState, "state name must not be empty")
		case c.states[s]:
			c.add(field, ErrDuplicateState, "duplicate state %q", s)
		}
		c.states[s] = true
	}

	// E102: start names a declared state
	switch {
	case start == "" && len(states) > 0:
		c.add("start_state", ErrStartState, "start state is required")
	case start != "" && !c.states[start]:
		c.add("start_state", ErrStartState, "start state %q is not declared", start)
	}
	return c
}

// ref reports E103 when name is not a declared state.
func (c *stateCheck) ref(field, name string) {
	if !c.states[name] {
		c.add(field, ErrUnknownStateRef, "state %q is not declared", name)
	}
}

// symbol reports E104 when sym is empty.
func (c *stateCheck) symbol(field, sym string) {
	if sym == "" {
		c.add(field, ErrEmptySymbolValue, "symbol must not be empty")
	}
}

func (c *stateCheck) finals(finals []string) {
	for i, f := range finals {
		c.ref(fmt.Sprintf("final_states[%d]", i), f)
	}
}

func validateFA(doc ir.FADocument) []ValidationError {
	c := newStateCheck(doc.States, doc.StartState)
	c.finals(doc.FinalStates)
	for i, t := range doc.Transitions {
		field := fmt.Sprintf("transitions[%d]", i)
		c.ref(field+".src", t.Src)
		c.symbol(field+".symbol", t.Symbol)
		if len(t.Dsts) == 0 {
			c.add(field+".dsts", ErrMalformedKey, "at least one destination is required")
		}
		for j, d := range t.Dsts {
			c.ref(fmt.Sprintf("%s.dsts[%d]", field, j), d)
		}
	}
	return c.errs
}

func validatePDA(doc ir.PDADocument) []ValidationError {
	c := newStateCheck(doc.States, doc.StartState)
	c.finals(doc.FinalStates)
	c.symbol("start_stack_symbol", doc.StartStackSymbol)
	for _, k := range sortedKeys(doc.Transitions) {
		field := "transitions[" + k + "]"
		src, _, _, ok := ir.SplitPDAKey(k)
		if !ok {
			c.add(field, ErrMalformedKey, "key must be src,input,pop")
			continue
		}
		c.ref(field, src)
		for i, alt := range doc.Transitions[k] {
			altField := fmt.Sprintf("%s[%d]", field, i)
			if len(alt) != 2 {
				c.add(altField, ErrMalformedKey, "destination must be [dst, push]")
				continue
			}
			c.ref(altField, alt[0])
			c.symbol(altField, alt[1])
		}
	}
	return c.errs
}

func validateTM(doc ir.TMDocument) []ValidationError {
	c := newStateCheck(doc.States, doc.StartState)
	c.finals(doc.FinalStates)
	c.symbol("blank_symbol", doc.BlankSymbol)
	for _, k := range sortedKeys(doc.Transitions) {
		field := "transitions[" + k + "]"
		src, _, ok := ir.SplitTMKey(k)
		if !ok {
			c.add(field, ErrMalformedKey, "key must be src,read")
			continue
		}
		c.ref(field, src)
		rule := doc.Transitions[k]
		if len(rule) != 3 {
			c.add(field, ErrMalformedKey, "destination must be [dst, write, move]")
			continue
		}
		c.ref(field, rule[0])
		c.symbol(field, rule[1])
		if _, err := tm.ParseMove(rule[2]); err != nil {
			c.add(field, ErrInvalidMoveValue, "move %q must be L or R", rule[2])
		}
	}
	return c.errs
}

// transducerRule checks the parts Mealy and Moore rules share.
func (c *stateCheck) transducerRule(field, src, input, dst string, seen map[[2]string]bool) {
	c.ref(field+".src", src)
	c.ref(field+".dst", dst)
	c.symbol(field+".input", input)
	if input == ir.Epsilon {
		c.add(field+".input", ErrEpsilonInputRule, "epsilon cannot be consumed")
	}
	k := [2]string{src, input}
	if seen[k] {
		c.add(field, ErrNondeterministic, "state %q already has a rule for %q", src, input)
	}
	seen[k] = true
}

func validateMealy(doc ir.MealyDocument) []ValidationError {
	c := newStateCheck(doc.States, doc.StartState)
	seen := make(map[[2]string]bool)
	for i, t := range doc.Transitions {
		c.transducerRule(fmt.Sprintf("transitions[%d]", i), t.Src, t.Input, t.Dst, seen)
	}
	return c.errs
}

func validateMoore(doc ir.MooreDocument) []ValidationError {
	c := newStateCheck(doc.States, doc.StartState)
	for _, s := range doc.States {
		if _, ok := doc.OutputFunction[s]; !ok {
			c.add("output_function", ErrMissingOutput, "state %q has no output", s)
		}
	}
	for _, s := range sortedKeys(doc.OutputFunction) {
		c.ref("output_function["+s+"]", s)
	}
	seen := make(map[[2]string]bool)
	for i, t := range doc.Transitions {
		c.transducerRule(fmt.Sprintf("transitions[%d]", i), t.Src, t.Input, t.Dst, seen)
	}
	return c.errs
}
