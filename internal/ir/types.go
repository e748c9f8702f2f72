package ir

import "log/slog"

// Wire sentinels. Engines may use other sentinels internally but always
// translate to these when producing a document.
const (
	Epsilon = "&"
	Blank   = "β"
)

// Kind identifies which engine a document belongs to.
type Kind string

const (
	KindFA    Kind = "fa"
	KindPDA   Kind = "pda"
	KindTM    Kind = "tm"
	KindMealy Kind = "mealy"
	KindMoore Kind = "moore"
)

// ValidKinds defines allowed document kinds.
var ValidKinds = map[Kind]bool{
	KindFA:    true,
	KindPDA:   true,
	KindTM:    true,
	KindMealy: true,
	KindMoore: true,
}

// Document is a sealed interface implemented by the five snapshot types.
type Document interface {
	DocumentKind() Kind
	document()
}

// FADocument is the snapshot of a finite automaton.
type FADocument struct {
	Kind        Kind           `json:"kind,omitempty"`
	States      []string       `json:"states"`
	StartState  string         `json:"start_state,omitempty"`
	FinalStates []string       `json:"final_states"`
	Alphabet    []string       `json:"alphabet"`
	Transitions []FATransition `json:"transitions"`
}

// FATransition groups every destination of one (src, symbol) pair.
type FATransition struct {
	Src    string   `json:"src"`
	Symbol string   `json:"symbol"`
	Dsts   []string `json:"dsts"`
}

func (FADocument) DocumentKind() Kind { return KindFA }
func (FADocument) document() {}

// PDADocument is the snapshot of a pushdown automaton. Transitions are keyed
// by "src,input,pop" and map to [dst, push] pairs.
type PDADocument struct {
	Kind             Kind                  `json:"kind,omitempty"`
	States           []string              `json:"states"`
	InputAlphabet    []string              `json:"input_alphabet"`
	StackAlphabet    []string              `json:"stack_alphabet"`
	StartState       string                `json:"start_state,omitempty"`
	StartStackSymbol string                `json:"start_stack_symbol"`
	FinalStates      []string              `json:"final_states"`
	Transitions      map[string][][]string `json:"transitions"`
}

func (PDADocument) DocumentKind() Kind { return KindPDA }
func (PDADocument) document() {}

// TMDocument is the snapshot of a Turing machine. Transitions are keyed by
// "src,read" and map to [dst, write, move].
type TMDocument struct {
	Kind          Kind                `json:"kind,omitempty"`
	States        []string            `json:"states"`
	StartState    string              `json:"start_state,omitempty"`
	FinalStates   []string            `json:"final_states"`
	InputAlphabet []string            `json:"input_alphabet"`
	TapeAlphabet  []string            `json:"tape_alphabet"`
	BlankSymbol   string              `json:"blank_symbol"`
	Transitions   map[string][]string `json:"transitions"`
}

func (TMDocument) DocumentKind() Kind { return KindTM }
func (TMDocument) document() {}

// MealyDocument is the snapshot of a Mealy machine.
type MealyDocument struct {
	Kind           Kind              `json:"kind,omitempty"`
	States         []string          `json:"states"`
	StartState     string            `json:"start_state,omitempty"`
	InputAlphabet  []string          `json:"input_alphabet"`
	OutputAlphabet []string          `json:"output_alphabet"`
	Transitions    []MealyTransition `json:"transitions"`
}

// MealyTransition is one (src, input) -> (dst, output) rule.
type MealyTransition struct {
	Src    string `json:"src"`
	Input  string `json:"input"`
	Dst    string `json:"dst"`
	Output string `json:"output"`
}

func (MealyDocument) DocumentKind() Kind { return KindMealy }
func (MealyDocument) document() {}

// MooreDocument is the snapshot of a Moore machine.
type MooreDocument struct {
	Kind           Kind              `json:"kind,omitempty"`
	States         []string          `json:"states"`
	StartState     string            `json:"start_state,omitempty"`
	InputAlphabet  []string          `json:"input_alphabet"`
	OutputAlphabet []string          `json:"output_alphabet"`
	OutputFunction map[string]string `json:"output_function"`
	Transitions    []MooreTransition `json:"transitions"`
}

// MooreTransition is one (src, input) -> dst rule.
type MooreTransition struct {
	Src   string `json:"src"`
	Input string `json:"input"`
	Dst   string `json:"dst"`
}

func (MooreDocument) DocumentKind() Kind { return KindMoore }
func (MooreDocument) document() {}

// Machine is a named document, as produced by the compiler or read from a
// store.
type Machine struct {
	Name     string   `json:"name"`
	Document Document `json:"document"`
}

// Kind returns the kind of the wrapped document.
func (m *Machine) Kind() Kind {
	if m.Document == nil {
		return ""
	}
	return m.Document.DocumentKind()
}

// Warning describes a record that was skipped while loading a document.
type Warning struct {
	Record string `json:"record"`
	Reason string `json:"reason"`
}

func (w Warning) String() string {
	return w.Record + ": " + w.Reason
}

// Warnings collects load warnings for one document and logs each as it is
// added.
type Warnings struct {
	Kind   Kind
	Logger *slog.Logger
	List   []Warning
}

// Add records a skipped record.
func (w *Warnings) Add(record, reason string) {
	w.Extend(Warning{Record: record, Reason: reason})
}

// Extend records warnings produced elsewhere, e.g. by a decoder.
func (w *Warnings) Extend(ws ...Warning) {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, warning := range ws {
		w.List = append(w.List, warning)
		logger.Warn("skipped record while loading",
			"kind", w.Kind,
			"record", warning.Record,
			"reason", warning.Reason)
	}
}
