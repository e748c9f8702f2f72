// Package testutil holds deterministic helpers and machine fixtures shared
// by tests across packages.
package testutil

import "github.com/arthurvalves/IC-Tomato/internal/ir"

// EvenZeros is a DFA over {0, 1} accepting strings with an even number of 0s.
func EvenZeros() *ir.Machine {
	return &ir.Machine{Name: "even_zeros", Document: ir.FADocument{
		Kind:        ir.KindFA,
		States:      []string{"even", "odd"},
		StartState:  "even",
		FinalStates: []string{"even"},
		Alphabet:    []string{"0", "1"},
		Transitions: []ir.FATransition{
			{Src: "even", Symbol: "0", Dsts: []string{"odd"}},
			{Src: "even", Symbol: "1", Dsts: []string{"even"}},
			{Src: "odd", Symbol: "0", Dsts: []string{"even"}},
			{Src: "odd", Symbol: "1", Dsts: []string{"odd"}},
		},
	}}
}

// EndsInABB is the NFA for (a|b)*abb.
func EndsInABB() *ir.Machine {
	return &ir.Machine{Name: "ends_in_abb", Document: ir.FADocument{
		Kind:        ir.KindFA,
		States:      []string{"0", "1", "2", "3"},
		StartState:  "0",
		FinalStates: []string{"3"},
		Alphabet:    []string{"a", "b"},
		Transitions: []ir.FATransition{
			{Src: "0", Symbol: "a", Dsts: []string{"0", "1"}},
			{Src: "0", Symbol: "b", Dsts: []string{"0"}},
			{Src: "1", Symbol: "b", Dsts: []string{"2"}},
			{Src: "2", Symbol: "b", Dsts: []string{"3"}},
		},
	}}
}

// AnBn is a PDA accepting a^n b^n for n >= 1 by final state.
func AnBn() *ir.Machine {
	return &ir.Machine{Name: "anbn", Document: ir.PDADocument{
		Kind:             ir.KindPDA,
		States:           []string{"q0", "q1", "q2"},
		InputAlphabet:    []string{"a", "b"},
		StackAlphabet:    []string{"Z", "a"},
		StartState:       "q0",
		StartStackSymbol: "Z",
		FinalStates:      []string{"q2"},
		Transitions: map[string][][]string{
			"q0,a,Z": {{"q0", "Za"}},
			"q0,a,a": {{"q0", "aa"}},
			"q0,b,a": {{"q1", ir.Epsilon}},
			"q1,b,a": {{"q1", ir.Epsilon}},
			"q1,&,Z": {{"q2", "Z"}},
		},
	}}
}

// EvenAs is a Turing machine accepting strings of an even number of a's.
func EvenAs() *ir.Machine {
	return &ir.Machine{Name: "even_as", Document: ir.TMDocument{
		Kind:          ir.KindTM,
		States:        []string{"accept", "q0", "q1"},
		StartState:    "q0",
		FinalStates:   []string{"accept"},
		InputAlphabet: []string{"a"},
		TapeAlphabet:  []string{"a", ir.Blank},
		BlankSymbol:   ir.Blank,
		Transitions: map[string][]string{
			"q0,a": {"q1", "a", "R"},
			"q1,a": {"q0", "a", "R"},
			"q0,β": {"accept", ir.Blank, "R"},
		},
	}}
}

// Forever is a Turing machine that walks right over blanks without halting.
func Forever() *ir.Machine {
	return &ir.Machine{Name: "forever", Document: ir.TMDocument{
		Kind:         ir.KindTM,
		States:       []string{"q0"},
		StartState:   "q0",
		TapeAlphabet: []string{ir.Blank},
		BlankSymbol:  ir.Blank,
		Transitions: map[string][]string{
			"q0,β": {"q0", ir.Blank, "R"},
		},
	}}
}

// Parity is a Mealy machine emitting the running parity of the 1s read.
func Parity() *ir.Machine {
	return &ir.Machine{Name: "parity", Document: ir.MealyDocument{
		Kind:           ir.KindMealy,
		States:         []string{"even", "odd"},
		StartState:     "even",
		InputAlphabet:  []string{"0", "1"},
		OutputAlphabet: []string{"0", "1"},
		Transitions: []ir.MealyTransition{
			{Src: "even", Input: "0", Dst: "even", Output: "0"},
			{Src: "even", Input: "1", Dst: "odd", Output: "1"},
			{Src: "odd", Input: "0", Dst: "odd", Output: "1"},
			{Src: "odd", Input: "1", Dst: "even", Output: "0"},
		},
	}}
}

// Mod3 is a Moore machine whose output is the count of a's modulo 3; b
// leaves the count unchanged.
func Mod3() *ir.Machine {
	return &ir.Machine{Name: "mod3", Document: ir.MooreDocument{
		Kind:           ir.KindMoore,
		States:         []string{"s0", "s1", "s2"},
		StartState:     "s0",
		InputAlphabet:  []string{"a", "b"},
		OutputAlphabet: []string{"0", "1", "2"},
		OutputFunction: map[string]string{"s0": "0", "s1": "1", "s2": "2"},
		Transitions: []ir.MooreTransition{
			{Src: "s0", Input: "a", Dst: "s1"},
			{Src: "s0", Input: "b", Dst: "s0"},
			{Src: "s1", Input: "a", Dst: "s2"},
			{Src: "s1", Input: "b", Dst: "s1"},
			{Src: "s2", Input: "a", Dst: "s0"},
			{Src: "s2", Input: "b", Dst: "s2"},
		},
	}}
}

// All returns one fixture of each kind.
func All() []*ir.Machine {
	return []*ir.Machine{EvenZeros(), AnBn(), EvenAs(), Parity(), Mod3()}
}
