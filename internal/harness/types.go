package harness

import (
	"github.com/arthurvalves/IC-Tomato/internal/engine"
	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

// CaseResult is the outcome of one case of a scenario.
type CaseResult struct {
	// Index is the position of the case in the scenario.
	Index int `json:"index"`

	// Expect is the verdict the scenario asked for.
	Expect engine.Verdict `json:"expect"`

	// Outcome is what the engine produced, trace included.
	Outcome engine.Outcome `json:"outcome"`

	// Pass is true when the verdict, output and assertions all match.
	Pass bool `json:"pass"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every case matches its expectations.
	Pass bool `json:"pass"`

	// Machine and Kind identify the machine under test.
	Machine string  `json:"machine"`
	Kind    ir.Kind `json:"kind"`

	// Cases holds one entry per scenario case, in order.
	// Used for golden comparison.
	Cases []CaseResult `json:"cases"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Warnings are the load warnings of the machine document.
	Warnings []string `json:"warnings,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddCase records the outcome of a case. A failing case fails the result.
func (r *Result) AddCase(c CaseResult) {
	r.Cases = append(r.Cases, c)
	if !c.Pass {
		r.Pass = false
	}
}
