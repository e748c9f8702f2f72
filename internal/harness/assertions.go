package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/arthurvalves/IC-Tomato/internal/engine"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string             // Assertion type for categorization
	Expected string             // Human-readable expected outcome
	Actual   string             // Human-readable actual outcome
	Trace    []engine.TraceStep // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, step := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] pos=%d %s\n", i, step.Pos, strings.Join(active(step), ","))
	}

	return buf.String()
}

// active returns the states a trace step shows: the whole active set of a
// finite automaton, the single state otherwise.
func active(step engine.TraceStep) []string {
	if len(step.States) > 0 {
		return step.States
	}
	if step.State != "" {
		return []string{step.State}
	}
	return nil
}

// firstVisit returns the index of the first step where state is active, or -1.
func firstVisit(trace []engine.TraceStep, state string) int {
	for i, step := range trace {
		if slices.Contains(active(step), state) {
			return i
		}
	}
	return -1
}

// assertTraceContains checks that the state is active at some step.
func assertTraceContains(trace []engine.TraceStep, assertion Assertion) error {
	if firstVisit(trace, assertion.State) >= 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("state %s in trace", assertion.State),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that states are first entered in the given order.
// Other states may be entered in between.
func assertTraceOrder(trace []engine.TraceStep, assertion Assertion) error {
	positions := make([]int, len(assertion.States))
	for i, state := range assertion.States {
		positions[i] = firstVisit(trace, state)
		if positions[i] < 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all states present: %v", assertion.States),
				Actual:   fmt.Sprintf("missing state: %s", state),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(positions); i++ {
		if positions[i-1] > positions[i] {
			prev, curr := assertion.States[i-1], assertion.States[i]
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("states in order: %v", assertion.States),
				Actual: fmt.Sprintf("%s (step %d) should be before %s (step %d)",
					prev, positions[i-1], curr, positions[i]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertTraceCount checks that the run took exactly the expected number of
// steps.
func assertTraceCount(o engine.Outcome, assertion Assertion) error {
	if o.Steps != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d steps", assertion.Count),
			Actual:   fmt.Sprintf("%d steps", o.Steps),
			Trace:    o.Trace,
		}
	}
	return nil
}

// assertFinalState checks that the state is active at the last step.
func assertFinalState(trace []engine.TraceStep, assertion Assertion) error {
	if len(trace) == 0 {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("run ending in %s", assertion.State),
			Actual:   "empty trace",
		}
	}
	last := active(trace[len(trace)-1])
	if slices.Contains(last, assertion.State) {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalState,
		Expected: fmt.Sprintf("run ending in %s", assertion.State),
		Actual:   fmt.Sprintf("run ended in %s", strings.Join(last, ",")),
		Trace:    trace,
	}
}

// EvaluateAssertions evaluates all assertions against one outcome.
// Returns a list of error messages (empty if all pass).
func EvaluateAssertions(o engine.Outcome, assertions []Assertion) []string {
	var errors []string

	for _, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(o.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(o.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(o, assertion)
		case AssertFinalState:
			err = assertFinalState(o.Trace, assertion)
		default:
			err = fmt.Errorf("unknown assertion type: %s", assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
