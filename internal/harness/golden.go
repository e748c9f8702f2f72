package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/arthurvalves/IC-Tomato/internal/engine"
	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string
	Machine      string
	Kind         ir.Kind
	Cases        []CaseResult
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
// Empty fields are left out, as ir.MarshalCanonical forbids null.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	cases := make([]any, len(s.Cases))
	for i, c := range s.Cases {
		m := map[string]any{
			"input":   c.Outcome.Input,
			"verdict": string(c.Outcome.Verdict),
			"steps":   c.Outcome.Steps,
			"trace":   traceList(c.Outcome.Trace),
		}
		if c.Outcome.Output != "" {
			m["output"] = c.Outcome.Output
		}
		if c.Outcome.Truncated {
			m["truncated"] = true
		}
		cases[i] = m
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"machine":       s.Machine,
		"kind":          string(s.Kind),
		"cases":         cases,
	}
}

func traceList(trace []engine.TraceStep) []any {
	out := make([]any, len(trace))
	for i, step := range trace {
		m := map[string]any{"pos": step.Pos}
		if len(step.States) > 0 {
			m["states"] = step.States
		}
		if step.State != "" {
			m["state"] = step.State
		}
		if len(step.Stack) > 0 {
			m["stack"] = step.Stack
		}
		if step.Active != 0 {
			m["active"] = step.Active
		}
		if len(step.Tape) > 0 {
			m["tape"] = step.Tape
		}
		if step.Offset != 0 {
			m["offset"] = step.Offset
		}
		if step.Output != "" {
			m["output"] = step.Output
		}
		out[i] = m
	}
	return out
}

// Snapshot renders the canonical trace JSON of a result.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Machine:      result.Machine,
		Kind:         result.Kind,
		Cases:        result.Cases,
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
