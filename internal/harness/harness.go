package harness

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthurvalves/IC-Tomato/internal/compiler"
	"github.com/arthurvalves/IC-Tomato/internal/engine"
)

// Harness is the test execution engine. It holds one loaded machine and
// runs the cases of a scenario against it.
type Harness struct {
	engine *engine.Engine
	logger *slog.Logger
}

// Option configures a harness run.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger for the run and the engine under it.
// By default logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Load the machine (JSON document or CUE file)
// 2. Run every case in order
// 3. Compare verdict, output and trace assertions
// 4. Return result with pass/fail, per-case outcomes, and errors
//
// A returned error means the scenario could not run at all; failed
// expectations are reported in the result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	o := options{logger: engine.DiscardLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	eng, err := loadMachine(scenario, o.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load machine: %w", err)
	}
	h := &Harness{engine: eng, logger: o.logger}

	result := NewResult()
	result.Machine = eng.Name()
	result.Kind = eng.Kind()
	for _, w := range eng.Warnings() {
		result.Warnings = append(result.Warnings, w.String())
	}

	for i, c := range scenario.Cases {
		h.executeCase(i, c, result)
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"machine", result.Machine,
		"cases", len(result.Cases),
		"pass", result.Pass)
	return result, nil
}

// RunFile loads a scenario file and runs it.
func RunFile(path string, opts ...Option) (*Scenario, *Result, error) {
	scenario, err := LoadScenario(path)
	if err != nil {
		return nil, nil, err
	}
	result, err := Run(scenario, opts...)
	return scenario, result, err
}

// executeCase runs one case and records its outcome and any mismatches.
func (h *Harness) executeCase(i int, c Case, result *Result) {
	out := h.engine.Run(c.Input)
	cr := CaseResult{Index: i, Expect: c.Expect, Outcome: out, Pass: true}
	label := fmt.Sprintf("cases[%d] %q", i, c.Input)

	fail := func(msg string) {
		result.AddError(label + ": " + msg)
		cr.Pass = false
	}

	if out.Verdict != c.Expect {
		fail(fmt.Sprintf("expected verdict %s, got %s", c.Expect, out.Verdict))
	}
	if c.Output != nil && out.Output != *c.Output {
		fail(fmt.Sprintf("expected output %q, got %q", *c.Output, out.Output))
	}
	for _, msg := range EvaluateAssertions(out, c.Assertions) {
		fail(msg)
	}
	if out.Truncated {
		h.logger.Warn("configuration budget exhausted", "case", i, "input", c.Input)
	}

	result.AddCase(cr)
}

// loadMachine builds the engine for the scenario's machine file. CUE files
// are compiled; anything else is read as a JSON document.
func loadMachine(s *Scenario, logger *slog.Logger) (*engine.Engine, error) {
	opts := []engine.EngineOption{
		engine.WithMaxSteps(s.MaxSteps),
		engine.WithLogger(logger),
	}

	if filepath.Ext(s.Machine) == ".cue" {
		machines, errs := compiler.CompileFile(s.Machine)
		if len(errs) > 0 {
			return nil, errs[0]
		}
		m, err := compiler.Find(machines, s.MachineName)
		if err != nil {
			return nil, err
		}
		if verrs := compiler.Validate(m); len(verrs) > 0 {
			return nil, verrs[0]
		}
		return engine.Load(m, opts...)
	}

	data, err := os.ReadFile(s.Machine)
	if err != nil {
		return nil, err
	}
	name := s.MachineName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(s.Machine), filepath.Ext(s.Machine))
	}
	return engine.LoadJSON(name, data, opts...)
}
