package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/arthurvalves/IC-Tomato/internal/engine"
)

// Scenario defines a conformance test scenario: one machine and the inputs
// it is expected to accept, reject or translate.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Machine is the path to a JSON document or a CUE file.
	// Relative paths are resolved against the scenario file location.
	Machine string `yaml:"machine"`

	// MachineName selects one machine of a CUE file that declares several.
	MachineName string `yaml:"machine_name,omitempty"`

	// MaxSteps bounds Turing machine runs. Zero keeps the engine default.
	MaxSteps int `yaml:"max_steps,omitempty"`

	// Cases are the inputs to run, in order.
	Cases []Case `yaml:"cases"`
}

// Case is one input with its expectations.
type Case struct {
	// Input is fed to the machine as is. The empty string is a valid input.
	Input string `yaml:"input"`

	// Expect is the verdict: accept, reject or loop for acceptors, ok or
	// stuck for transducers.
	Expect engine.Verdict `yaml:"expect"`

	// Output is the expected translation. Nil skips the check.
	Output *string `yaml:"output,omitempty"`

	// Assertions check the run's trace.
	// Supported types: trace_contains, trace_order, trace_count, final_state
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Assertion validates the trace of one case.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": State is active at some step
	// - "trace_order": States are first entered in this order
	// - "trace_count": the run takes exactly Count steps
	// - "final_state": State is active at the last step
	Type string `yaml:"type"`

	// State is a state name (used by trace_contains and final_state).
	State string `yaml:"state,omitempty"`

	// States is the expected order (used by trace_order).
	States []string `yaml:"states,omitempty"`

	// Count is the expected number of steps (used by trace_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

var validVerdicts = map[engine.Verdict]bool{
	engine.Accept: true,
	engine.Reject: true,
	engine.Loop:   true,
	engine.OK:     true,
	engine.Stuck:  true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// The machine path is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "case:" vs "cases:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Machine != "" && !filepath.IsAbs(scenario.Machine) {
		scenario.Machine = filepath.Join(filepath.Dir(path), scenario.Machine)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Machine == "" {
		return fmt.Errorf("machine is required")
	}
	if _, err := os.Stat(s.Machine); os.IsNotExist(err) {
		return fmt.Errorf("machine file not found: %s", s.Machine)
	}

	if s.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	for i, c := range s.Cases {
		if c.Expect == "" {
			return fmt.Errorf("cases[%d]: expect is required", i)
		}
		if !validVerdicts[c.Expect] {
			return fmt.Errorf("cases[%d]: unknown verdict %q", i, c.Expect)
		}
		for j, a := range c.Assertions {
			if err := validateAssertion(i, j, &a); err != nil {
				return err
			}
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(c, index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("cases[%d].assertions[%d]: type is required", c, index)
	}

	switch a.Type {
	case AssertTraceContains, AssertFinalState:
		if a.State == "" {
			return fmt.Errorf("cases[%d].assertions[%d]: state is required for %s", c, index, a.Type)
		}
	case AssertTraceOrder:
		if len(a.States) == 0 {
			return fmt.Errorf("cases[%d].assertions[%d]: states list is required for trace_order", c, index)
		}
	case AssertTraceCount:
		if a.Count < 0 {
			return fmt.Errorf("cases[%d].assertions[%d]: count must be non-negative for trace_count", c, index)
		}
	default:
		return fmt.Errorf("cases[%d].assertions[%d]: unknown assertion type %q", c, index, a.Type)
	}

	return nil
}
