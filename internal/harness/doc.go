// Package harness provides conformance testing for machine definitions.
//
// A scenario names one machine and the inputs it must accept, reject or
// translate. The harness loads the machine, runs every case through the
// engine, and checks verdicts, outputs and trace assertions.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	machine: machines/even_zeros.json   # or a .cue file
//	machine_name: even_zeros            # optional, picks one machine of a CUE file
//	max_steps: 100                      # optional, Turing machines only
//	cases:
//	  - input: "00"
//	    expect: accept
//	    assertions:
//	      - type: trace_contains
//	        state: odd
//	      - type: final_state
//	        state: even
//	  - input: "10"
//	    expect: ok
//	    output: "11"
//
// # Verdicts
//
// Acceptors (fa, pda, tm) end in accept or reject; a Turing machine that
// exhausts its step budget ends in loop. Transducers (mealy, moore) end in
// ok, or stuck when no rule matches the remaining input.
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - trace_contains: Verifies a state is active at some step
//   - trace_order: Verifies states are first entered in the given order
//   - trace_count: Verifies the run takes exactly N steps
//   - final_state: Verifies a state is active at the last step
//
// # Golden Traces
//
// RunWithGolden renders every case's trace as canonical JSON and compares
// it with testdata/golden/<name>.golden using goldie.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/even_zeros.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, msg := range result.Errors {
//	    log.Println(msg)
//	}
package harness
