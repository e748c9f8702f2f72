package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthurvalves/IC-Tomato/internal/compiler"
	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

// MachineReport holds the findings for one machine.
type MachineReport struct {
	Name     string                     `json:"name"`
	Kind     ir.Kind                    `json:"kind"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.Warning         `json:"warnings,omitempty"`
	Skipped  []ir.Warning               `json:"skipped,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Machines []MachineReport            `json:"machines"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"` // load and compile errors
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate machine definitions",
		Long: `Validate CUE machine definitions or a JSON machine document.

<path> is a directory holding a CUE package, a .cue file or a .json file.
Structural errors (unknown states, empty symbols, bad moves, nondeterminism
in deterministic kinds, missing Moore outputs) fail validation. Reachability
findings (unreachable states, dead states, Turing machine loops) are
reported as warnings.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	result, err := ValidatePath(path, formatter)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Message)
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
	}

	if formatter.IsJSON() {
		status := "ok"
		if !result.Valid {
			status = "error"
		}
		if err := formatter.encode(CLIResponse{Status: status, Data: result}); err != nil {
			return err
		}
	} else {
		printValidation(formatter, result)
	}

	if !result.Valid {
		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", countErrors(result)))
	}
	return nil
}

// ValidatePath validates every machine under path. A returned error means
// nothing could be loaded; compile errors are part of the result.
func ValidatePath(path string, formatter *OutputFormatter) (*ValidationResult, error) {
	result := &ValidationResult{Valid: true, Machines: []MachineReport{}}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading %s: %v", path, err)}
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		m, skipped, err := ir.DecodeMachine(name, data)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: err.Error()}
		}
		result.add(report(m, skipped, formatter))
		return result, nil
	}

	loaded, loadErrors := LoadMachines(path, LoadModeCollectAll)
	if loaded == nil && len(loadErrors) > 0 {
		return nil, loadErrors[0]
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, path)

	for _, err := range loadErrors {
		ve := compiler.ValidationError{Field: "load", Message: err.Error(), Code: ErrCodeGeneric}
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			ve.Code = loadErr.Code
			ve.Message = loadErr.Message
			if loadErr.Pos.IsValid() {
				ve.Line = loadErr.Pos.Line()
			}
		}
		result.Errors = append(result.Errors, ve)
		result.Valid = false
	}
	for _, m := range loaded.Machines {
		result.add(report(m, nil, formatter))
	}
	return result, nil
}

func report(m *ir.Machine, skipped []ir.Warning, formatter *OutputFormatter) MachineReport {
	formatter.VerboseLog("Validating machine: %s (%s)", m.Name, m.Kind())
	r := MachineReport{
		Name:    m.Name,
		Kind:    m.Kind(),
		Errors:  compiler.Validate(m),
		Skipped: skipped,
	}
	if len(r.Errors) == 0 {
		r.Warnings = compiler.Analyze(m)
	}
	return r
}

func (r *ValidationResult) add(m MachineReport) {
	r.Machines = append(r.Machines, m)
	if len(m.Errors) > 0 {
		r.Valid = false
	}
}

func countErrors(r *ValidationResult) int {
	n := len(r.Errors)
	for _, m := range r.Machines {
		n += len(m.Errors)
	}
	return n
}

// printValidation writes the text report.
func printValidation(f *OutputFormatter, r *ValidationResult) {
	for _, e := range r.Errors {
		if e.Line > 0 {
			fmt.Fprintf(f.Writer, "line %d\n", e.Line)
		}
		fmt.Fprintf(f.Writer, "  %s: %s\n", e.Code, e.Message)
	}
	for _, m := range r.Machines {
		mark := "✓"
		if len(m.Errors) > 0 {
			mark = "✗"
		}
		fmt.Fprintf(f.Writer, "%s %s (%s)\n", mark, m.Name, m.Kind)
		for _, e := range m.Errors {
			fmt.Fprintf(f.Writer, "  %s %s: %s\n", e.Code, e.Field, e.Message)
		}
		for _, w := range m.Warnings {
			fmt.Fprintf(f.Writer, "  %s\n", w.String())
		}
		for _, s := range m.Skipped {
			fmt.Fprintf(f.Writer, "  skipped %s\n", s.String())
		}
	}

	if r.Valid {
		fmt.Fprintln(f.Writer, "✓ All machines valid")
		return
	}
	fmt.Fprintln(f.Writer, "✗ Validation failed")
}
