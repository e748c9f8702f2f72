package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arthurvalves/IC-Tomato/internal/compiler"
	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output directory
}

// CompiledMachine is one compiled machine document.
type CompiledMachine struct {
	Name     string      `json:"name"`
	Kind     ir.Kind     `json:"kind"`
	Document ir.Document `json:"document"`
	File     string      `json:"file,omitempty"`
}

// CompilationResult holds the compiled machines.
type CompilationResult struct {
	Machines []CompiledMachine `json:"machines"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <path>",
		Short: "Compile CUE machine definitions to JSON documents",
		Long: `Compile CUE machine definitions to JSON machine documents.

The compiler parses CUE files, validates every machine, and writes one
<name>.json document per machine into the output directory. Without
--output the documents are printed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output directory")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// Use shared loader with collect-all mode
	loadResult, loadErrors := LoadMachines(path, LoadModeCollectAll)

	// Handle load errors (path not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Message)
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, path)

	errs := loadErrors
	for _, m := range loadResult.Machines {
		formatter.VerboseLog("Compiling machine: %s", m.Name)
		for _, ve := range compiler.Validate(m) {
			errs = append(errs, &LoadError{Code: ve.Code, Message: fmt.Sprintf("machine.%s: %s: %s", m.Name, ve.Field, ve.Message)})
		}
	}
	if len(errs) > 0 {
		return outputCompileErrors(formatter, errs)
	}

	result := &CompilationResult{Machines: make([]CompiledMachine, 0, len(loadResult.Machines))}
	for _, m := range loadResult.Machines {
		result.Machines = append(result.Machines, CompiledMachine{Name: m.Name, Kind: m.Kind(), Document: m.Document})
	}

	if opts.Output != "" {
		if err := writeDocuments(result, opts.Output); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output: %v", err))
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputDir string) error {
	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d machine(s)\n\n", len(result.Machines))
	for _, m := range result.Machines {
		if m.File != "" {
			fmt.Fprintf(formatter.Writer, "  %s (%s) → %s\n", m.Name, m.Kind, m.File)
			continue
		}
		data, err := ir.EncodeDocument(m.Document)
		if err != nil {
			return err
		}
		fmt.Fprintf(formatter.Writer, "%s (%s):\n%s\n\n", m.Name, m.Kind, data)
	}

	if outputDir != "" {
		fmt.Fprintf(formatter.Writer, "\nWrote documents to %s\n", outputDir)
	}
	return nil
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	cliErrors := make([]CLIError, len(errs))
	for i, err := range errs {
		code, message := parseCompileError(err)
		cliErrors[i] = CLIError{Code: code, Message: message}
	}

	if formatter.IsJSON() {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for i, err := range errs {
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", cliErrors[i].Code, cliErrors[i].Message)
	}

	// Compilation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return MapFieldToErrorCode(compileErr.Field), compileErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// writeDocuments writes one indented JSON document per machine and records
// the file names in result.
func writeDocuments(result *CompilationResult, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i, m := range result.Machines {
		data, err := ir.EncodeDocument(m.Document)
		if err != nil {
			return err
		}
		file := filepath.Join(dir, m.Name+".json")
		if err := os.WriteFile(file, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", file, err)
		}
		result.Machines[i].File = file
	}
	return nil
}
