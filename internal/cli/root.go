package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the automata CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "automata",
		Short: "Build, run and convert finite automata, pushdown automata, Turing machines and transducers",
		Long: `automata works with five machine kinds: finite automata (fa), pushdown
automata (pda), Turing machines (tm), and Mealy and Moore transducers.

Machines are written in CUE or as JSON documents. They can be validated,
simulated step by step, converted (NFA to DFA, DFA minimization, regular
grammar), tested against YAML scenarios and kept in a revisioned SQLite store.`,
		Version:       ir.ToolVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewSimulateCommand(opts))
	cmd.AddCommand(NewConvertCommand(opts))
	cmd.AddCommand(NewGrammarCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewStoreCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
