package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthurvalves/IC-Tomato/internal/engine"
	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	Name     string
	Minimize bool
	Output   string // output file; stdout when empty
}

// ConversionResult describes a converted finite automaton.
type ConversionResult struct {
	Machine   string      `json:"machine"`
	Minimized bool        `json:"minimized"`
	States    int         `json:"states"`
	File      string      `json:"file,omitempty"`
	Document  ir.Document `json:"document"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <machine>",
		Short: "Convert a finite automaton to a DFA",
		Long: `Convert a finite automaton to an equivalent deterministic one with the
subset construction. With --minimize the DFA is also reduced to its
minimal form. Only fa machines can be converted.

Examples:
  automata convert ends_in_abb.json
  automata convert machines.cue --name ends_in_abb --minimize -o dfa.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "machine to pick from a CUE file with several")
	cmd.Flags().BoolVar(&opts.Minimize, "minimize", false, "minimize the resulting DFA")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the document to this file")

	return cmd
}

func runConvert(opts *ConvertOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	eng, err := LoadEngine(path, opts.Name, engine.WithLogger(formatter.Logger()))
	if err != nil {
		return failLoad(formatter, err)
	}

	eng, err = eng.ToDFA()
	if err == nil && opts.Minimize {
		eng, err = eng.Minimize()
	}
	if err != nil {
		return failLoad(formatter, err)
	}

	result := ConversionResult{
		Machine:   eng.Name(),
		Minimized: opts.Minimize,
		States:    len(eng.Automaton().States()),
		Document:  eng.Document(),
	}

	data, err := eng.ToJSON()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
	}
	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, append(data, '\n'), 0o644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output: %v", err))
		}
		result.File = opts.Output
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	if result.File != "" {
		fmt.Fprintf(formatter.Writer, "✓ %s: %d states → %s\n", result.Machine, result.States, result.File)
		return nil
	}
	fmt.Fprintf(formatter.Writer, "%s\n", data)
	return nil
}
