package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthurvalves/IC-Tomato/internal/engine"
)

// GrammarOptions holds flags for the grammar command.
type GrammarOptions struct {
	*RootOptions
	Name   string
	Strict bool
}

// NewGrammarCommand creates the grammar command.
func NewGrammarCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GrammarOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "grammar <machine>",
		Short: "Derive the right-linear grammar of a finite automaton",
		Long: `Derive the right-linear grammar generating the language of a finite
automaton. Nonterminals are state names and S names the start state.

The extended form allows the empty production on final states. The strict
form only produces A -> a B and A -> a rules, with S -> ε kept when the
empty word is accepted.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGrammar(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "machine to pick from a CUE file with several")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "produce the strict form")

	return cmd
}

func runGrammar(opts *GrammarOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	eng, err := LoadEngine(path, opts.Name, engine.WithLogger(formatter.Logger()))
	if err != nil {
		return failLoad(formatter, err)
	}
	g, err := eng.Grammar(opts.Strict)
	if err != nil {
		return failLoad(formatter, err)
	}

	if formatter.IsJSON() {
		return formatter.Success(g)
	}
	fmt.Fprintln(formatter.Writer, g.String())
	return nil
}
