package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthurvalves/IC-Tomato/internal/engine"
	"github.com/arthurvalves/IC-Tomato/internal/store"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Name     string // machine name within a CUE file, or stored name with --db
	MaxSteps int
	Trace    bool
	Database string // load the machine from this store instead of a file
	Revision string // stored revision ID; latest when empty
}

// SimulationResult holds every outcome of one simulate call.
type SimulationResult struct {
	Machine  string           `json:"machine"`
	Kind     string           `json:"kind"`
	Outcomes []engine.Outcome `json:"outcomes"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <machine> [input...]",
		Short: "Run inputs through a machine",
		Long: `Run inputs through a machine and report each verdict.

<machine> is a .json document, a .cue file or a CUE package directory.
With --db it is the name of a stored machine instead. When no input is
given, inputs are read from stdin, one per line.

Verdicts:
  fa, pda       accept | reject
  tm            accept | reject | loop (step budget exhausted)
  mealy, moore  ok | stuck, with the produced output

Examples:
  automata simulate even_zeros.json 0110 010
  automata simulate machines.cue --name even_as --max-steps 200 --trace aaaa
  automata simulate --db automata.db parity 1011`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "machine to pick from a CUE file with several")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", engine.DefaultMaxSteps, "step budget for Turing machines")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "print every step")
	cmd.Flags().StringVar(&opts.Database, "db", "", "load the machine from this SQLite store")
	cmd.Flags().StringVar(&opts.Revision, "revision", "", "stored revision ID (requires --db)")

	return cmd
}

func runSimulate(opts *SimulateOptions, machine string, inputs []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	engOpts := []engine.EngineOption{
		engine.WithMaxSteps(opts.MaxSteps),
		engine.WithLogger(formatter.Logger()),
	}

	var eng *engine.Engine
	var err error
	if opts.Database != "" {
		eng, err = loadStored(storeContext(cmd), opts.Database, machine, opts.Revision, engOpts)
	} else {
		if opts.Revision != "" {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "--revision requires --db")
		}
		eng, err = LoadEngine(machine, opts.Name, engOpts...)
	}
	if err != nil {
		return failLoad(formatter, err)
	}
	for _, w := range eng.Warnings() {
		formatter.VerboseLog("skipped %s", w.String())
	}

	if len(inputs) == 0 {
		if inputs, err = readLines(cmd.InOrStdin()); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("reading stdin: %v", err))
		}
	}

	result := SimulationResult{
		Machine:  eng.Name(),
		Kind:     string(eng.Kind()),
		Outcomes: eng.RunAll(inputs),
	}
	if formatter.IsJSON() {
		if !opts.Trace {
			for i := range result.Outcomes {
				result.Outcomes[i].Trace = nil
			}
		}
		return formatter.Success(result)
	}

	for _, o := range result.Outcomes {
		printOutcome(formatter.Writer, o, opts.Trace)
	}
	return nil
}

// loadStored builds the engine for a stored revision.
func loadStored(ctx context.Context, db, name, revision string, opts []engine.EngineOption) (*engine.Engine, error) {
	st, err := store.Open(db)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeStoreFailed, Message: err.Error()}
	}
	defer st.Close()

	var rev store.Revision
	if revision != "" {
		rev, err = st.Revision(ctx, revision)
	} else {
		rev, err = st.Latest(ctx, name)
	}
	if err != nil {
		code := ErrCodeStoreFailed
		if errors.Is(err, store.ErrNotFound) {
			code = ErrCodeMachineNotFound
		}
		return nil, &LoadError{Code: code, Message: err.Error()}
	}
	eng, err := engine.LoadJSON(rev.Name, rev.Body, opts...)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: err.Error()}
	}
	return eng, nil
}

// failLoad reports a machine that could not be loaded.
func failLoad(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return f.Fail(ExitCommandError, loadErr.Code, loadErr.Message)
	}
	if engine.IsUnsupportedError(err) {
		return f.Fail(ExitCommandError, ErrCodeUnsupported, err.Error())
	}
	return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	return lines, sc.Err()
}

// printOutcome writes one outcome as text, with its steps when trace is set.
func printOutcome(w io.Writer, o engine.Outcome, trace bool) {
	fmt.Fprintf(w, "%q %s", o.Input, o.Verdict)
	if o.Verdict == engine.OK {
		fmt.Fprintf(w, " → %q", o.Output)
	}
	fmt.Fprintf(w, " (%d steps)", o.Steps)
	if o.Truncated {
		fmt.Fprint(w, " [truncated]")
	}
	fmt.Fprintln(w)

	if !trace {
		return
	}
	for i, step := range o.Trace {
		fmt.Fprintf(w, "  %d: %s\n", i, formatStep(step))
	}
}

// formatStep renders a trace step according to the fields it carries.
func formatStep(s engine.TraceStep) string {
	switch {
	case len(s.States) > 0:
		return fmt.Sprintf("pos=%d {%s}", s.Pos, strings.Join(s.States, ", "))
	case len(s.Tape) > 0:
		cells := make([]string, len(s.Tape))
		for i, c := range s.Tape {
			if s.Offset+i == s.Pos {
				c = "[" + c + "]"
			}
			cells[i] = c
		}
		return fmt.Sprintf("%s %s", s.State, strings.Join(cells, " "))
	case s.Active > 0:
		return fmt.Sprintf("pos=%d %s [%s] (%d active)", s.Pos, s.State, strings.Join(s.Stack, " "), s.Active)
	default:
		return fmt.Sprintf("pos=%d %s out=%q", s.Pos, s.State, s.Output)
	}
}
