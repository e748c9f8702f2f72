package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/arthurvalves/IC-Tomato/internal/engine"
	"github.com/arthurvalves/IC-Tomato/internal/store"
)

// StoreOptions holds flags shared by the store subcommands.
type StoreOptions struct {
	*RootOptions
	Database string
}

// RevisionSummary describes a stored revision without its body.
type RevisionSummary struct {
	Seq         int64     `json:"seq"`
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Kind        string    `json:"kind"`
	ContentHash string    `json:"content_hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// SaveResult is the outcome of store save.
type SaveResult struct {
	Revision RevisionSummary `json:"revision"`
	Created  bool            `json:"created"`
}

func summarize(r store.Revision) RevisionSummary {
	return RevisionSummary{
		Seq:         r.Seq,
		ID:          r.ID,
		Name:        r.Name,
		Kind:        string(r.Kind),
		ContentHash: r.ContentHash,
		CreatedAt:   r.CreatedAt,
	}
}

// NewStoreCommand creates the store command and its subcommands.
func NewStoreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Keep machine revisions in a SQLite store",
		Long: `Save, load and list machine revisions in a SQLite database.

Every save of a changed document adds a revision; saving an unchanged
document returns the latest revision. Revisions are never rewritten.`,
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "automata.db", "path to the SQLite database")

	cmd.AddCommand(newStoreSaveCommand(opts))
	cmd.AddCommand(newStoreLoadCommand(opts))
	cmd.AddCommand(newStoreHistoryCommand(opts))
	cmd.AddCommand(newStoreListCommand(opts))

	return cmd
}

// withStore opens the database for the duration of fn.
func withStore(opts *StoreOptions, f *OutputFormatter, fn func(*store.Store) error) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStoreFailed, fmt.Sprintf("opening %s: %v", opts.Database, err))
	}
	defer st.Close()
	f.VerboseLog("Opened store %s", opts.Database)
	return fn(st)
}

func storeContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// storeFail maps a store error onto an exit error.
func storeFail(f *OutputFormatter, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return f.Fail(ExitFailure, ErrCodeMachineNotFound, err.Error())
	}
	return f.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error())
}

func newStoreSaveCommand(opts *StoreOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "save <machine>",
		Short: "Save a machine as a new revision",
		Long: `Save a machine document as a new revision. <machine> is a .json document,
a .cue file or a CUE package directory. --name picks the machine from a
CUE file and renames a JSON document.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(opts.RootOptions, cmd)
			eng, err := LoadEngine(args[0], name, engine.WithLogger(f.Logger()))
			if err != nil {
				return failLoad(f, err)
			}
			return withStore(opts, f, func(st *store.Store) error {
				rev, created, err := st.Save(storeContext(cmd), eng.Machine())
				if err != nil {
					return storeFail(f, err)
				}
				res := SaveResult{Revision: summarize(rev), Created: created}
				if f.IsJSON() {
					return f.Success(res)
				}
				if created {
					fmt.Fprintf(f.Writer, "✓ Saved %s (%s) revision %s\n", rev.Name, rev.Kind, rev.ID)
				} else {
					fmt.Fprintf(f.Writer, "= %s unchanged, revision %s\n", rev.Name, rev.ID)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "machine name")
	return cmd
}

func newStoreLoadCommand(opts *StoreOptions) *cobra.Command {
	var revision, output string

	cmd := &cobra.Command{
		Use:           "load <name>",
		Short:         "Print a stored machine document",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(opts.RootOptions, cmd)
			return withStore(opts, f, func(st *store.Store) error {
				ctx := storeContext(cmd)
				var rev store.Revision
				var err error
				if revision != "" {
					rev, err = st.Revision(ctx, revision)
					if err == nil && rev.Name != args[0] {
						err = fmt.Errorf("revision %s belongs to %q: %w", revision, rev.Name, store.ErrNotFound)
					}
				} else {
					rev, err = st.Latest(ctx, args[0])
				}
				if err != nil {
					return storeFail(f, err)
				}

				if output != "" {
					if err := os.WriteFile(output, append(rev.Body, '\n'), 0o644); err != nil {
						return f.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output: %v", err))
					}
				}
				if f.IsJSON() {
					return f.Success(rev)
				}
				if output != "" {
					fmt.Fprintf(f.Writer, "✓ Wrote %s revision %s to %s\n", rev.Name, rev.ID, output)
					return nil
				}
				fmt.Fprintf(f.Writer, "%s\n", rev.Body)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&revision, "revision", "", "revision ID; latest when empty")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the document to this file")
	return cmd
}

func newStoreHistoryCommand(opts *StoreOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "history <name>",
		Short:         "List the revisions of a machine, oldest first",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(opts.RootOptions, cmd)
			return withStore(opts, f, func(st *store.Store) error {
				revs, err := st.History(storeContext(cmd), args[0])
				if err != nil {
					return storeFail(f, err)
				}
				if len(revs) == 0 {
					return storeFail(f, fmt.Errorf("machine %q: %w", args[0], store.ErrNotFound))
				}
				summaries := make([]RevisionSummary, len(revs))
				for i, r := range revs {
					summaries[i] = summarize(r)
				}
				if f.IsJSON() {
					return f.Success(summaries)
				}
				for _, s := range summaries {
					fmt.Fprintf(f.Writer, "%4d  %s  %s  %s\n", s.Seq, s.ID, s.CreatedAt.Format(time.RFC3339), s.ContentHash[:min(12, len(s.ContentHash))])
				}
				return nil
			})
		},
	}
}

func newStoreListCommand(opts *StoreOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List stored machine names",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(opts.RootOptions, cmd)
			return withStore(opts, f, func(st *store.Store) error {
				names, err := st.Names(storeContext(cmd))
				if err != nil {
					return storeFail(f, err)
				}
				if f.IsJSON() {
					return f.Success(names)
				}
				if len(names) == 0 {
					fmt.Fprintln(f.Writer, "No machines stored.")
					return nil
				}
				for _, n := range names {
					fmt.Fprintln(f.Writer, n)
				}
				return nil
			})
		},
	}
}
