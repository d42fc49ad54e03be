// Package history provides the history command listing past generate runs.
package history

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/mediaseed/internal/conf"
	"github.com/tphakala/mediaseed/internal/datastore"
)

// Command creates the history command.
func Command(settings *conf.Settings) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded generate runs, or show one run with its failures",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := datastore.Open(settings.History.Path)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if len(args) == 1 {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printRun(cmd.OutOrStdout(), run)
			}
			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printRuns(cmd.OutOrStdout(), runs)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of runs to list, 0 for all")
	return cmd
}

func printRuns(out io.Writer, runs []datastore.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(out, "No runs recorded.")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tSTARTED\tGENERATED\tINDEXED\tFAILED BATCHES\tDURATION")
	for i := range runs {
		r := &runs[i]
		indexed := "-"
		if r.IndexTotal > 0 {
			indexed = fmt.Sprintf("%d/%d", r.Indexed, r.IndexTotal)
		}
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\t%d\t%s\n",
			r.RunID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Generated, r.Requested,
			indexed,
			len(r.Failures),
			r.Duration.Round(time.Millisecond))
	}
	return w.Flush()
}

func printRun(out io.Writer, r *datastore.Run) error {
	fmt.Fprintf(out, "Run:            %s\n", r.RunID)
	fmt.Fprintf(out, "Started:        %s\n", r.StartedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(out, "Seed:           %s\n", r.Seed)
	fmt.Fprintf(out, "Reference time: %s\n", r.ReferenceTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(out, "Generated:      %d/%d (%d failed)\n", r.Generated, r.Requested, r.Failed)
	if r.IndexTotal > 0 {
		fmt.Fprintf(out, "Indexed:        %d/%d\n", r.Indexed, r.IndexTotal)
	}
	if r.Output != "" {
		fmt.Fprintf(out, "Output:         %s\n", r.Output)
	}
	if len(r.Failures) == 0 {
		return nil
	}

	fmt.Fprintln(out, "Failed batches:")
	for i := range r.Failures {
		f := &r.Failures[i]
		if f.Error != "" {
			fmt.Fprintf(out, "  %s batch %d (%d docs): %s\n", f.Index, f.Batch, f.Size, f.Error)
			continue
		}
		fmt.Fprintf(out, "  %s batch %d: %d of %d failed\n", f.Index, f.Batch, f.Failed, f.Size)
		samples, err := f.DecodeSamples()
		if err != nil {
			return err
		}
		for _, s := range samples {
			fmt.Fprintf(out, "    %s: %s: %s\n", s.ID, s.Type, s.Reason)
		}
		if f.Omitted > 0 {
			fmt.Fprintf(out, "    ... %d more\n", f.Omitted)
		}
	}
	return nil
}
