package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"nbalake/internal/metastore"
)

func newRunsCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "Show pipeline run history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runs, metaDB, err := a.openMetastore()
			if err != nil {
				return err
			}
			defer func() { _ = metaDB.Close() }()

			if len(args) == 1 {
				return showRun(ctx, runs, args[0])
			}

			list, err := runs.ListRuns(ctx, limit)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("No runs recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tTRIGGER\tSTATUS\tSTARTED\tDURATION")
			for _, run := range list {
				duration := "-"
				if run.FinishedAt != nil {
					duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					run.ID, run.Trigger, run.Status,
					run.StartedAt.Format(time.RFC3339), duration)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to list")
	return cmd
}

func showRun(ctx context.Context, runs *metastore.RunStore, runID string) error {
	run, err := runs.GetRun(ctx, runID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s (%s): %s\n", run.ID, run.Trigger, run.Status)
	if run.Error != nil {
		fmt.Printf("Error: %s\n", *run.Error)
	}

	steps, err := runs.ListSteps(ctx, runID)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tSTATUS\tROWS\tERROR")
	for _, step := range steps {
		rows := "-"
		if step.RowsAffected != nil {
			rows = fmt.Sprintf("%d", *step.RowsAffected)
		}
		errMsg := ""
		if step.Error != nil {
			errMsg = *step.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", step.ModelName, step.Status, rows, errMsg)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	results, err := runs.ListTestResults(ctx, runID)
	if err != nil {
		return err
	}
	if len(results) > 0 {
		fmt.Println("\nTests:")
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "MODEL\tTEST\tSTATUS")
		for _, res := range results {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", res.ModelName, res.TestName, res.Status)
		}
		return tw.Flush()
	}
	return nil
}
