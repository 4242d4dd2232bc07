package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"assetsync/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var pruneDays int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent runs, or the files of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				c := cmd.Context()
				if pruneDays > 0 {
					return pruneHistory(c, cmd, store, pruneDays)
				}
				if len(args) == 1 {
					return showRun(c, cmd, store, args[0])
				}
				return listRuns(c, cmd, store, limit)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().IntVar(&pruneDays, "prune-days", 0, "Delete runs older than this many days instead of listing")
	return cmd
}

func listRuns(ctx context.Context, cmd *cobra.Command, store *history.Store, limit int) error {
	runs, err := store.RecentRuns(ctx, limit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.Kind,
			run.Status,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			formatDuration(run.Duration()),
			fmt.Sprintf("%d/%d", run.Processed, run.Total),
			strconv.Itoa(run.Failed),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Kind", "Status", "Started", "Duration", "Done", "Failed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
		"",
	))
	return nil
}

func showRun(ctx context.Context, cmd *cobra.Command, store *history.Store, id string) error {
	run, err := store.GetRun(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("run %s not found", id)
		}
		return err
	}
	files, err := store.FilesForRun(ctx, run.ID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%s, %s)\n", run.ID, run.Kind, run.Status)
	fmt.Fprintf(out, "Started: %s\n", run.StartedAt.Local().Format(time.RFC3339))
	if run.Summary != "" {
		fmt.Fprintf(out, "Summary: %s\n", run.Summary)
	}
	if len(files) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{f.UID, f.Kind, f.Status, strings.Join(f.Keys, ", "), f.Error})
	}
	fmt.Fprintln(out, renderTable([]string{"UID", "Kind", "Status", "Keys", "Error"}, rows, nil, ""))
	return nil
}

func pruneHistory(ctx context.Context, cmd *cobra.Command, store *history.Store, days int) error {
	cutoff := time.Now().AddDate(0, 0, -days)
	removed, err := store.Prune(ctx, cutoff)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs older than %d days\n", removed, days)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(100 * time.Millisecond).String()
}
