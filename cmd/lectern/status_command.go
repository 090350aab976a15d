package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lectern/internal/journal"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var failedOnly bool
	var limit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the processing journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			jnl, err := ctx.openJournal()
			if err != nil {
				return err
			}
			defer jnl.Close()

			stats, err := jnl.Stats(cmd.Context())
			if err != nil {
				return err
			}

			status := ""
			if failedOnly {
				status = journal.StatusFailed
			}
			entries, err := jnl.List(cmd.Context(), status)
			if err != nil {
				return err
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Completed: %d  Failed: %d\n",
				stats[journal.StatusCompleted], stats[journal.StatusFailed])

			if len(entries) == 0 {
				fmt.Fprintln(out, "No journal entries.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				detail := entry.ArchiveDir
				if entry.Status == journal.StatusFailed {
					detail = entry.ErrorMsg
				}
				rows = append(rows, []string{
					entry.CreatedAt.Local().Format("2006-01-02 15:04"),
					truncate(entry.SourcePath, 48),
					entry.Course,
					entry.Status,
					truncate(detail, 56),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Processed At", "Recording", "Course", "Status", "Detail"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Show only failed recordings")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to display (0 for all)")
	return cmd
}
