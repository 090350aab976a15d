package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Process all audio recordings in the incoming directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, jnl, err := ctx.buildPipeline()
			if err != nil {
				return err
			}
			defer jnl.Close()

			summary, err := p.ProcessDirectory(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(summary.Results) == 0 {
				fmt.Fprintln(out, "No audio recordings found in the incoming directory.")
				return nil
			}

			rows := make([][]string, 0, len(summary.Results))
			for _, result := range summary.Results {
				status := "ok"
				note := result.ArchiveDir
				if result.Err != nil {
					status = "failed"
					note = result.Err.Error()
				} else if result.Duplicate {
					status = "ok (duplicate content)"
				}
				rows = append(rows, []string{
					truncate(result.Source, 48),
					result.Course,
					status,
					truncate(note, 64),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Recording", "Course", "Status", "Detail"}, rows))
			fmt.Fprintf(out, "Finished: %s\n", summary.Describe())

			if summary.Failed > 0 {
				return fmt.Errorf("%d recording(s) failed", summary.Failed)
			}
			return nil
		},
	}
}
