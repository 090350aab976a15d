package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLecturesCommand(ctx *commandContext) *cobra.Command {
	lecturesCmd := &cobra.Command{
		Use:   "lectures",
		Short: "Inspect and edit stored lecture records",
	}

	lecturesCmd.AddCommand(newLecturesListCommand(ctx))
	lecturesCmd.AddCommand(newLecturesRelabelCommand(ctx))

	return lecturesCmd
}

func newLecturesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list [course]",
		Short: "List lecture records, for one course or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}

			var courses []string
			if len(args) == 1 {
				courses = []string{args[0]}
			} else {
				courses, err = store.ListCourses()
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			var rows [][]string
			for _, course := range courses {
				cs, err := store.Load(course)
				if err != nil {
					return err
				}
				for i, lecture := range cs.Lectures {
					rows = append(rows, []string{
						fmt.Sprintf("%d", i+1),
						lecture.Metadata.Course,
						lecture.Metadata.Date,
						lecture.Metadata.Time,
						strings.Join(lecture.Speakers, ", "),
						truncate(lecture.Summary, 56),
					})
				}
			}

			if len(rows) == 0 {
				fmt.Fprintln(out, "No lecture records found.")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Course", "Date", "Time", "Speakers", "Summary"}, rows))
			return nil
		},
	}
}

func newLecturesRelabelCommand(ctx *commandContext) *cobra.Command {
	var mappings []string

	cmd := &cobra.Command{
		Use:   "relabel <course> <number>",
		Short: "Rename diarized speakers in a stored lecture",
		Long: `Relabel applies speaker name mappings to the lecture record selected by
its number in "lectern lectures list <course>". The update only takes
effect if the record can be located unambiguously in the course store.`,
		Example: `  lectern lectures relabel "Linear Algebra" 2 \
      --speaker SPEAKER_00="Dr. Chen" --speaker SPEAKER_01=Student`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			course := args[0]
			index, err := parseRecordNumber(args[1])
			if err != nil {
				return err
			}

			mapping, err := parseSpeakerMappings(mappings)
			if err != nil {
				return err
			}
			if len(mapping) == 0 {
				return fmt.Errorf("at least one --speaker OLD=NEW mapping is required")
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			cs, err := store.Load(course)
			if err != nil {
				return err
			}
			if index < 1 || index > len(cs.Lectures) {
				return fmt.Errorf("record %d out of range (course has %d records)", index, len(cs.Lectures))
			}
			record := cs.Lectures[index-1]

			relabeler, err := ctx.newRelabeler()
			if err != nil {
				return err
			}
			updated, err := relabeler.Relabel(course, record, mapping)
			if err != nil {
				return fmt.Errorf("relabel not applied: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Speakers updated: %s\n", strings.Join(updated.Speakers, ", "))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&mappings, "speaker", nil, "Speaker mapping OLD=NEW (repeatable)")
	return cmd
}

func parseRecordNumber(value string) (int, error) {
	var index int
	if _, err := fmt.Sscanf(value, "%d", &index); err != nil {
		return 0, fmt.Errorf("record number must be an integer, got %q", value)
	}
	return index, nil
}

func parseSpeakerMappings(raw []string) (map[string]string, error) {
	mapping := make(map[string]string, len(raw))
	for _, pair := range raw {
		key, value, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if !found || key == "" || value == "" {
			return nil, fmt.Errorf("invalid --speaker mapping %q, expected OLD=NEW", pair)
		}
		mapping[key] = value
	}
	return mapping, nil
}
