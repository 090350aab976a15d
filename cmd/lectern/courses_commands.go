package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lectern/internal/schedule"
)

func newCoursesCommand(ctx *commandContext) *cobra.Command {
	coursesCmd := &cobra.Command{
		Use:   "courses",
		Short: "Manage the course catalog",
	}

	coursesCmd.AddCommand(newCoursesListCommand(ctx))
	coursesCmd.AddCommand(newCoursesAddCommand(ctx))
	coursesCmd.AddCommand(newCoursesEditCommand(ctx))
	coursesCmd.AddCommand(newCoursesRemoveCommand(ctx))

	return coursesCmd
}

func newCoursesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configured courses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := ctx.openCatalog()
			if err != nil {
				return err
			}
			courses, err := cat.List()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(courses) == 0 {
				fmt.Fprintln(out, "No courses defined.")
				return nil
			}

			rows := make([][]string, 0, len(courses))
			for _, course := range courses {
				rows = append(rows, []string{
					course.Name,
					strings.Join(course.Keywords, ", "),
					fmt.Sprintf("%d", course.DurationMinutes),
					formatSchedule(course.Schedule),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Course", "Keywords", "Duration (min)", "Schedule"}, rows))
			return nil
		},
	}
}

func formatSchedule(entries []schedule.Entry) string {
	if len(entries) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		parts = append(parts, fmt.Sprintf("%s %s", strings.Join(entry.Days, "/"), entry.StartTime))
	}
	return strings.Join(parts, "; ")
}

func courseFlags(cmd *cobra.Command, name, keywords *string, duration *int, days, startTimes *[]string) {
	cmd.Flags().StringVar(name, "name", "", "Course name (unique)")
	cmd.Flags().StringVar(keywords, "keywords", "", "Comma-separated keywords")
	cmd.Flags().IntVar(duration, "duration", 60, "Lecture duration in minutes")
	cmd.Flags().StringSliceVar(days, "days", nil, "Weekdays for a schedule entry (repeatable, comma-separated)")
	cmd.Flags().StringSliceVar(startTimes, "start-time", nil, "HH:MM start time per schedule entry (repeatable)")
}

func buildCourse(name, keywords string, duration int, days, startTimes []string) (schedule.Course, error) {
	course := schedule.Course{
		Name:            strings.TrimSpace(name),
		DurationMinutes: duration,
	}
	for _, keyword := range strings.Split(keywords, ",") {
		if trimmed := strings.TrimSpace(keyword); trimmed != "" {
			course.Keywords = append(course.Keywords, trimmed)
		}
	}

	if len(days) != len(startTimes) {
		return course, fmt.Errorf("each --days group needs a matching --start-time (%d vs %d)", len(days), len(startTimes))
	}
	for i := range days {
		var entryDays []string
		for _, day := range strings.Split(days[i], "/") {
			if trimmed := strings.TrimSpace(day); trimmed != "" {
				entryDays = append(entryDays, trimmed)
			}
		}
		course.Schedule = append(course.Schedule, schedule.Entry{
			Days:      entryDays,
			StartTime: strings.TrimSpace(startTimes[i]),
		})
	}
	return course, nil
}

func newCoursesAddCommand(ctx *commandContext) *cobra.Command {
	var (
		name       string
		keywords   string
		duration   int
		days       []string
		startTimes []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a course to the catalog",
		Example: `  lectern courses add --name "Linear Algebra" --duration 90 \
      --days Monday/Wednesday --start-time 10:00`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := ctx.openCatalog()
			if err != nil {
				return err
			}
			course, err := buildCourse(name, keywords, duration, days, startTimes)
			if err != nil {
				return err
			}
			if err := cat.Add(course); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added course %q\n", course.Name)
			return nil
		},
	}
	courseFlags(cmd, &name, &keywords, &duration, &days, &startTimes)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newCoursesEditCommand(ctx *commandContext) *cobra.Command {
	var (
		name       string
		keywords   string
		duration   int
		days       []string
		startTimes []string
	)

	cmd := &cobra.Command{
		Use:   "edit <course>",
		Short: "Replace a course's definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := ctx.openCatalog()
			if err != nil {
				return err
			}
			if name == "" {
				name = args[0]
			}
			course, err := buildCourse(name, keywords, duration, days, startTimes)
			if err != nil {
				return err
			}
			if err := cat.Update(args[0], course); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated course %q\n", course.Name)
			return nil
		},
	}
	courseFlags(cmd, &name, &keywords, &duration, &days, &startTimes)
	return cmd
}

func newCoursesRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <course>",
		Short: "Remove a course from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := ctx.openCatalog()
			if err != nil {
				return err
			}
			if err := cat.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed course %q\n", args[0])
			return nil
		},
	}
}
