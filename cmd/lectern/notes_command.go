package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newNotesCommand(ctx *commandContext) *cobra.Command {
	notesCmd := &cobra.Command{
		Use:   "notes",
		Short: "Manage free-form course notes",
	}

	notesCmd.AddCommand(newNotesAddCommand(ctx))
	notesCmd.AddCommand(newNotesListCommand(ctx))

	return notesCmd
}

func newNotesAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <course> <note>",
		Short: "Append a note to a course's store",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			course := args[0]
			note := strings.TrimSpace(strings.Join(args[1:], " "))
			if note == "" {
				return fmt.Errorf("note text must not be empty")
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			if err := store.AppendNote(course, note); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Note added to %q\n", course)
			return nil
		},
	}
}

func newNotesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <course>",
		Short: "List a course's notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			cs, err := store.Load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !cs.HasNotes() {
				fmt.Fprintf(out, "No notes for %q.\n", args[0])
				return nil
			}
			for i, note := range cs.Notes {
				fmt.Fprintf(out, "%d. %s\n", i+1, note)
			}
			return nil
		},
	}
}
