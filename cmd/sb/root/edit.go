package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"seoboard/internal/engine"
	"seoboard/internal/ui"
)

func newEditCmd() *cobra.Command {
	var text, due, priority, notes string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task's text, due date, priority or notes",
		Long:  "Only the flags you pass are changed. Pass an empty value to clear due date, priority or notes.",
		Args:  idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			c, t, err := svc.Locate(args[0])
			if err != nil {
				return err
			}
			edit := engine.EditFrom(t)
			if cmd.Flags().Changed("text") {
				edit.Text = text
			}
			if cmd.Flags().Changed("due") {
				edit.DueDate = due
			}
			if cmd.Flags().Changed("priority") {
				p, err := engine.ParsePriority(priority)
				if err != nil {
					return err
				}
				edit.Priority = p
			}
			if cmd.Flags().Changed("notes") {
				edit.Notes = notes
			}

			t, err = svc.UpdateTask(ctx, c, t.ID, edit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", ui.Good.Render(t.Text))
			printDetails(cmd.OutOrStdout(), t)
			return nil
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "New text")
	cmd.Flags().StringVarP(&due, "due", "d", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Priority (low|medium|high)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Notes")

	return cmd
}
