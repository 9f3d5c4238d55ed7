package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"seoboard/internal/ui"
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task to a category",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("text is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := categoryFlag()
			if err != nil {
				return err
			}
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := svc.AddTask(ctx, c, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s to %s %s\n",
				ui.IconPlus, ui.Good.Render(t.Text), c.Label(), ui.Muted.Render("["+shortID(t.ID)+"]"))
			return nil
		},
	}
	return cmd
}

func newSubCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sub <parent-id> <text>",
		Short: "Add a subtask under an existing task",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("parent id and text are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			c, parent, err := svc.Locate(args[0])
			if err != nil {
				return err
			}
			t, err := svc.AddSubTask(ctx, c, parent.ID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s under %s %s\n",
				ui.IconPlus, ui.Good.Render(t.Text), parent.Text, ui.Muted.Render("["+shortID(t.ID)+"]"))
			return nil
		},
	}
	return cmd
}
