package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"seoboard/internal/ui"
)

func idArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("id is required")
	}
	return nil
}

func newDoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "do <id>",
		Short: "Toggle a task between done and open",
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
			t, err = svc.ToggleTask(ctx, c, t.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s is now %s\n", ui.CheckIcon(t.Completed), t.Text, ui.StatusText(t.Completed))
			return nil
		},
	}
	return cmd
}

func newExpandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand <id>",
		Short: "Toggle whether a task's subtasks are shown",
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
			t, err = svc.ToggleExpanded(ctx, c, t.ID)
			if err != nil {
				return err
			}
			state := "collapsed"
			if t.IsExpanded {
				state = "expanded"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", t.Text, state)
			return nil
		},
	}
	return cmd
}
