package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newMoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <id> <position>",
		Short: "Move a task within its sibling list (position is 1-based)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("id and position are required")
			}
			if n, err := strconv.Atoi(args[1]); err != nil || n < 1 {
				return errors.New("position must be a positive integer")
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

			c, t, err := svc.Locate(args[0])
			if err != nil {
				return err
			}
			pos, _ := strconv.Atoi(args[1])
			parent, _, _, ok := svc.Siblings(c, t.ID)
			if !ok {
				return fmt.Errorf("task %s has no sibling list", t.ID)
			}
			if err := svc.ReorderTask(ctx, c, parent, t.ID, pos-1); err != nil {
				return err
			}
			_, list, idx, _ := svc.Siblings(c, t.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to position %d of %d\n", t.Text, idx+1, len(list))
			return nil
		},
	}
	return cmd
}
