package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"seoboard/internal/ui"
)

func newResetCmd() *cobra.Command {
	var wipe bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the starter checklist (or empty every category with --clear)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("this replaces all current tasks; pass --yes to confirm")
			}
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if wipe {
				svc.Clear(ctx)
				fmt.Fprintln(cmd.OutOrStdout(), ui.Warn.Render("All categories cleared."))
			} else {
				svc.Reset(ctx)
				fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconRocket+" Starter checklist restored."))
			}
			if err := svc.Warning(); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&wipe, "clear", false, "Leave every category empty")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm replacing the current tasks")
	return cmd
}
