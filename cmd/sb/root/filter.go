package root

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"seoboard/internal/engine"
	"seoboard/internal/ui"
)

func newFilterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Show or change the saved filters of a category",
	}
	cmd.AddCommand(
		newFilterShowCmd(),
		newFilterSetCmd(),
		newFilterResetCmd(),
		newFilterGlobalCmd(),
	)
	return cmd
}

func printFilter(w io.Writer, svc *engine.Service, c engine.Category) {
	f, ok := svc.Filter(c)
	if !ok {
		fmt.Fprintln(w, ui.Muted.Render(c.Label()+" has no filters."))
		return
	}
	scope := "per category"
	if svc.Filters().Global {
		scope = "global"
	}
	fmt.Fprintln(w, ui.Heading(ui.IconSearch, "Filters for "+c.Label()))
	fmt.Fprintln(w, ui.LabelValue("Scope", scope))
	fmt.Fprintln(w, ui.LabelValue("Status", f.Status))
	fmt.Fprintln(w, ui.LabelValue("Priority", f.Priority))
	fmt.Fprintln(w, ui.LabelValue("Sort", fmt.Sprintf("%s %s", f.SortBy, f.SortDirection)))
	search := f.SearchTerm
	if search == "" {
		search = ui.Muted.Render("(none)")
	}
	fmt.Fprintln(w, ui.LabelValue("Search", search))
}

func newFilterShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active filters",
		Args:  cobra.NoArgs,
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

			printFilter(cmd.OutOrStdout(), svc, c)
			return nil
		},
	}
}

func newFilterSetCmd() *cobra.Command {
	var status, priority, sortBy, direction, search string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change filter fields; unspecified fields keep their value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := categoryFlag()
			if err != nil {
				return err
			}

			var patch engine.FilterPatch
			if cmd.Flags().Changed("status") {
				v, err := engine.ParseStatusFilter(status)
				if err != nil {
					return err
				}
				patch.Status = &v
			}
			if cmd.Flags().Changed("priority") {
				v, err := engine.ParsePriorityFilter(priority)
				if err != nil {
					return err
				}
				patch.Priority = &v
			}
			if cmd.Flags().Changed("sort") {
				v, err := engine.ParseSortBy(sortBy)
				if err != nil {
					return err
				}
				patch.SortBy = &v
			}
			if cmd.Flags().Changed("direction") {
				v, err := engine.ParseSortDirection(direction)
				if err != nil {
					return err
				}
				patch.SortDirection = &v
			}
			if cmd.Flags().Changed("search") {
				patch.SearchTerm = &search
			}

			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := svc.SetFilter(ctx, c, patch); err != nil {
				return err
			}
			printFilter(cmd.OutOrStdout(), svc, c)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "all|completed|incomplete")
	cmd.Flags().StringVar(&priority, "priority", "", "all|none|low|medium|high")
	cmd.Flags().StringVar(&sortBy, "sort", "", "default|dueDate|priority|text")
	cmd.Flags().StringVar(&direction, "direction", "", "asc|desc")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive text/notes search (empty clears)")

	return cmd
}

func newFilterResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore default filters",
		Args:  cobra.NoArgs,
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

			if err := svc.ResetFilter(ctx, c); err != nil {
				return err
			}
			printFilter(cmd.OutOrStdout(), svc, c)
			return nil
		},
	}
}

func newFilterGlobalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "global",
		Short: "Toggle between one shared filter set and per-category filters",
		Args:  cobra.NoArgs,
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

			if svc.ToggleGlobalFilters(ctx, c) {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render("Global filters enabled."))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Warn.Render("Global filters disabled."))
			}
			return nil
		},
	}
}
