package root

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"seoboard/internal/engine"
	"seoboard/internal/ui"
)

func newListCmd() *cobra.Command {
	var all bool
	var collapsed bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks (tree view) with the saved filters applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cats := engine.Categories
			if !all {
				c, err := categoryFlag()
				if err != nil {
					return err
				}
				cats = []engine.Category{c}
			}

			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			for i, c := range cats {
				if i > 0 {
					fmt.Fprintln(out, "")
				}
				heading := ui.Heading(ui.CategoryIcon(string(c)), c.Label())
				if f, ok := svc.Filter(c); ok && !f.IsDefault() {
					heading += " " + ui.Muted.Render("("+describeFilter(f)+")")
				}
				fmt.Fprintln(out, heading)

				forest := svc.View(c)
				if len(forest) == 0 {
					fmt.Fprintln(out, ui.Muted.Render("  (no tasks)"))
					continue
				}
				printTree(out, forest, 0, collapsed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "List every category")
	cmd.Flags().BoolVar(&collapsed, "collapsed", false, "Hide subtasks of collapsed tasks")

	return cmd
}

func printTree(w io.Writer, forest []engine.Task, depth int, collapsed bool) {
	for _, t := range forest {
		text := t.Text
		if t.Completed {
			text = ui.Done.Render(text)
		}
		line := fmt.Sprintf("%s%s %s %s", strings.Repeat("  ", depth+1), ui.CheckIcon(t.Completed), ui.Muted.Render(shortID(t.ID)), text)
		if badge := ui.PriorityBadge(string(t.Priority)); badge != "" {
			line += " " + badge
		}
		if t.DueDate != "" {
			line += " " + ui.Muted.Render(ui.IconCal+" "+t.DueDate)
		}
		if t.Notes != "" {
			line += " " + ui.IconNote
		}
		if collapsed && !t.IsExpanded && t.HasChildren() {
			line += " " + ui.Muted.Render(fmt.Sprintf("(+%d)", engine.Count(t.SubTasks)))
			fmt.Fprintln(w, line)
			continue
		}
		fmt.Fprintln(w, line)
		printTree(w, t.SubTasks, depth+1, collapsed)
	}
}

func printDetails(w io.Writer, t engine.Task) {
	fmt.Fprintln(w, ui.LabelValue("ID", t.ID))
	fmt.Fprintln(w, ui.LabelValue("Status", ui.StatusText(t.Completed)))
	if t.DueDate != "" {
		fmt.Fprintln(w, ui.LabelValue("Due", t.DueDate))
	}
	if t.Priority != engine.PriorityNone {
		fmt.Fprintln(w, ui.LabelValue("Priority", t.Priority))
	}
	if t.Notes != "" {
		fmt.Fprintln(w, ui.LabelValue("Notes", t.Notes))
	}
}

// shortID keeps generated ids readable; any unique prefix is accepted back.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func describeFilter(f engine.FilterSettings) string {
	parts := []string{}
	if f.Status != engine.StatusAll {
		parts = append(parts, "status="+string(f.Status))
	}
	if f.Priority != engine.PriorityFilterAll {
		parts = append(parts, "priority="+string(f.Priority))
	}
	if f.SortBy != engine.SortDefault || f.SortDirection != engine.SortAsc {
		parts = append(parts, fmt.Sprintf("sort=%s %s", f.SortBy, f.SortDirection))
	}
	if f.SearchTerm != "" {
		parts = append(parts, fmt.Sprintf("search=%q", f.SearchTerm))
	}
	return strings.Join(parts, ", ")
}
