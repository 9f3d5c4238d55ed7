package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"seoboard/internal/assist"
	"seoboard/internal/engine"
	"seoboard/internal/ui"
)

func newSuggestCmd() *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Ask the assistant for task ideas for a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := categoryFlag()
			if err != nil {
				return err
			}
			if c.IsReporting() {
				return fmt.Errorf("suggestions are not available for %s", c.Label())
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, cleanup, err := openApp(ctx, cmd, openOpts{})
			if err != nil {
				return err
			}
			defer cleanup()

			assistant := a.assistant()
			if assistant == nil {
				return assist.ErrNotConfigured
			}

			d := assist.NewDispatcher()
			ticket, err := d.Begin(assist.KindSuggest, c)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), ui.Muted.Render(ui.IconSparkle+" Asking for "+c.Label()+" suggestions…"))
			res := <-assist.Run(ctx, func(ctx context.Context) assist.Result {
				return assist.Suggest(ctx, assistant, ticket, c.Label())
			})
			switch d.Resolve(res, func(cat engine.Category) bool { return cat.IsValid() && !cat.IsReporting() }) {
			case assist.OutcomeError:
				return res.Err
			case assist.OutcomeDiscarded:
				return fmt.Errorf("suggestions for %s were discarded", c.Label())
			}

			out := cmd.OutOrStdout()
			if !apply {
				fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Suggestions for "+c.Label()))
				for _, s := range res.Suggestions {
					fmt.Fprintf(out, "- %s\n", s)
				}
				fmt.Fprintln(out, ui.Muted.Render("Re-run with --apply to add them."))
				return nil
			}

			added, skipped, err := a.svc.ApplySuggestions(ctx, c, res.Suggestions)
			if err != nil {
				return err
			}
			for _, t := range added {
				fmt.Fprintf(out, "%s %s %s\n", ui.IconPlus, t.Text, ui.Muted.Render("["+shortID(t.ID)+"]"))
			}
			for _, s := range skipped {
				fmt.Fprintf(out, "%s %s %s\n", ui.IconWarn, s, ui.Muted.Render("(already exists)"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Add the suggestions as tasks")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Ask the assistant to analyze overall progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, cleanup, err := openApp(ctx, cmd, openOpts{})
			if err != nil {
				return err
			}
			defer cleanup()

			assistant := a.assistant()
			if assistant == nil {
				return assist.ErrNotConfigured
			}

			snap := a.svc.Progress()
			fmt.Fprintln(cmd.ErrOrStderr(), ui.Muted.Render(ui.IconChart+" Analyzing progress…"))
			text, err := assistant.AnalyzeProgress(ctx, snap)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printProgress(out, snap)
			fmt.Fprintln(out, "")
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Analysis"))
			fmt.Fprintln(out, text)
			return nil
		},
	}
	return cmd
}
