package root

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"seoboard/internal/engine"
	"seoboard/internal/ui"
)

func newProgressCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show completion per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			snap := svc.Progress()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}
			printProgress(cmd.OutOrStdout(), snap)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot as JSON")
	return cmd
}

func printProgress(w io.Writer, snap engine.ProgressSnapshot) {
	fmt.Fprintln(w, ui.Heading(ui.IconChart, "Progress"))
	fmt.Fprintf(w, "%s %s %3d%% %s\n", padLabel("Overall"), ui.ProgressBar(snap.Overall.Percentage, 24),
		snap.Overall.Percentage, ui.Muted.Render(fmt.Sprintf("(%d/%d)", snap.Overall.Completed, snap.Overall.Total)))
	fmt.Fprintln(w, "")
	for _, c := range snap.Categories {
		fmt.Fprintf(w, "%s %s %3d%% %s\n", padLabel(c.Label), ui.ProgressBar(c.Percentage, 24),
			c.Percentage, ui.Muted.Render(fmt.Sprintf("(%d/%d)", c.Completed, c.Total)))
		for _, s := range c.IncompleteSamples {
			fmt.Fprintf(w, "    %s %s\n", ui.IconOpen, ui.Muted.Render(s))
		}
	}
}

func padLabel(s string) string {
	return fmt.Sprintf("%-14s", s)
}
