package root

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"seoboard/internal/ui"
)

func newTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"tpl"},
		Short:   "Save, apply and share project templates",
	}
	cmd.AddCommand(
		newTemplateListCmd(),
		newTemplateSaveCmd(),
		newTemplateApplyCmd(),
		newTemplateDeleteCmd(),
		newTemplateExportCmd(),
		newTemplateImportCmd(),
	)
	return cmd
}

func refArg(what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || strings.TrimSpace(strings.Join(args, " ")) == "" {
			return errors.New(what + " is required")
		}
		return nil
	}
}

func newTemplateListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconScroll, "Templates"))
			ts := svc.Templates()
			if len(ts) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No templates yet. Save one with `sb template save <name>`."))
				return nil
			}
			for _, t := range ts {
				fmt.Fprintf(out, "- %s %s %s\n", ui.Key.Render(t.Name),
					ui.Muted.Render(fmt.Sprintf("(%d tasks, created %s)", t.TaskCount(), t.CreatedAt.Local().Format("2006-01-02"))),
					ui.Muted.Render("["+shortID(t.ID)+"]"))
			}
			return nil
		},
	}
}

func newTemplateSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <name>",
		Short: "Save the current checklist structure as a template",
		Args:  refArg("name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := svc.SaveTemplate(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Saved template %s (%d tasks)\n", ui.IconScroll, ui.Good.Render(t.Name), t.TaskCount())
			return nil
		},
	}
}

func newTemplateApplyCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "apply <name|id>",
		Short: "Replace every category with a fresh copy of a template",
		Args:  refArg("template name or id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("applying a template replaces all current tasks; pass --yes to confirm")
			}
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := svc.ApplyTemplate(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Applied template %s\n", ui.IconRocket, ui.Good.Render(t.Name))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm replacing the current tasks")
	return cmd
}

func newTemplateDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name|id>",
		Short: "Delete a saved template",
		Args:  refArg("template name or id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := svc.DeleteTemplate(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted template %s\n", t.Name)
			return nil
		},
	}
}

func newTemplateExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <name|id>",
		Short: "Write a template as YAML",
		Args:  refArg("template name or id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			data, err := svc.ExportTemplate(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write template: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func newTemplateImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a template from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read template: %w", err)
			}
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := svc.ImportTemplate(ctx, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Imported template %s (%d tasks)\n", ui.IconScroll, ui.Good.Render(t.Name), t.TaskCount())
			return nil
		},
	}
}
