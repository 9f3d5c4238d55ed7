package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"seoboard/internal/ui"
)

const Version = "0.1.0"

type globalFlags struct {
	dbPath   string
	category string
	verbose  bool
}

var flags globalFlags

var rootCmd = &cobra.Command{
	Use:           "sb",
	Short:         "seoboard - local-first SEO project checklist",
	Long:          "seoboard tracks SEO project checklists by phase (project start, daily, weekly, monthly) from the terminal.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flags.dbPath, "db", "", "Database path (default ~/.seoboard.db)")
	rootCmd.PersistentFlags().StringVarP(&flags.category, "category", "c", "start", "Category (start|daily|weekly|monthly|completed)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(
		newAddCmd(),
		newSubCmd(),
		newDoCmd(),
		newExpandCmd(),
		newEditCmd(),
		newMoveCmd(),
		newListCmd(),
		newFilterCmd(),
		newTemplateCmd(),
		newProgressCmd(),
		newSuggestCmd(),
		newAnalyzeCmd(),
		newExportCmd(),
		newBoardCmd(),
		newResetCmd(),
		newConfigCmd(),
		newDBCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
