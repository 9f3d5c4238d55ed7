package root

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"seoboard/internal/assist"
	"seoboard/internal/config"
	"seoboard/internal/engine"
	"seoboard/internal/storage"
	"seoboard/internal/ui"
)

type app struct {
	cfg    *config.Config
	log    *slog.Logger
	db     *sql.DB
	repo   *storage.BlobRepo
	svc    *engine.Service
	dbPath string
}

type openOpts struct {
	// quiet keeps stderr clean while a full-screen program owns the terminal.
	quiet bool
}

func openApp(ctx context.Context, cmd *cobra.Command, opts openOpts) (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := newLogger(cfg.Log, flags.verbose, opts.quiet, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}

	override := cfg.DB.Path
	if flags.dbPath != "" {
		override = flags.dbPath
	}
	path, err := storage.ResolveDBPath(override)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		closeLog()
		return nil, nil, err
	}

	repo := storage.NewBlobRepo(db)
	svc := engine.NewService(repo, engine.Options{
		Logger: logger,
		Locale: cfg.Sort.Locale,
	})
	svc.Load(ctx)
	if warn := svc.Warning(); warn != nil && !opts.quiet {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.Warn.Render(ui.IconWarn+" "+warn.Error()))
	}

	cleanup := func() {
		_ = db.Close()
		closeLog()
	}
	return &app{cfg: cfg, log: logger, db: db, repo: repo, svc: svc, dbPath: path}, cleanup, nil
}

func openService(ctx context.Context, cmd *cobra.Command) (*engine.Service, func(), error) {
	a, cleanup, err := openApp(ctx, cmd, openOpts{})
	if err != nil {
		return nil, nil, err
	}
	return a.svc, cleanup, nil
}

// assistant returns the configured Gemini client, or nil without an API key.
func (a *app) assistant() assist.Assistant {
	c := assist.NewClient(nil, assist.Config{
		APIKey:  a.cfg.AI.APIKey,
		Model:   a.cfg.AI.Model,
		BaseURL: a.cfg.AI.BaseURL,
	}, a.log)
	if !c.Enabled() {
		return nil
	}
	return c
}

// newLogger writes to the configured log file when set, otherwise to stderr.
// quiet discards stderr output; verbose forces debug level.
func newLogger(cfg config.LogConfig, verbose, quiet bool, stderr io.Writer) (*slog.Logger, func(), error) {
	level := parseLevel(cfg.Level)
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return slog.New(slog.NewTextHandler(f, opts)), func() { _ = f.Close() }, nil
	}
	if quiet {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	return slog.New(slog.NewTextHandler(stderr, opts)), func() {}, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func categoryFlag() (engine.Category, error) {
	return engine.ParseCategory(flags.category)
}

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Show the database location and stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx, cmd, openOpts{})
			if err != nil {
				return err
			}
			defer cleanup()

			entries, err := a.repo.Keys(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconBox, "Storage"))
			fmt.Fprintln(out, ui.LabelValue("Path", a.dbPath))
			if len(entries) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("Nothing stored yet."))
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "- %s %s\n", ui.Key.Render(e.Key),
					ui.Muted.Render(fmt.Sprintf("(%d bytes, updated %s)", e.Size, e.UpdatedAt.Local().Format("2006-01-02 15:04"))))
			}
			return nil
		},
	}
	return cmd
}
