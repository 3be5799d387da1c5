package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/terra-clan/hero-quest/internal/config"
	"github.com/terra-clan/hero-quest/internal/content"
	"github.com/terra-clan/hero-quest/internal/storage"
)

func main() {
	root := &cobra.Command{
		Use:           "heroquest",
		Short:         "Gamified self-help hero quest server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newContentCmd())

	if err := root.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// setupLogging installs the default slog logger described by cfg
func setupLogging(cfg config.LogConfig) error {
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// loadContent loads embedded tables and applies overrides from dir
func loadContent(dir string) (*content.Catalog, error) {
	loader := content.NewLoader()
	if err := loader.LoadDefaults(); err != nil {
		return nil, err
	}
	if dir != "" {
		if err := loader.LoadFromDir(dir); err != nil {
			return nil, fmt.Errorf("failed to load content from %s: %w", dir, err)
		}
	}
	return loader.Catalog(), nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply PostgreSQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := setupLogging(cfg.Log); err != nil {
				return err
			}

			applied, err := storage.MigrateFromDSN(cmd.Context(), cfg.Database.DSN, cfg.Database.MigrationsDir)
			if err != nil {
				return err
			}
			slog.Info("migrations complete", "applied", applied)
			return nil
		},
	}
}

func newContentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Inspect content tables",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check [dir]",
		Short: "Validate content tables, optionally overridden from dir",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			catalog, err := loadContent(dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			issues := content.Check(catalog)
			for _, issue := range issues {
				fmt.Fprintln(out, issue.String())
			}
			fmt.Fprintf(out, "%d archetypes, %d questions, %d missions, %d badges, %d story nodes\n",
				len(catalog.Archetypes()), len(catalog.Questions()), len(catalog.Missions()),
				len(catalog.Badges()), len(catalog.Nodes()))
			return issues.Err()
		},
	})
	return cmd
}
