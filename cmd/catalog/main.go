// Package main is the entry point for the catalog service. The catalog
// command serves the HTTP API and offers maintenance subcommands for
// migrations, seeding and hierarchy edits from the shell.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"shopcatalog/internal/config"
)

var (
	cfg       *config.Config
	storeFlag string

	rootCmd = &cobra.Command{
		Use:   "catalog",
		Short: "Product category hierarchy service",
		Long: `catalog manages a product category hierarchy in which a category may
have several parents. It serves a JSON API and keeps the graph acyclic.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return err
			}
			if storeFlag != "" {
				if err := cfg.SetStore(storeFlag); err != nil {
					return err
				}
			}
			setupLogger(cfg)
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "",
		"store backend: postgres or memory (overrides CATALOG_STORE)")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, pathsCmd, linkCmd, unlinkCmd)
}

// setupLogger installs the default structured logger: text in development,
// JSON otherwise.
func setupLogger(cfg *config.Config) {
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
