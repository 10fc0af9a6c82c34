package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"shopcatalog/internal/config"
	"shopcatalog/internal/database"
)

var (
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Store != config.StorePostgres {
				return fmt.Errorf("migrate needs the postgres store, got %q", cfg.Store)
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			return db.Close()
		},
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Populate an empty catalog with sample categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			b, err := openBackend(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, b.Close()) }()
			return database.Seed(cmd.Context(), b.categories, b.service)
		},
	}

	pathsCmd = &cobra.Command{
		Use:   "paths <category>",
		Short: "Print every root-to-category path",
		Long:  "Print every root-to-category path of a category, given by title or id.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			b, err := openBackend(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, b.Close()) }()

			c, err := b.resolve(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			n := 0
			for p, err := range b.service.Paths(ctx, c.ID) {
				if err != nil {
					return err
				}
				fmt.Fprintln(out, p.String())
				n++
			}
			fmt.Fprintf(out, "%d path(s)\n", n)
			return nil
		},
	}

	linkCmd = &cobra.Command{
		Use:   "link <child> <parent>",
		Short: "Add a parent to a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editEdge(cmd, args[0], args[1], true)
		},
	}

	unlinkCmd = &cobra.Command{
		Use:   "unlink <child> <parent>",
		Short: "Remove a parent from a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editEdge(cmd, args[0], args[1], false)
		},
	}
)

// editEdge adds or removes child -> parent. The change feed is enabled so
// running servers' consumers see shell edits too.
func editEdge(cmd *cobra.Command, childRef, parentRef string, add bool) (err error) {
	ctx := cmd.Context()
	b, err := openBackend(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, b.Close()) }()

	child, err := b.resolve(ctx, childRef)
	if err != nil {
		return err
	}
	parent, err := b.resolve(ctx, parentRef)
	if err != nil {
		return err
	}

	if add {
		err = b.service.AddParent(ctx, child.ID, parent.ID)
	} else {
		err = b.service.RemoveParent(ctx, child.ID, parent.ID)
	}
	if err != nil {
		return err
	}

	verb := "linked"
	if !add {
		verb = "unlinked"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %q -> %q\n", verb, child.Title, parent.Title)
	return nil
}
