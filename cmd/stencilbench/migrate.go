package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/banshee-data/stencilbench/internal/resultsdb"
)

func newMigrateCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the results database schema",
	}

	withDB := func(run func(cmd *cobra.Command, db *resultsdb.DB, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			path := g.database()
			if path == "" {
				return fmt.Errorf("no results database configured; pass --db or set database in the config file")
			}
			db, err := resultsdb.OpenWithoutMigrations(path)
			if err != nil {
				return err
			}
			defer db.Close()
			return run(cmd, db, args)
		}
	}

	status := func(cmd *cobra.Command, db *resultsdb.DB, _ []string) error {
		v, dirty, err := db.MigrateVersion()
		if err != nil {
			return err
		}
		state := "clean"
		if dirty {
			state = "dirty"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", v, state)
		return nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withDB(func(cmd *cobra.Command, db *resultsdb.DB, args []string) error {
				if err := db.MigrateUp(); err != nil {
					return err
				}
				return status(cmd, db, args)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: withDB(func(cmd *cobra.Command, db *resultsdb.DB, args []string) error {
				if err := db.MigrateDown(); err != nil {
					return err
				}
				return status(cmd, db, args)
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE:  withDB(status),
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the schema version without running migrations (clears the dirty flag)",
			Args:  cobra.ExactArgs(1),
			RunE: withDB(func(cmd *cobra.Command, db *resultsdb.DB, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				if err := db.MigrateForce(v); err != nil {
					return err
				}
				return status(cmd, db, args)
			}),
		},
	)
	return cmd
}
