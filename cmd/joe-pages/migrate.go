package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joestump/joe-pages/internal/config"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the session table for a database session store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Session.Store == "memory" {
				fmt.Fprintln(cmd.OutOrStdout(), "session store is memory; nothing to migrate")
				return nil
			}

			database, err := openSessionDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			fmt.Fprintln(cmd.OutOrStdout(), "migrations complete")
			return nil
		},
	}
}
