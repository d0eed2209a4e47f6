package main

import (
	"errors"
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"

	"github.com/go-petr/campus-wallet/migrations"
	"github.com/go-petr/campus-wallet/pkg/configpkg"
)

func migrateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply or roll back the postgres schema",
	}

	cmd.AddCommand(migrateDirectionCommand(a, "up", migrate.Up))
	cmd.AddCommand(migrateDirectionCommand(a, "down", migrate.Down))

	return cmd
}

func migrateDirectionCommand(a *app, use string, dir migrate.MigrationDirection) *cobra.Command {
	return &cobra.Command{
		Use: use,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.config.StoreDriver != configpkg.StorePostgres {
				return errors.New("migrations need STORE_DRIVER=postgres")
			}

			source := migrate.EmbedFileSystemMigrationSource{
				FileSystem: migrations.FS,
				Root:       ".",
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := migrate.Exec(db, "postgres", source, dir)
			if err != nil {
				a.logger.Error().Err(err).Str("direction", use).Msg("migration failed")
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migrations %s\n", n, use)

			return nil
		},
	}
}
