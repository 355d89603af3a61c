package cmd

import (
	"fmt"

	"stash-pricer/core/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateTables = []string{"items", "item_mods", "stash_items", "ingest_cursor", "builds"}

// migrateCmd creates or updates the schema and prints the resulting columns.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.migrate(); err != nil {
			return err
		}

		for _, table := range migrateTables {
			cols, err := database.GetTableColumns(a.db, table)
			if err != nil {
				return err
			}
			fmt.Printf("\n=== %s ===\n", table)
			for _, c := range cols {
				fmt.Printf("  %-14s %-24s null=%-3s key=%s\n", c.Field, c.Type, c.Null, c.Key)
			}
		}
		a.log.Info("Schema up to date", zap.Int("tables", len(migrateTables)))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
