package cmd

import (
	"fmt"

	"tlf-sync/core/database"
	"tlf-sync/feature/tlf/store"

	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the ledger tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := loadBase()
		if err != nil {
			return err
		}
		defer logg.Sync()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("database connection required: %w", err)
		}
		if err := store.Migrate(db); err != nil {
			return err
		}
		logg.Info("Ledger tables migrated")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
