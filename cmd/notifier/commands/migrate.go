package commands

import (
	"github.com/spf13/cobra"

	idb "reminder_notifier/internal/infra/database"
	"reminder_notifier/internal/infra/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := idb.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		logger.Log.Info("Database schema is up to date.")
		return nil
	},
}
