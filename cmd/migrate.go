package cmd

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"repairbot/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE:  runMigrateUp,
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	conf, logger, closeLog, err := setup()
	if err != nil {
		return err
	}
	defer closeLog()

	db, err := sqlx.Connect("postgres", conf.DB.ConnectionString())
	if err != nil {
		return errors.Wrap(err, "cannot connect to database")
	}
	defer db.Close()

	if err := database.Migrate(db.DB, logger); err != nil {
		return err
	}

	logger.Info("migrate up: ok")
	return nil
}
