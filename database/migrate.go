package database

import (
	"database/sql"
	"embed"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the requests table up to date.
func Migrate(db *sql.DB, logger logrus.FieldLogger) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(logger)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "cannot set goose dialect")
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return errors.Wrap(err, "cannot apply migrations")
	}

	return nil
}
