package db

import (
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/SIMPLYBOYS/tachi/internal/errors"
	"github.com/SIMPLYBOYS/tachi/pkg/logger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// PostgresOperations opens real connections and applies the file migrations
// found under MigrationsPath, a plain directory path.
type PostgresOperations struct {
	MigrationsPath string
}

// SourceURL is the golang-migrate source for MigrationsPath.
func (o PostgresOperations) SourceURL() string {
	if strings.HasPrefix(o.MigrationsPath, "file://") {
		return o.MigrationsPath
	}
	return "file://" + o.MigrationsPath
}

func (o PostgresOperations) Open(driverName, dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, &errors.DatabaseError{Operation: "open connection", Err: err}
	}
	return db, nil
}

// RunMigrations runs the database migrations
func (o PostgresOperations) RunMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return &errors.DatabaseError{Operation: "could not create the postgres driver", Err: err}
	}

	m, err := migrate.NewWithDatabaseInstance(o.SourceURL(), "postgres", driver)
	if err != nil {
		return &errors.DatabaseError{Operation: "could not create migrate instance", Err: err}
	}

	err = m.Up()
	if err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		return &errors.DatabaseError{Operation: "an error occurred while syncing the database", Err: err}
	}

	logger.Info("Database migrations completed successfully")
	return nil
}
