package db

import (
	"database/sql"
	"fmt"

	"github.com/SIMPLYBOYS/tachi/pkg/logger"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// DBServiceImpl implements the DBService interface
type DBServiceImpl struct {
	db        *sql.DB
	usernames *UsernameGenerator
}

type DBOperations interface {
	Open(driverName, dataSourceName string) (*sql.DB, error)
	RunMigrations(db *sql.DB) error
}

// NewDBService opens the datastore at connStr and brings its schema up to date.
func NewDBService(ops DBOperations, connStr string) (DBService, error) {
	db, err := ops.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := ops.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Connected to datastore")
	return NewDBServiceFromDB(db), nil
}

// NewDBServiceFromDB wraps an already opened connection pool.
func NewDBServiceFromDB(db *sql.DB) *DBServiceImpl {
	return &DBServiceImpl{db: db, usernames: NewUsernameGenerator(nil)}
}

func (s *DBServiceImpl) Close() error {
	return s.db.Close()
}
