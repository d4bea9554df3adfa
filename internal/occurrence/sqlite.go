package occurrence

import (
	"fmt"

	"github.com/tkoskela/occutensor/internal/conf"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLiteStore implements the datastore interface for SQLite
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings

	closeLogger func() error
}

// Open sets up the SQLite database connection
func (store *SQLiteStore) Open() error {
	path := store.Settings.Input.SQLite.Path
	if path == "" {
		return fmt.Errorf("sqlite database path is not configured")
	}

	gormLogger, closeLogger := createGormLogger(store.Settings)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLogger})
	if err != nil {
		_ = closeLogger()
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store.DB = db
	store.closeLogger = closeLogger
	return performAutoMigration(db, store.Settings.Debug, "SQLite", path)
}

// Close closes the SQLite database connection and its log file
func (store *SQLiteStore) Close() error {
	if store.closeLogger != nil {
		_ = store.closeLogger()
		store.closeLogger = nil
	}
	if store.DB == nil {
		return nil
	}
	sqlDB, err := store.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
