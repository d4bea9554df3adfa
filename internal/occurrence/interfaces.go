// interfaces.go: this code defines the interface for the occurrence datastore
package occurrence

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/tkoskela/occutensor/internal/conf"
	"github.com/tkoskela/occutensor/internal/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Interface abstracts the underlying database implementation and defines the
// operations the pipeline needs from the record store.
type Interface interface {
	Open() error
	Close() error
	Save(record *Record) error
	SaveHistoricalPoint(point *HistoricalPoint) error
	GetAllRecords() ([]Record, error)
	GetRecordsByProvenance(provenance Provenance) ([]Record, error)
	GetHistoricalPoints(minYear int) ([]HistoricalPoint, error)
	CountRecords() (int64, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new datastore instance based on the provided configuration.
func New(settings *conf.Settings) Interface {
	return &SQLiteStore{
		Settings: settings,
	}
}

// Save inserts a new occurrence record.
func (ds *DataStore) Save(record *Record) error {
	if ds.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	return ds.DB.Create(record).Error
}

// SaveHistoricalPoint inserts a new historical range point.
func (ds *DataStore) SaveHistoricalPoint(point *HistoricalPoint) error {
	if ds.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	return ds.DB.Create(point).Error
}

// GetAllRecords retrieves every occurrence record in stable ID order.
// Stable ordering keeps reruns deterministic.
func (ds *DataStore) GetAllRecords() ([]Record, error) {
	var records []Record
	err := ds.DB.Order("id ASC").Find(&records).Error
	return records, err
}

// GetRecordsByProvenance retrieves all records for one observation stream.
func (ds *DataStore) GetRecordsByProvenance(provenance Provenance) ([]Record, error) {
	var records []Record
	err := ds.DB.Where("provenance = ?", provenance).Order("id ASC").Find(&records).Error
	return records, err
}

// GetHistoricalPoints retrieves all historical points at or after minYear,
// in stable ID order.
func (ds *DataStore) GetHistoricalPoints(minYear int) ([]HistoricalPoint, error) {
	var points []HistoricalPoint
	err := ds.DB.Where("year >= ?", minYear).Order("id ASC").Find(&points).Error
	return points, err
}

// CountRecords returns the total number of occurrence records.
func (ds *DataStore) CountRecords() (int64, error) {
	var count int64
	err := ds.DB.Model(&Record{}).Count(&count).Error
	return count, err
}

// performAutoMigration creates or updates the schema for the record tables.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&Record{}, &HistoricalPoint{}); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if debug {
		log.Printf("%s database connection initialized: %s", dbType, connectionInfo)
	}

	return nil
}

// createGormLogger configures and returns a new GORM logger instance. When
// file logging is enabled the sink is a rotating log file; the returned close
// function releases it and is a no-op otherwise.
func createGormLogger(settings *conf.Settings) (logger.Interface, func() error) {
	logTarget := log.New(os.Stdout, "\r\n", log.LstdFlags)
	colorful := true
	closeFunc := func() error { return nil }

	if settings != nil && settings.Main.Log.Enabled {
		fileLogger, closer, err := logging.NewFileLogger(settings.Main.Log.Path, "database", slog.LevelWarn)
		if err != nil {
			slog.Warn("failed to open database log file, logging to stdout", "error", err)
		} else {
			logTarget = slog.NewLogLogger(fileLogger.Handler(), slog.LevelWarn)
			colorful = false
			closeFunc = closer
		}
	}

	return logger.New(
		logTarget,
		logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Warn,
			Colorful:      colorful,
		},
	), closeFunc
}
