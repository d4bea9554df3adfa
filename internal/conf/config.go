// config.go: settings struct for the occutensor pipeline and functions to load them.
package conf

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

// PartialIntervalPolicy selects what happens to years in a trailing partial
// interval when the study span is not an exact multiple of the interval length.
type PartialIntervalPolicy string

const (
	// PartialRetain bins trailing years with plain div/mod arithmetic.
	PartialRetain PartialIntervalPolicy = "retain"
	// PartialDrop rejects records falling into the trailing remainder years.
	PartialDrop PartialIntervalPolicy = "drop"
)

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled  bool   // true to enable this log
	Path     string // path to log file
	Rotation string // rotation type, "daily", "weekly" or "size"
	MaxSize  int64  // max size in bytes for size rotation
}

// Log rotation types
const (
	RotationDaily  = "daily"
	RotationWeekly = "weekly"
	RotationSize   = "size"
)

// MainSettings contains main program settings
type MainSettings struct {
	Name string    // name of this pipeline node, used in logs and manifests
	Log  LogConfig // main log configuration
}

// StudySettings defines the study design the binner operates on.
type StudySettings struct {
	EraStart              int                   // first year of the study window, inclusive
	EraEnd                int                   // last year of the study window, inclusive
	IntervalLength        int                   // years per interval, also the visit-count divisor
	MinRecordsPerSpecies  int                   // pooled record-count threshold for keeping a species
	MinEventSpecies       int                   // distinct-species threshold for a qualifying museum sampling event
	PartialInterval       PartialIntervalPolicy // trailing partial interval policy
}

// RangeExclusion is a per-species manual exclusion rule: points outside the
// bounding box are dropped before hull construction.
type RangeExclusion struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// RangeSettings controls the range inference engine.
type RangeSettings struct {
	MinYear        int                       // year floor for historical points
	MaxUncertainty float64                   // max coordinate uncertainty in meters, 0 disables the filter
	Exclusions     map[string]RangeExclusion // per-species manual exclusion boxes, keyed by species name
	Workers        int                       // worker pool size for per-species hull computation
}

// InputSettings points at the external data sources.
type InputSettings struct {
	SQLite struct {
		Path string // path to the occurrence record database
	}
	Sites struct {
		Path string // path to the site geometry GeoJSON file
	}
}

// OutputSettings controls where run artifacts are written.
type OutputSettings struct {
	Path    string // directory the tensor bundle is written to
	Metrics struct {
		Enabled bool   // true to write prometheus textfile metrics after a run
		Path    string // path of the metrics textfile
	}
}

// Settings contains all runtime settings for the pipeline.
type Settings struct {
	Debug bool // true to enable debug mode

	Main   MainSettings
	Study  StudySettings
	Range  RangeSettings
	Input  InputSettings
	Output OutputSettings
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a new
// Settings instance and stores it as the package singleton.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("occutensor")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/occutensor")
	viper.AddConfigPath("/etc/occutensor")

	// Set default values for each configuration parameter,
	// function defined in defaults.go
	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// No config file is fine, defaults plus flags apply
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// Setting returns the current settings instance, loading it if needed.
func Setting() *Settings {
	settingsMutex.RLock()
	if settingsInstance != nil {
		defer settingsMutex.RUnlock()
		return settingsInstance
	}
	settingsMutex.RUnlock()

	if _, err := Load(); err != nil {
		return nil
	}
	return settingsInstance
}

// GetSettings returns the current settings instance without loading.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// StudyYears returns the number of years in the study window, inclusive.
func (s *StudySettings) StudyYears() int {
	return s.EraEnd - s.EraStart + 1
}
