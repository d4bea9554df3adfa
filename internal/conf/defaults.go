// defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// setDefaultConfig sets the default configuration values
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	// Main configuration
	viper.SetDefault("main.name", "occutensor")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "occutensor.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 1048576)

	// Study design
	viper.SetDefault("study.erastart", 1990)
	viper.SetDefault("study.eraend", 2019)
	viper.SetDefault("study.intervallength", 3)
	viper.SetDefault("study.minrecordsperspecies", 10)
	viper.SetDefault("study.mineventspecies", 3)
	viper.SetDefault("study.partialinterval", string(PartialRetain))

	// Range inference
	viper.SetDefault("range.minyear", 1950)
	viper.SetDefault("range.maxuncertainty", 10000.0)
	viper.SetDefault("range.workers", 8)

	// Inputs
	viper.SetDefault("input.sqlite.path", "occurrences.db")
	viper.SetDefault("input.sites.path", "sites.geojson")

	// Outputs
	viper.SetDefault("output.path", "bundle")
	viper.SetDefault("output.metrics.enabled", false)
	viper.SetDefault("output.metrics.path", "occutensor_metrics.prom")
}
