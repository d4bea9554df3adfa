package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tkoskela/occutensor/cmd/build"
	"github.com/tkoskela/occutensor/cmd/rangemap"
	"github.com/tkoskela/occutensor/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "occutensor",
		Short: "Occupancy detection-tensor pipeline CLI",
		Long: `occutensor converts irregular biological occurrence records into the
dense detection and sampling-possible tensors consumed by a hierarchical
occupancy model.`,
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, settings)

	subcommands := []*cobra.Command{
		build.Command(settings),
		rangemap.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Input.SQLite.Path, "records", viper.GetString("input.sqlite.path"), "Path to the occurrence record SQLite database")
	rootCmd.PersistentFlags().StringVar(&settings.Input.Sites.Path, "sites", viper.GetString("input.sites.path"), "Path to the site geometry GeoJSON file")
	rootCmd.PersistentFlags().IntVar(&settings.Study.EraStart, "era-start", viper.GetInt("study.erastart"), "First year of the study window, inclusive")
	rootCmd.PersistentFlags().IntVar(&settings.Study.EraEnd, "era-end", viper.GetInt("study.eraend"), "Last year of the study window, inclusive")
	rootCmd.PersistentFlags().IntVar(&settings.Study.IntervalLength, "interval-length", viper.GetInt("study.intervallength"), "Years per interval, also the visit-count divisor")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
