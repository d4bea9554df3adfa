// Package build implements the subcommand that runs the full pipeline and
// exports the tensor bundle.
package build

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tkoskela/occutensor/internal/conf"
	"github.com/tkoskela/occutensor/internal/export"
	"github.com/tkoskela/occutensor/internal/observability"
	"github.com/tkoskela/occutensor/internal/occurrence"
	"github.com/tkoskela/occutensor/internal/pipeline"
)

// Command creates the build command
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build detection and mask tensors from occurrence records",
		Long: `Build loads occurrence records and site geometries, runs the full
record-to-tensor pipeline and writes the bundle for the inference engine.
A fatal error aborts the run with no tensors produced.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, settings)
		},
	}

	cmd.Flags().StringVarP(&settings.Output.Path, "output", "o", settings.Output.Path, "Directory to write the tensor bundle to")
	cmd.Flags().BoolVar(&settings.Output.Metrics.Enabled, "metrics", settings.Output.Metrics.Enabled, "Write prometheus textfile metrics after the run")

	return cmd
}

func runBuild(cmd *cobra.Command, settings *conf.Settings) error {
	store := occurrence.New(settings)
	if err := store.Open(); err != nil {
		return fmt.Errorf("failed to open occurrence store: %w", err)
	}
	defer store.Close()

	inputs, err := pipeline.LoadInputs(settings, store)
	if err != nil {
		return err
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return err
	}

	bundle, err := pipeline.Run(cmd.Context(), settings, inputs, metrics)
	if err != nil {
		return err
	}

	if err := export.WriteBundle(bundle, settings.Output.Path); err != nil {
		return err
	}

	if settings.Output.Metrics.Enabled {
		if err := metrics.WriteTextfile(settings.Output.Metrics.Path); err != nil {
			return err
		}
	}

	fmt.Printf("Bundle %s written to %s\n", bundle.RunID, settings.Output.Path)
	return nil
}
