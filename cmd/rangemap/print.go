package rangemap

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/tkoskela/occutensor/internal/conf"
	"github.com/tkoskela/occutensor/internal/occurrence"
	"github.com/tkoskela/occutensor/internal/rangemap"
	"github.com/tkoskela/occutensor/internal/sites"
)

// PrintCommand creates the print subcommand
func PrintCommand(settings *conf.Settings) *cobra.Command {
	printCmd := &cobra.Command{
		Use:   "print",
		Short: "Print inferred range vectors per species",
		RunE: func(cmd *cobra.Command, args []string) error {
			speciesFilter, _ := cmd.Flags().GetString("species")
			return runPrint(cmd, settings, speciesFilter)
		},
	}

	printCmd.Flags().String("species", "", "Only print the range of this species")
	printCmd.Flags().IntVar(&settings.Range.MinYear, "min-year", settings.Range.MinYear, "Year floor for historical points")
	printCmd.Flags().Float64Var(&settings.Range.MaxUncertainty, "max-uncertainty", settings.Range.MaxUncertainty, "Max coordinate uncertainty in meters, 0 disables")

	return printCmd
}

func runPrint(cmd *cobra.Command, settings *conf.Settings, speciesFilter string) error {
	store := occurrence.New(settings)
	if err := store.Open(); err != nil {
		return fmt.Errorf("failed to open occurrence store: %w", err)
	}
	defer store.Close()

	points, err := store.GetHistoricalPoints(settings.Range.MinYear)
	if err != nil {
		return fmt.Errorf("failed to load historical points: %w", err)
	}

	siteList, err := sites.LoadGeoJSON(settings.Input.Sites.Path)
	if err != nil {
		return err
	}

	speciesList := distinctSpecies(points)
	if speciesFilter != "" {
		speciesList = []string{speciesFilter}
	}

	engine := rangemap.NewEngine(rangemap.ConfigFromSettings(&settings.Range))
	ranges, err := engine.Compute(cmd.Context(), points, siteList, speciesList)
	if err != nil {
		return err
	}

	degenerate := make(map[string]struct{}, len(ranges.Degenerate))
	for _, s := range ranges.Degenerate {
		degenerate[s] = struct{}{}
	}

	fmt.Printf("%-40s %10s %10s\n", "Species", "In-range", "Sites")
	for _, species := range speciesList {
		vector, ok := ranges.Vector(species)
		if !ok {
			continue
		}
		inRange := 0
		for _, v := range vector {
			if v {
				inRange++
			}
		}
		marker := ""
		if _, deg := degenerate[species]; deg {
			marker = " (degenerate hull)"
		}
		fmt.Printf("%-40s %10d %10d%s\n", species, inRange, len(vector), marker)
	}

	return nil
}

func distinctSpecies(points []occurrence.HistoricalPoint) []string {
	set := make(map[string]struct{})
	for i := range points {
		if points[i].Species != "" {
			set[points[i].Species] = struct{}{}
		}
	}
	list := make([]string, 0, len(set))
	for s := range set {
		list = append(list, s)
	}
	sort.Strings(list)
	return list
}
