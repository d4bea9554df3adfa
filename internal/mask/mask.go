// Package mask derives the sampling-possible tensors that tell the
// inference engine which non-detections are informative.
package mask

import (
	"github.com/tkoskela/occutensor/internal/errors"
	"github.com/tkoskela/occutensor/internal/rangemap"
	"github.com/tkoskela/occutensor/internal/split"
	"github.com/tkoskela/occutensor/internal/tensor"
)

// BuildCitSci constructs the citizen-science mask. Crowd effort is treated
// as a standing process: sampling is possible at every in-range site at
// every interval and visit, so the in-range vector broadcasts across the
// whole time grid.
func BuildCitSci(axes *tensor.Axes, ranges *rangemap.Map) (*tensor.Dense, error) {
	mask := tensor.NewDense(axes)
	_, _, nIntervals, nVisits := axes.Dims()

	for i, species := range axes.Species {
		if _, ok := ranges.Vector(species); !ok {
			return nil, missingRange(species)
		}
		for j, siteID := range axes.Sites {
			if !ranges.InRange(species, siteID) {
				continue
			}
			for k := 0; k < nIntervals; k++ {
				for l := 0; l < nVisits; l++ {
					mask.Mark(i, j, k, l)
				}
			}
		}
	}

	return mask, nil
}

// BuildMuseum constructs the museum mask. A museum absence is informative
// only where the species is in range AND a qualifying community-sampling
// event is independently known to have happened at that (site, interval,
// visit); everywhere else the cell is missing data.
func BuildMuseum(axes *tensor.Axes, ranges *rangemap.Map, streams *split.Streams) (*tensor.Dense, error) {
	mask := tensor.NewDense(axes)

	for event := range streams.Events {
		j, ok := axes.SiteIndex(event.SiteID)
		if !ok {
			// Sites are fixed upstream, an unknown site is a contract breach.
			return nil, errors.Newf("sampling event references site %d not present in master site list", event.SiteID).
				Component("mask").
				Category(errors.CategoryIndexMismatch).
				Build()
		}
		k, ok := axes.IntervalIndex(event.Interval)
		if !ok {
			// The realized interval axis is derived from surviving records;
			// an event whose records were all filtered away masks nothing.
			continue
		}
		l, ok := axes.VisitIndex(event.Visit)
		if !ok {
			continue
		}

		for i, species := range axes.Species {
			if ranges.InRange(species, event.SiteID) {
				mask.Mark(i, j, k, l)
			}
		}
	}

	// Every species must have a computed range vector even if no event
	// touched it, the contract is checked once here.
	for _, species := range axes.Species {
		if _, ok := ranges.Vector(species); !ok {
			return nil, missingRange(species)
		}
	}

	return mask, nil
}

// VerifyDominance checks the elementwise V <= M post-condition for one
// stream. A violation means a detection sits where sampling is marked
// impossible, which indicates an unsound binning or masking step, so the
// run must abort before tensors reach the inference engine.
func VerifyDominance(detections, mask *tensor.Dense, stream string) error {
	axes := detections.Axes()
	nSpecies, nSites, nIntervals, nVisits := axes.Dims()

	for i := 0; i < nSpecies; i++ {
		for j := 0; j < nSites; j++ {
			for k := 0; k < nIntervals; k++ {
				for l := 0; l < nVisits; l++ {
					if detections.At(i, j, k, l) > mask.At(i, j, k, l) {
						return errors.Newf("detection without possible sampling in %s stream", stream).
							Component("mask").
							Category(errors.CategoryMaskInvariant).
							Priority(errors.PriorityCritical).
							CellContext(axes.Species[i], axes.Sites[j], axes.Intervals[k], axes.Visits[l]).
							Build()
					}
				}
			}
		}
	}
	return nil
}

func missingRange(species string) error {
	return errors.Newf("no range vector computed for species %q", species).
		Component("mask").
		Category(errors.CategoryIndexMismatch).
		Build()
}
