// Package tensor builds the dense detection tensors the inference engine
// consumes. Axis order is fixed by the master index lists and shared by
// every tensor of a run.
package tensor

import (
	"sort"

	"github.com/tkoskela/occutensor/internal/errors"
	"github.com/tkoskela/occutensor/internal/timebin"
)

// Axes holds the four master index lists and their reverse lookups. All
// tensors of a run are built against a single Axes instance so their axis
// orderings can never diverge.
type Axes struct {
	Species   []string
	Sites     []int
	Intervals []int
	Visits    []int

	speciesIdx  map[string]int
	siteIdx     map[int]int
	intervalIdx map[int]int
	visitIdx    map[int]int
}

// NewAxes builds an Axes from the master index lists. List order is taken as
// given and never re-sorted; duplicate entries are a contract violation.
func NewAxes(species []string, siteIDs, intervals, visits []int) (*Axes, error) {
	axes := &Axes{
		Species:   species,
		Sites:     siteIDs,
		Intervals: intervals,
		Visits:    visits,

		speciesIdx:  make(map[string]int, len(species)),
		siteIdx:     make(map[int]int, len(siteIDs)),
		intervalIdx: make(map[int]int, len(intervals)),
		visitIdx:    make(map[int]int, len(visits)),
	}

	for i, s := range species {
		if _, dup := axes.speciesIdx[s]; dup {
			return nil, duplicateAxisEntry("species", s)
		}
		axes.speciesIdx[s] = i
	}
	for i, id := range siteIDs {
		if _, dup := axes.siteIdx[id]; dup {
			return nil, duplicateAxisEntry("site", id)
		}
		axes.siteIdx[id] = i
	}
	for i, k := range intervals {
		if _, dup := axes.intervalIdx[k]; dup {
			return nil, duplicateAxisEntry("interval", k)
		}
		axes.intervalIdx[k] = i
	}
	for i, l := range visits {
		if _, dup := axes.visitIdx[l]; dup {
			return nil, duplicateAxisEntry("visit", l)
		}
		axes.visitIdx[l] = i
	}

	return axes, nil
}

func duplicateAxisEntry(axis string, value any) error {
	return errors.Newf("duplicate %s axis entry %v", axis, value).
		Component("tensor").
		Category(errors.CategoryIndexMismatch).
		Build()
}

// Dims returns the four axis lengths.
func (a *Axes) Dims() (nSpecies, nSites, nIntervals, nVisits int) {
	return len(a.Species), len(a.Sites), len(a.Intervals), len(a.Visits)
}

// Cells returns the total number of tensor cells the axes span.
func (a *Axes) Cells() int {
	return len(a.Species) * len(a.Sites) * len(a.Intervals) * len(a.Visits)
}

// SpeciesIndex returns the axis position of a species name.
func (a *Axes) SpeciesIndex(species string) (int, bool) {
	i, ok := a.speciesIdx[species]
	return i, ok
}

// SiteIndex returns the axis position of a site identifier.
func (a *Axes) SiteIndex(siteID int) (int, bool) {
	i, ok := a.siteIdx[siteID]
	return i, ok
}

// IntervalIndex returns the axis position of an interval value.
func (a *Axes) IntervalIndex(interval int) (int, bool) {
	i, ok := a.intervalIdx[interval]
	return i, ok
}

// VisitIndex returns the axis position of a visit value.
func (a *Axes) VisitIndex(visit int) (int, bool) {
	i, ok := a.visitIdx[visit]
	return i, ok
}

// DeriveTimeAxes computes the realized interval and visit lists from the
// final deduplicated record subsets, as the sorted set of values actually
// present. The realized lists are derived quantities and may be shorter than
// the study design would suggest; they are computed once here and shared by
// every tensor of the run.
func DeriveTimeAxes(subsets ...[]timebin.Record) (intervals, visits []int) {
	intervalSet := make(map[int]struct{})
	visitSet := make(map[int]struct{})
	for _, subset := range subsets {
		for i := range subset {
			intervalSet[subset[i].Interval] = struct{}{}
			visitSet[subset[i].Visit] = struct{}{}
		}
	}

	intervals = make([]int, 0, len(intervalSet))
	for k := range intervalSet {
		intervals = append(intervals, k)
	}
	sort.Ints(intervals)

	visits = make([]int, 0, len(visitSet))
	for l := range visitSet {
		visits = append(visits, l)
	}
	sort.Ints(visits)

	return intervals, visits
}
