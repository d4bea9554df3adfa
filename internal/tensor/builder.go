package tensor

import (
	"context"
	"log/slog"

	"github.com/alitto/pond/v2"
	"github.com/tkoskela/occutensor/internal/errors"
	"github.com/tkoskela/occutensor/internal/logging"
	"github.com/tkoskela/occutensor/internal/timebin"
)

var logger *slog.Logger

func init() {
	logger = logging.ForService("tensor")
}

const defaultBuildWorkers = 8

// sliceKey identifies one (interval, visit) slice of the tensor.
type sliceKey struct {
	Interval int
	Visit    int
}

// Build constructs a dense detection tensor for one observation stream from
// its deduplicated binned record subset.
//
// Completion is inherent: the tensor is allocated over the full
// species×site×interval×visit domain with every cell zeroed, so species and
// sites with no records anywhere still hold explicit 0 cells. Records only
// flip cells to 1; a cell hit more than once stays 1.
//
// Records are partitioned by (interval, visit) slice and the slices are
// filled in parallel. Slices own disjoint cell regions of the shared backing
// array, so no locking is needed.
func Build(ctx context.Context, records []timebin.Record, axes *Axes, workers int) (*Dense, error) {
	if workers <= 0 {
		workers = defaultBuildWorkers
	}

	dense := NewDense(axes)

	slices := make(map[sliceKey][]timebin.Record)
	for i := range records {
		key := sliceKey{Interval: records[i].Interval, Visit: records[i].Visit}
		slices[key] = append(slices[key], records[i])
	}

	pool := pond.NewPool(workers)
	defer pool.StopAndWait()
	group := pool.NewGroupContext(ctx)

	for key, sliceRecords := range slices {
		group.SubmitErr(func() error {
			return fillSlice(dense, key, sliceRecords)
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("detection tensor built",
		"records", len(records),
		"slices", len(slices),
		"detections", dense.Sum(),
		"cells", axes.Cells())

	return dense, nil
}

// fillSlice marks every record of one (interval, visit) slice. A record
// referencing an index outside the master lists is a programming-contract
// violation and aborts the build.
func fillSlice(dense *Dense, key sliceKey, records []timebin.Record) error {
	axes := dense.Axes()

	k, ok := axes.IntervalIndex(key.Interval)
	if !ok {
		return indexMismatch("interval", records[0])
	}
	l, ok := axes.VisitIndex(key.Visit)
	if !ok {
		return indexMismatch("visit", records[0])
	}

	for idx := range records {
		rec := &records[idx]
		i, ok := axes.SpeciesIndex(rec.Species)
		if !ok {
			return indexMismatch("species", *rec)
		}
		j, ok := axes.SiteIndex(rec.SiteID)
		if !ok {
			return indexMismatch("site", *rec)
		}
		dense.Mark(i, j, k, l)
	}

	return nil
}

func indexMismatch(axis string, rec timebin.Record) error {
	return errors.Newf("record references %s not present in master %s list", axis, axis).
		Component("tensor").
		Category(errors.CategoryIndexMismatch).
		Priority(errors.PriorityCritical).
		CellContext(rec.Species, rec.SiteID, rec.Interval, rec.Visit).
		Build()
}
