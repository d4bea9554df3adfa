// Package pipeline orchestrates the record-to-tensor transformation: binning,
// stream splitting, range inference, tensor completion and mask derivation.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tkoskela/occutensor/internal/conf"
	"github.com/tkoskela/occutensor/internal/errors"
	"github.com/tkoskela/occutensor/internal/logging"
	"github.com/tkoskela/occutensor/internal/mask"
	"github.com/tkoskela/occutensor/internal/observability"
	"github.com/tkoskela/occutensor/internal/occurrence"
	"github.com/tkoskela/occutensor/internal/rangemap"
	"github.com/tkoskela/occutensor/internal/sites"
	"github.com/tkoskela/occutensor/internal/split"
	"github.com/tkoskela/occutensor/internal/tensor"
	"github.com/tkoskela/occutensor/internal/timebin"
)

// Stream names used in reports, metrics and the export manifest.
const (
	StreamCitSci = "citsci"
	StreamMuseum = "museum"
)

var logger *slog.Logger

func init() {
	logger = logging.ForService("pipeline")
}

// Inputs holds everything the core transformation needs in memory. Loading
// is done once up front, the transformation itself performs no I/O.
type Inputs struct {
	Records          []occurrence.Record
	HistoricalPoints []occurrence.HistoricalPoint
	Sites            []sites.Site
}

// LoadInputs reads all pipeline inputs from the configured sources.
func LoadInputs(settings *conf.Settings, store occurrence.Interface) (*Inputs, error) {
	records, err := store.GetAllRecords()
	if err != nil {
		return nil, errors.New(err).
			Component("pipeline").
			Category(errors.CategoryDatabase).
			Build()
	}

	points, err := store.GetHistoricalPoints(settings.Range.MinYear)
	if err != nil {
		return nil, errors.New(err).
			Component("pipeline").
			Category(errors.CategoryDatabase).
			Build()
	}

	siteList, err := sites.LoadGeoJSON(settings.Input.Sites.Path)
	if err != nil {
		return nil, err
	}

	return &Inputs{
		Records:          records,
		HistoricalPoints: points,
		Sites:            siteList,
	}, nil
}

// Bundle is the single consistent artifact set handed to the inference
// engine: both detection tensors, both masks, and the master index lists
// they were built against.
type Bundle struct {
	RunID string
	Axes  *tensor.Axes

	DetectionsCitSci *tensor.Dense
	DetectionsMuseum *tensor.Dense
	MaskCitSci       *tensor.Dense
	MaskMuseum       *tensor.Dense

	Ranges *rangemap.Map
	Report Report
}

// Run executes the full transformation. It is deterministic: identical
// inputs and settings reproduce identical tensors. On any fatal error no
// bundle is returned.
func Run(ctx context.Context, settings *conf.Settings, inputs *Inputs, m *observability.Metrics) (*Bundle, error) {
	started := time.Now()

	// Phase 1: binning with the pooled species filter.
	binned, err := timebin.Bin(timebin.DesignFromSettings(&settings.Study), inputs.Records)
	if err != nil {
		return nil, err
	}

	// Phase 2: split by provenance with the fixed species universe.
	streams := split.Split(binned.Records, settings.Study.MinEventSpecies)

	siteIDs := sites.IDs(inputs.Sites)
	if err := checkSiteMembership(streams, siteIDs); err != nil {
		return nil, err
	}

	// Range inference runs on the historical corpus, independent of the
	// study window's record set.
	engine := rangemap.NewEngine(rangemap.ConfigFromSettings(&settings.Range))
	ranges, err := engine.Compute(ctx, inputs.HistoricalPoints, inputs.Sites, binned.Species)
	if err != nil {
		return nil, err
	}

	// Detections cannot exist where the citsci mask marks sampling
	// impossible; records at out-of-range sites are dropped up front and
	// the dominance check below verifies the result.
	citsci, droppedCitSci := ranges.FilterRecords(streams.CitSci)
	museum, droppedMuseum := ranges.FilterRecords(streams.Museum)

	// Realized time axes are derived once from the final deduplicated
	// record set and shared by every tensor.
	intervals, visits := tensor.DeriveTimeAxes(citsci, museum)

	axes, err := tensor.NewAxes(binned.Species, siteIDs, intervals, visits)
	if err != nil {
		return nil, err
	}

	workers := settings.Range.Workers
	detCitSci, err := tensor.Build(ctx, citsci, axes, workers)
	if err != nil {
		return nil, err
	}
	detMuseum, err := tensor.Build(ctx, museum, axes, workers)
	if err != nil {
		return nil, err
	}

	maskCitSci, err := mask.BuildCitSci(axes, ranges)
	if err != nil {
		return nil, err
	}
	maskMuseum, err := mask.BuildMuseum(axes, ranges, streams)
	if err != nil {
		return nil, err
	}

	if err := mask.VerifyDominance(detCitSci, maskCitSci, StreamCitSci); err != nil {
		return nil, err
	}
	if err := mask.VerifyDominance(detMuseum, maskMuseum, StreamMuseum); err != nil {
		return nil, err
	}

	bundle := &Bundle{
		RunID:            uuid.New().String(),
		Axes:             axes,
		DetectionsCitSci: detCitSci,
		DetectionsMuseum: detMuseum,
		MaskCitSci:       maskCitSci,
		MaskMuseum:       maskMuseum,
		Ranges:           ranges,
		Report: Report{
			StartedAt:        started,
			Duration:         time.Since(started),
			Binning:          binned.Report,
			Split:            streams.Report,
			OutOfRangeCitSci: droppedCitSci,
			OutOfRangeMuseum: droppedMuseum,
			DegenerateRanges: ranges.Degenerate,
		},
	}
	bundle.Report.RunID = bundle.RunID

	nSpecies, nSites, nIntervals, nVisits := axes.Dims()
	bundle.Report.publish(m, detCitSci.Sum(), detMuseum.Sum(), axes.Cells(), nSpecies, nSites)

	logger.Info("pipeline run complete",
		"run_id", bundle.RunID,
		"species", nSpecies,
		"sites", nSites,
		"intervals", nIntervals,
		"visits", nVisits,
		"detections_citsci", detCitSci.Sum(),
		"detections_museum", detMuseum.Sum(),
		"duration", bundle.Report.Duration)

	return bundle, nil
}

// checkSiteMembership verifies that every record references a site on the
// master site list. A miss is a programming-contract violation with the
// spatial site provider, not a recoverable data condition.
func checkSiteMembership(streams *split.Streams, siteIDs []int) error {
	known := make(map[int]struct{}, len(siteIDs))
	for _, id := range siteIDs {
		known[id] = struct{}{}
	}

	for _, subset := range [][]timebin.Record{streams.CitSci, streams.Museum} {
		for i := range subset {
			if _, ok := known[subset[i].SiteID]; !ok {
				return errors.Newf("record references site %d not present in master site list", subset[i].SiteID).
					Component("pipeline").
					Category(errors.CategoryIndexMismatch).
					Priority(errors.PriorityCritical).
					CellContext(subset[i].Species, subset[i].SiteID, subset[i].Interval, subset[i].Visit).
					Build()
			}
		}
	}
	return nil
}
