package pipeline

import (
	"time"

	"github.com/tkoskela/occutensor/internal/observability"
	"github.com/tkoskela/occutensor/internal/observability/metrics"
	"github.com/tkoskela/occutensor/internal/split"
	"github.com/tkoskela/occutensor/internal/timebin"
)

// Report aggregates the non-fatal conditions of one run: counts of records
// dropped by reason, plus the species whose range inference degenerated.
// Fatal conditions abort the run and never appear here.
type Report struct {
	RunID     string        `yaml:"run_id"`
	StartedAt time.Time     `yaml:"started_at"`
	Duration  time.Duration `yaml:"duration"`

	Binning timebin.Report `yaml:"binning"`
	Split   split.Report   `yaml:"split"`

	OutOfRangeCitSci int `yaml:"out_of_range_citsci"` // crowd records at out-of-range sites
	OutOfRangeMuseum int `yaml:"out_of_range_museum"` // museum records at out-of-range sites

	DegenerateRanges []string `yaml:"degenerate_ranges"` // species with empty forced ranges
}

// publish pushes the run report into the pipeline metric collectors.
func (r *Report) publish(m *observability.Metrics, detCitSci, detMuseum, cells, nSpecies, nSites int) {
	if m == nil {
		return
	}
	pm := m.Pipeline
	pm.RecordsDropped(metrics.ReasonMissingSpecies, r.Binning.MissingSpecies)
	pm.RecordsDropped(metrics.ReasonOutsideWindow, r.Binning.OutsideWindow)
	pm.RecordsDropped(metrics.ReasonPartialInterval, r.Binning.PartialIntervalDropped)
	pm.RecordsDropped(metrics.ReasonBelowMinimum, r.Binning.BelowSpeciesMinimum)
	pm.RecordsDropped(metrics.ReasonNoEvent, r.Split.NonQualifyingEvent)
	pm.RecordsDropped(metrics.ReasonOutOfRange, r.OutOfRangeCitSci+r.OutOfRangeMuseum)
	pm.RecordsKept(StreamCitSci, r.Split.CitSciRecords-r.OutOfRangeCitSci)
	pm.RecordsKept(StreamMuseum, r.Split.MuseumRecords-r.OutOfRangeMuseum)
	pm.Detections(StreamCitSci, detCitSci)
	pm.Detections(StreamMuseum, detMuseum)
	pm.SetDimensions(nSpecies, nSites, cells)
	pm.SetDegenerateRanges(len(r.DegenerateRanges))
	pm.SetQualifyingEvents(r.Split.QualifyingEvents)
	pm.SetRunDuration(r.Duration.Seconds())
}
