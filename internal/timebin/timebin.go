// Package timebin assigns occurrence records to the study's interval/visit
// grid and applies the pooled per-species minimum-record filter.
package timebin

import (
	"log/slog"
	"sort"

	"github.com/tkoskela/occutensor/internal/conf"
	"github.com/tkoskela/occutensor/internal/errors"
	"github.com/tkoskela/occutensor/internal/logging"
	"github.com/tkoskela/occutensor/internal/occurrence"
)

var logger *slog.Logger

func init() {
	logger = logging.ForService("timebin")
}

// Design is the fixed study design one binning run operates on.
type Design struct {
	EraStart             int
	EraEnd               int
	IntervalLength       int // years per interval, also the visit-count divisor
	MinRecordsPerSpecies int
	PartialInterval      conf.PartialIntervalPolicy
}

// DesignFromSettings extracts the binner's design from loaded settings.
func DesignFromSettings(study *conf.StudySettings) Design {
	return Design{
		EraStart:             study.EraStart,
		EraEnd:               study.EraEnd,
		IntervalLength:       study.IntervalLength,
		MinRecordsPerSpecies: study.MinRecordsPerSpecies,
		PartialInterval:      study.PartialInterval,
	}
}

// StudyYears returns the number of years in the study window, inclusive.
func (d *Design) StudyYears() int {
	return d.EraEnd - d.EraStart + 1
}

// Validate enforces the binner's configuration contract.
func (d *Design) Validate() error {
	if d.StudyYears() <= 0 {
		return errors.Newf("study window length must be positive, era %d-%d", d.EraStart, d.EraEnd).
			Component("timebin").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if d.IntervalLength <= 0 {
		return errors.Newf("interval length must be positive, got %d", d.IntervalLength).
			Component("timebin").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

// Record is an occurrence record placed on the interval/visit grid.
type Record struct {
	Species        string
	SiteID         int
	Year           int
	YearOffset     int // year - era start
	Interval       int // year offset div interval length
	Visit          int // year offset mod interval length
	Provenance     occurrence.Provenance
	CollectorGroup string
}

// CellKey identifies one (species, site, interval, visit) tensor cell.
type CellKey struct {
	Species  string
	SiteID   int
	Interval int
	Visit    int
}

// Cell returns the tensor cell this record falls into.
func (r *Record) Cell() CellKey {
	return CellKey{Species: r.Species, SiteID: r.SiteID, Interval: r.Interval, Visit: r.Visit}
}

// Report aggregates per-run counts of records dropped during binning.
// Dropping is recovered locally, only the counts are surfaced.
type Report struct {
	TotalInput             int
	MissingSpecies         int // empty species label
	OutsideWindow          int // year before era start or after era end
	PartialIntervalDropped int // trailing partial-interval years under the drop policy
	BelowSpeciesMinimum    int // records of species failing the pooled minimum
	Kept                   int
}

// Result is the binner output: the binned, species-filtered record set
// (cell duplicates retained for downstream grain-sensitive filters) and the
// derived master species list.
type Result struct {
	Records []Record
	Species []string // alphabetized, unique
	Report  Report
}

// Bin places records on the interval/visit grid and applies the study-window
// and species-minimum filters.
//
// The species filter is two-phase: the surviving species set is computed once
// from the pooled, cell-deduplicated record set across both observation
// streams, then applied to the full record set before any stream split. This
// keeps the same species universe underneath both detection tensors.
func Bin(design Design, records []occurrence.Record) (*Result, error) {
	if err := design.Validate(); err != nil {
		return nil, err
	}

	span := design.StudyYears()
	remainder := span % design.IntervalLength
	// First year offset of the trailing partial interval, if any.
	partialStart := span - remainder

	report := Report{TotalInput: len(records)}
	binned := make([]Record, 0, len(records))

	for i := range records {
		rec := &records[i]
		if rec.Species == "" {
			report.MissingSpecies++
			continue
		}
		yearOffset := rec.Year - design.EraStart
		if yearOffset < 0 || yearOffset >= span {
			report.OutsideWindow++
			continue
		}
		if design.PartialInterval == conf.PartialDrop && remainder > 0 && yearOffset >= partialStart {
			report.PartialIntervalDropped++
			continue
		}
		binned = append(binned, Record{
			Species:        rec.Species,
			SiteID:         rec.SiteID,
			Year:           rec.Year,
			YearOffset:     yearOffset,
			Interval:       yearOffset / design.IntervalLength,
			Visit:          yearOffset % design.IntervalLength,
			Provenance:     rec.Provenance,
			CollectorGroup: rec.CollectorGroup,
		})
	}

	// Phase 1: species counts on the pooled deduplicated set. Dedup here is
	// per stream at cell grain so a crowd and a museum record at the same
	// cell each count once.
	counts := make(map[string]int)
	seen := make(map[streamCellKey]struct{}, len(binned))
	for i := range binned {
		key := streamCellKey{cell: binned[i].Cell(), provenance: binned[i].Provenance}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		counts[binned[i].Species]++
	}

	surviving := make(map[string]struct{}, len(counts))
	for species, n := range counts {
		if n >= design.MinRecordsPerSpecies {
			surviving[species] = struct{}{}
		}
	}

	// Phase 2: apply the fixed species set to the full binned set.
	kept := binned[:0]
	for i := range binned {
		if _, ok := surviving[binned[i].Species]; !ok {
			report.BelowSpeciesMinimum++
			continue
		}
		kept = append(kept, binned[i])
	}
	report.Kept = len(kept)

	species := make([]string, 0, len(surviving))
	for s := range surviving {
		species = append(species, s)
	}
	sort.Strings(species)

	if report.MissingSpecies > 0 {
		logger.Warn("records with missing species identification excluded",
			"count", report.MissingSpecies)
	}

	return &Result{
		Records: kept,
		Species: species,
		Report:  report,
	}, nil
}

// DedupCells collapses records sharing a tensor cell down to a single record.
// The first record encountered wins; only presence matters downstream.
func DedupCells(records []Record) []Record {
	seen := make(map[CellKey]struct{}, len(records))
	deduped := make([]Record, 0, len(records))
	for i := range records {
		key := records[i].Cell()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, records[i])
	}
	return deduped
}

type streamCellKey struct {
	cell       CellKey
	provenance occurrence.Provenance
}
