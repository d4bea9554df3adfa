// Package split partitions binned records into the citizen-science and
// museum observation streams and detects qualifying community-sampling
// events.
package split

import (
	"log/slog"

	"github.com/tkoskela/occutensor/internal/logging"
	"github.com/tkoskela/occutensor/internal/occurrence"
	"github.com/tkoskela/occutensor/internal/timebin"
)

var logger *slog.Logger

func init() {
	logger = logging.ForService("split")
}

// EventKey identifies a (site, interval, visit) triple at which a qualifying
// community-sampling event occurred.
type EventKey struct {
	SiteID   int
	Interval int
	Visit    int
}

// groupKey is the grain of the community-sampling-event filter: one
// collecting occasion by one institution at one site in one year.
type groupKey struct {
	CollectorGroup string
	Year           int
	SiteID         int
}

// Report counts what the splitter did to the museum stream.
type Report struct {
	CitSciRecords      int // citizen-science records after cell dedup
	MuseumInput        int // museum records before the event filter
	NonQualifyingEvent int // museum records dropped for lacking a qualifying event
	MuseumRecords      int // museum records after event filter and cell dedup
	QualifyingEvents   int // distinct qualifying (site, interval, visit) triples
}

// Streams is the splitter output: one deduplicated record subset per stream
// plus the qualifying-event set the museum mask is built from.
type Streams struct {
	CitSci []timebin.Record
	Museum []timebin.Record
	Events map[EventKey]struct{}
	Report Report
}

// HasEvent reports whether a qualifying sampling event occurred at the triple.
func (s *Streams) HasEvent(siteID, interval, visit int) bool {
	_, ok := s.Events[EventKey{SiteID: siteID, Interval: interval, Visit: visit}]
	return ok
}

// Split partitions binned records by provenance.
//
// The museum stream passes through the community-sampling-event filter first:
// records are grouped by (collector group, year, site) and a group qualifies
// when it contains at least minEventSpecies distinct species. The filter runs
// on pre-dedup records because its grain is coarser than the tensor cell.
// A qualifying event marks its (site, interval, visit) triple as sampled
// regardless of which species the event yielded.
func Split(records []timebin.Record, minEventSpecies int) *Streams {
	var crowd, museumRaw []timebin.Record
	for i := range records {
		switch records[i].Provenance {
		case occurrence.ProvenanceMuseum:
			museumRaw = append(museumRaw, records[i])
		default:
			crowd = append(crowd, records[i])
		}
	}

	// Distinct species per collecting occasion, counted before dedup.
	groupSpecies := make(map[groupKey]map[string]struct{})
	for i := range museumRaw {
		key := groupKey{
			CollectorGroup: museumRaw[i].CollectorGroup,
			Year:           museumRaw[i].Year,
			SiteID:         museumRaw[i].SiteID,
		}
		set, ok := groupSpecies[key]
		if !ok {
			set = make(map[string]struct{})
			groupSpecies[key] = set
		}
		set[museumRaw[i].Species] = struct{}{}
	}

	qualifying := make(map[groupKey]struct{}, len(groupSpecies))
	for key, set := range groupSpecies {
		if len(set) >= minEventSpecies {
			qualifying[key] = struct{}{}
		}
	}

	events := make(map[EventKey]struct{})
	museumKept := make([]timebin.Record, 0, len(museumRaw))
	nonQualifying := 0
	for i := range museumRaw {
		rec := &museumRaw[i]
		key := groupKey{CollectorGroup: rec.CollectorGroup, Year: rec.Year, SiteID: rec.SiteID}
		if _, ok := qualifying[key]; !ok {
			nonQualifying++
			continue
		}
		museumKept = append(museumKept, *rec)
		// All records of a group share year and site, so the group maps to
		// exactly one (site, interval, visit) triple.
		events[EventKey{SiteID: rec.SiteID, Interval: rec.Interval, Visit: rec.Visit}] = struct{}{}
	}

	streams := &Streams{
		CitSci: timebin.DedupCells(crowd),
		Museum: timebin.DedupCells(museumKept),
		Events: events,
	}
	streams.Report = Report{
		CitSciRecords:      len(streams.CitSci),
		MuseumInput:        len(museumRaw),
		NonQualifyingEvent: nonQualifying,
		MuseumRecords:      len(streams.Museum),
		QualifyingEvents:   len(events),
	}

	if nonQualifying > 0 {
		logger.Debug("museum records without qualifying sampling event excluded",
			"count", nonQualifying,
			"qualifying_events", len(events))
	}

	return streams
}
