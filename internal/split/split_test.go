package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkoskela/occutensor/internal/occurrence"
	"github.com/tkoskela/occutensor/internal/timebin"
)

func crowdRecord(species string, siteID, year, interval, visit int) timebin.Record {
	return timebin.Record{
		Species:    species,
		SiteID:     siteID,
		Year:       year,
		Interval:   interval,
		Visit:      visit,
		Provenance: occurrence.ProvenanceCrowd,
	}
}

func museumRecord(species, group string, siteID, year, interval, visit int) timebin.Record {
	return timebin.Record{
		Species:        species,
		SiteID:         siteID,
		Year:           year,
		Interval:       interval,
		Visit:          visit,
		Provenance:     occurrence.ProvenanceMuseum,
		CollectorGroup: group,
	}
}

func TestSplit_ByProvenance(t *testing.T) {
	t.Parallel()

	streams := Split([]timebin.Record{
		crowdRecord("Bombus affinis", 1, 2001, 0, 1),
		museumRecord("Bombus affinis", "NHM", 2, 2001, 0, 1),
		museumRecord("Bombus terricola", "NHM", 2, 2001, 0, 1),
		museumRecord("Apis mellifera", "NHM", 2, 2001, 0, 1),
	}, 3)

	assert.Len(t, streams.CitSci, 1)
	assert.Len(t, streams.Museum, 3)
	assert.Equal(t, 1, streams.Report.QualifyingEvents)
}

func TestSplit_EventFilterBelowThreshold(t *testing.T) {
	t.Parallel()

	// A collector group visiting site 7 in one year with only 2 distinct
	// species while the threshold is 3: every record of the occasion is
	// dropped and no sampling event is recorded at its triple.
	streams := Split([]timebin.Record{
		museumRecord("Bombus affinis", "NHM", 7, 2002, 0, 2),
		museumRecord("Bombus terricola", "NHM", 7, 2002, 0, 2),
	}, 3)

	assert.Empty(t, streams.Museum)
	assert.Empty(t, streams.Events)
	assert.Equal(t, 2, streams.Report.NonQualifyingEvent)
	assert.False(t, streams.HasEvent(7, 0, 2))
}

func TestSplit_EventFilterCountsPreDedup(t *testing.T) {
	t.Parallel()

	// Duplicate specimens of one species still count as one distinct
	// species, but distinct species across duplicates at the same cell all
	// count: the grain is the collecting occasion, not the tensor cell.
	streams := Split([]timebin.Record{
		museumRecord("Bombus affinis", "NHM", 4, 2001, 0, 1),
		museumRecord("Bombus affinis", "NHM", 4, 2001, 0, 1),
		museumRecord("Bombus terricola", "NHM", 4, 2001, 0, 1),
		museumRecord("Apis mellifera", "NHM", 4, 2001, 0, 1),
	}, 3)

	// 3 distinct species qualify the occasion; the duplicate collapses at
	// the cell grain afterwards.
	require.True(t, streams.HasEvent(4, 0, 1))
	assert.Len(t, streams.Museum, 3)
	assert.Equal(t, 1, streams.Report.QualifyingEvents)
}

func TestSplit_GroupsAreIndependent(t *testing.T) {
	t.Parallel()

	// Two institutions at the same site and year are separate occasions:
	// one qualifies, the other does not.
	streams := Split([]timebin.Record{
		museumRecord("Bombus affinis", "NHM", 4, 2001, 0, 1),
		museumRecord("Bombus terricola", "NHM", 4, 2001, 0, 1),
		museumRecord("Apis mellifera", "NHM", 4, 2001, 0, 1),
		museumRecord("Bombus affinis", "Field Museum", 4, 2001, 0, 1),
	}, 3)

	assert.True(t, streams.HasEvent(4, 0, 1))
	// The Field Museum record is dropped, the NHM records survive. The
	// NHM "Bombus affinis" record already owns the cell.
	assert.Len(t, streams.Museum, 3)
	assert.Equal(t, 1, streams.Report.NonQualifyingEvent)
}

func TestSplit_CitSciDeduplicated(t *testing.T) {
	t.Parallel()

	streams := Split([]timebin.Record{
		crowdRecord("Bombus affinis", 1, 2001, 0, 1),
		crowdRecord("Bombus affinis", 1, 2001, 0, 1),
	}, 3)

	assert.Len(t, streams.CitSci, 1)
}

func TestSplit_ZeroThresholdKeepsAllMuseumRecords(t *testing.T) {
	t.Parallel()

	streams := Split([]timebin.Record{
		museumRecord("Bombus affinis", "NHM", 1, 2001, 0, 1),
	}, 0)

	assert.Len(t, streams.Museum, 1)
	assert.True(t, streams.HasEvent(1, 0, 1))
}
