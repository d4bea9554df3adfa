package occurrence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkoskela/occutensor/internal/conf"
)

// openTestStore opens an in-memory SQLite store that lives for one test.
func openTestStore(t *testing.T) Interface {
	t.Helper()

	settings := &conf.Settings{}
	settings.Input.SQLite.Path = ":memory:"

	store := New(settings)
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_SaveAndGetAllRecords(t *testing.T) {
	store := openTestStore(t)

	records := []Record{
		{Species: "Bombus affinis", SiteID: 5, Year: 2001, Provenance: ProvenanceCrowd},
		{Species: "Bombus terricola", SiteID: 7, Year: 2002, Provenance: ProvenanceMuseum, CollectorGroup: "survey-1"},
	}
	for i := range records {
		require.NoError(t, store.Save(&records[i]))
	}

	got, err := store.GetAllRecords()
	require.NoError(t, err)
	require.Len(t, got, 2)

	// ID order keeps reruns deterministic.
	assert.Equal(t, "Bombus affinis", got[0].Species)
	assert.Equal(t, "Bombus terricola", got[1].Species)
	assert.Equal(t, ProvenanceMuseum, got[1].Provenance)
	assert.Equal(t, "survey-1", got[1].CollectorGroup)

	count, err := store.CountRecords()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestStore_GetRecordsByProvenance(t *testing.T) {
	store := openTestStore(t)

	records := []Record{
		{Species: "Bombus affinis", SiteID: 5, Year: 2001, Provenance: ProvenanceCrowd},
		{Species: "Bombus affinis", SiteID: 7, Year: 2001, Provenance: ProvenanceMuseum},
		{Species: "Bombus terricola", SiteID: 5, Year: 2003, Provenance: ProvenanceCrowd},
	}
	for i := range records {
		require.NoError(t, store.Save(&records[i]))
	}

	crowd, err := store.GetRecordsByProvenance(ProvenanceCrowd)
	require.NoError(t, err)
	assert.Len(t, crowd, 2)

	museum, err := store.GetRecordsByProvenance(ProvenanceMuseum)
	require.NoError(t, err)
	assert.Len(t, museum, 1)
}

func TestStore_GetHistoricalPointsYearFloor(t *testing.T) {
	store := openTestStore(t)

	points := []HistoricalPoint{
		{Species: "Bombus affinis", Year: 1900, Longitude: -1, Latitude: -1},
		{Species: "Bombus affinis", Year: 1980, Longitude: 2, Latitude: 2},
		{Species: "Bombus affinis", Year: 1950, Longitude: 0, Latitude: 0},
	}
	for i := range points {
		require.NoError(t, store.SaveHistoricalPoint(&points[i]))
	}

	got, err := store.GetHistoricalPoints(1950)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1980, got[0].Year)
	assert.Equal(t, 1950, got[1].Year)
}

func TestStore_FileLoggingEnabled(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "db.log")

	settings := &conf.Settings{}
	settings.Input.SQLite.Path = ":memory:"
	settings.Main.Log = conf.LogConfig{
		Enabled:  true,
		Path:     logPath,
		Rotation: conf.RotationSize,
		MaxSize:  1024 * 1024,
	}

	store := New(settings)
	require.NoError(t, store.Open())

	require.NoError(t, store.Save(&Record{Species: "Bombus affinis", SiteID: 5, Year: 2001, Provenance: ProvenanceCrowd}))
	require.NoError(t, store.Close())
}

func TestStore_OpenWithoutPathFails(t *testing.T) {
	store := New(&conf.Settings{})
	assert.Error(t, store.Open())
}

func TestDataStore_SaveWithoutConnection(t *testing.T) {
	t.Parallel()

	ds := &DataStore{}
	assert.Error(t, ds.Save(&Record{}))
	assert.Error(t, ds.SaveHistoricalPoint(&HistoricalPoint{}))
}
