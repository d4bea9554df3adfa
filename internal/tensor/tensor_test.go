package tensor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkoskela/occutensor/internal/errors"
	"github.com/tkoskela/occutensor/internal/timebin"
)

func testAxes(t *testing.T) *Axes {
	t.Helper()
	axes, err := NewAxes(
		[]string{"Bombus affinis", "Bombus terricola"},
		[]int{1, 5, 7},
		[]int{0, 1},
		[]int{0, 1, 2},
	)
	require.NoError(t, err)
	return axes
}

func TestNewAxes_DuplicateEntries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		species   []string
		sites     []int
		intervals []int
		visits    []int
	}{
		{"duplicate species", []string{"a", "a"}, []int{1}, []int{0}, []int{0}},
		{"duplicate site", []string{"a"}, []int{1, 1}, []int{0}, []int{0}},
		{"duplicate interval", []string{"a"}, []int{1}, []int{0, 0}, []int{0}},
		{"duplicate visit", []string{"a"}, []int{1}, []int{0}, []int{2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewAxes(tt.species, tt.sites, tt.intervals, tt.visits)
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, errors.CategoryIndexMismatch))
		})
	}
}

func TestAxes_Lookups(t *testing.T) {
	t.Parallel()

	axes := testAxes(t)

	nSpecies, nSites, nIntervals, nVisits := axes.Dims()
	assert.Equal(t, 2, nSpecies)
	assert.Equal(t, 3, nSites)
	assert.Equal(t, 2, nIntervals)
	assert.Equal(t, 3, nVisits)
	assert.Equal(t, 36, axes.Cells())

	i, ok := axes.SpeciesIndex("Bombus terricola")
	require.True(t, ok)
	assert.Equal(t, 1, i)

	j, ok := axes.SiteIndex(7)
	require.True(t, ok)
	assert.Equal(t, 2, j)

	_, ok = axes.SiteIndex(99)
	assert.False(t, ok)
}

func TestDeriveTimeAxes(t *testing.T) {
	t.Parallel()

	citsci := []timebin.Record{
		{Interval: 3, Visit: 2},
		{Interval: 0, Visit: 0},
	}
	museum := []timebin.Record{
		{Interval: 1, Visit: 2},
		{Interval: 3, Visit: 1},
	}

	intervals, visits := DeriveTimeAxes(citsci, museum)
	assert.Equal(t, []int{0, 1, 3}, intervals)
	assert.Equal(t, []int{0, 1, 2}, visits)
}

func TestDeriveTimeAxes_Empty(t *testing.T) {
	t.Parallel()

	intervals, visits := DeriveTimeAxes(nil, nil)
	assert.Empty(t, intervals)
	assert.Empty(t, visits)
}

func TestDense_ZeroFilledAndMark(t *testing.T) {
	t.Parallel()

	dense := NewDense(testAxes(t))
	assert.Equal(t, 0, dense.Sum())

	dense.Mark(1, 2, 0, 1)
	assert.Equal(t, uint8(1), dense.At(1, 2, 0, 1))
	assert.Equal(t, uint8(0), dense.At(0, 0, 0, 0))
	assert.Equal(t, 1, dense.Sum())

	// Marking twice keeps the cell binary.
	dense.Mark(1, 2, 0, 1)
	assert.Equal(t, 1, dense.Sum())
}

func TestDense_OutOfRangePanics(t *testing.T) {
	t.Parallel()

	dense := NewDense(testAxes(t))
	assert.Panics(t, func() { dense.At(2, 0, 0, 0) })
	assert.Panics(t, func() { dense.Mark(0, 0, 0, -1) })
}

func TestBuild_MarksRecords(t *testing.T) {
	t.Parallel()

	axes := testAxes(t)
	records := []timebin.Record{
		{Species: "Bombus affinis", SiteID: 5, Interval: 0, Visit: 1},
		{Species: "Bombus terricola", SiteID: 7, Interval: 1, Visit: 2},
	}

	dense, err := Build(context.Background(), records, axes, 2)
	require.NoError(t, err)

	assert.Equal(t, uint8(1), dense.At(0, 1, 0, 1))
	assert.Equal(t, uint8(1), dense.At(1, 2, 1, 2))
	assert.Equal(t, 2, dense.Sum())

	// Every other cell in the full domain is an explicit zero.
	assert.Equal(t, axes.Cells(), len(dense.Bytes()))
}

func TestBuild_EmptyRecords(t *testing.T) {
	t.Parallel()

	dense, err := Build(context.Background(), nil, testAxes(t), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, dense.Sum())
}

func TestBuild_IndexMismatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		record timebin.Record
	}{
		{"unknown species", timebin.Record{Species: "Apis mellifera", SiteID: 1, Interval: 0, Visit: 0}},
		{"unknown site", timebin.Record{Species: "Bombus affinis", SiteID: 42, Interval: 0, Visit: 0}},
		{"unknown interval", timebin.Record{Species: "Bombus affinis", SiteID: 1, Interval: 9, Visit: 0}},
		{"unknown visit", timebin.Record{Species: "Bombus affinis", SiteID: 1, Interval: 0, Visit: 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Build(context.Background(), []timebin.Record{tt.record}, testAxes(t), 1)
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, errors.CategoryIndexMismatch))
		})
	}
}

func TestDense_Equal(t *testing.T) {
	t.Parallel()

	axes := testAxes(t)
	a := NewDense(axes)
	b := NewDense(axes)
	assert.True(t, a.Equal(b))

	a.Mark(0, 0, 0, 0)
	assert.False(t, a.Equal(b))

	b.Mark(0, 0, 0, 0)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(nil))
}
