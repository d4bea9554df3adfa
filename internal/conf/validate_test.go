package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	return &Settings{
		Study: StudySettings{
			EraStart:        2000,
			EraEnd:          2019,
			IntervalLength:  3,
			MinEventSpecies: 3,
			PartialInterval: PartialRetain,
		},
		Range: RangeSettings{MinYear: 1950, Workers: 4},
	}
}

func TestValidateSettings_Valid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateSettings(validSettings()))
}

func TestValidateSettings_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"inverted era", func(s *Settings) { s.Study.EraStart = 2019; s.Study.EraEnd = 2000 }},
		{"zero interval length", func(s *Settings) { s.Study.IntervalLength = 0 }},
		{"negative species minimum", func(s *Settings) { s.Study.MinRecordsPerSpecies = -1 }},
		{"negative event minimum", func(s *Settings) { s.Study.MinEventSpecies = -1 }},
		{"unknown partial policy", func(s *Settings) { s.Study.PartialInterval = "truncate" }},
		{"negative uncertainty", func(s *Settings) { s.Range.MaxUncertainty = -1 }},
		{"negative workers", func(s *Settings) { s.Range.Workers = -1 }},
		{"inverted exclusion box", func(s *Settings) {
			s.Range.Exclusions = map[string]RangeExclusion{
				"Bombus affinis": {MinLon: 10, MaxLon: -10, MinLat: 0, MaxLat: 1},
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			settings := validSettings()
			tt.mutate(settings)

			err := ValidateSettings(settings)
			require.Error(t, err)

			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.NotEmpty(t, ve.Errors)
		})
	}
}

func TestStudyYears(t *testing.T) {
	t.Parallel()

	study := StudySettings{EraStart: 2000, EraEnd: 2005}
	assert.Equal(t, 6, study.StudyYears())

	study = StudySettings{EraStart: 2000, EraEnd: 2000}
	assert.Equal(t, 1, study.StudyYears())
}
