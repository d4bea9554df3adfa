// conf/validate.go

package conf

import (
	"fmt"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateStudySettings(&settings.Study); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateRangeSettings(&settings.Range); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// validateStudySettings enforces the study-design contract: a positive window
// and a positive interval length. A non-dividing interval length is permitted,
// what happens to the trailing years is the partial-interval policy's call.
func validateStudySettings(study *StudySettings) error {
	if study.StudyYears() <= 0 {
		return fmt.Errorf("study window length must be positive, got era %d-%d", study.EraStart, study.EraEnd)
	}
	if study.IntervalLength <= 0 {
		return fmt.Errorf("study interval length must be positive, got %d", study.IntervalLength)
	}
	if study.MinRecordsPerSpecies < 0 {
		return fmt.Errorf("minimum records per species must not be negative, got %d", study.MinRecordsPerSpecies)
	}
	if study.MinEventSpecies < 0 {
		return fmt.Errorf("minimum event species must not be negative, got %d", study.MinEventSpecies)
	}
	switch study.PartialInterval {
	case PartialRetain, PartialDrop:
	default:
		return fmt.Errorf("partial interval policy must be %q or %q, got %q", PartialRetain, PartialDrop, study.PartialInterval)
	}
	return nil
}

func validateRangeSettings(rng *RangeSettings) error {
	if rng.MaxUncertainty < 0 {
		return fmt.Errorf("range max uncertainty must not be negative, got %f", rng.MaxUncertainty)
	}
	if rng.Workers < 0 {
		return fmt.Errorf("range workers must not be negative, got %d", rng.Workers)
	}
	for species, box := range rng.Exclusions {
		if box.MinLon > box.MaxLon || box.MinLat > box.MaxLat {
			return fmt.Errorf("range exclusion box for %q is inverted", species)
		}
	}
	return nil
}
