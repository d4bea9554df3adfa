// Package occurrence defines the canonical occurrence record model and the
// read-side datastore the pipeline loads records from.
package occurrence

// Provenance tags the observation stream a record arrived through.
type Provenance string

const (
	// ProvenanceCrowd marks crowd-submitted (citizen science) sightings.
	ProvenanceCrowd Provenance = "crowd"
	// ProvenanceMuseum marks museum and collection specimen records.
	ProvenanceMuseum Provenance = "museum"
)

// Record represents a single occurrence record. Records are immutable once
// ingested; the pipeline never writes them back.
type Record struct {
	ID             uint       `gorm:"column:id;primaryKey;autoIncrement"`
	Species        string     `gorm:"index"` // scientific name, may be empty for unidentified specimens
	SiteID         int        `gorm:"index"` // site identifier assigned by the spatial site provider
	Year           int        `gorm:"index"`
	Provenance     Provenance `gorm:"index"`
	CollectorGroup string     // collecting institution or submitting platform
	Latitude       float64
	Longitude      float64
}

// HistoricalPoint is an all-time occurrence location used only for range
// inference. The corpus is independent of the study window and typically
// reaches decades before era start.
type HistoricalPoint struct {
	ID            uint    `gorm:"column:id;primaryKey;autoIncrement"`
	Species       string  `gorm:"index"`
	Year          int     `gorm:"index"`
	Latitude      float64
	Longitude     float64
	UncertaintyM  float64 // reported coordinate uncertainty in meters, 0 if unknown
}
