// Package metrics provides pipeline metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Drop reasons used as counter labels.
const (
	ReasonMissingSpecies  = "missing_species"
	ReasonOutsideWindow   = "outside_window"
	ReasonPartialInterval = "partial_interval"
	ReasonBelowMinimum    = "below_species_minimum"
	ReasonNoEvent         = "no_qualifying_event"
	ReasonOutOfRange      = "out_of_range"
)

// PipelineMetrics contains Prometheus metrics for one tensor pipeline run
type PipelineMetrics struct {
	recordsDroppedTotal *prometheus.CounterVec
	recordsKeptGauge    *prometheus.GaugeVec
	speciesGauge        prometheus.Gauge
	sitesGauge          prometheus.Gauge
	degenerateGauge     prometheus.Gauge
	eventsGauge         prometheus.Gauge
	detectionsGauge     *prometheus.GaugeVec
	tensorCellsGauge    prometheus.Gauge
	runDurationGauge    prometheus.Gauge
}

// NewPipelineMetrics creates and registers the pipeline metric collectors
func NewPipelineMetrics(registry *prometheus.Registry) (*PipelineMetrics, error) {
	m := &PipelineMetrics{
		recordsDroppedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "occutensor_records_dropped_total",
				Help: "Number of occurrence records dropped, by reason",
			},
			[]string{"reason"},
		),
		recordsKeptGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "occutensor_records_kept",
				Help: "Deduplicated records entering tensor construction, by stream",
			},
			[]string{"stream"},
		),
		speciesGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "occutensor_species",
			Help: "Species surviving the pooled minimum-record filter",
		}),
		sitesGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "occutensor_sites",
			Help: "Sites on the master site axis",
		}),
		degenerateGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "occutensor_degenerate_ranges",
			Help: "Species whose range hull degenerated to an empty range",
		}),
		eventsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "occutensor_qualifying_events",
			Help: "Distinct qualifying museum sampling events",
		}),
		detectionsGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "occutensor_detections",
				Help: "Set detection tensor cells, by stream",
			},
			[]string{"stream"},
		),
		tensorCellsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "occutensor_tensor_cells",
			Help: "Cells per tensor (species x sites x intervals x visits)",
		}),
		runDurationGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "occutensor_run_duration_seconds",
			Help: "Wall-clock duration of the last pipeline run",
		}),
	}

	collectors := []prometheus.Collector{
		m.recordsDroppedTotal,
		m.recordsKeptGauge,
		m.speciesGauge,
		m.sitesGauge,
		m.degenerateGauge,
		m.eventsGauge,
		m.detectionsGauge,
		m.tensorCellsGauge,
		m.runDurationGauge,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordsDropped adds n dropped records for a reason.
func (m *PipelineMetrics) RecordsDropped(reason string, n int) {
	if n > 0 {
		m.recordsDroppedTotal.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordsKept sets the kept-record count for a stream.
func (m *PipelineMetrics) RecordsKept(stream string, n int) {
	m.recordsKeptGauge.WithLabelValues(stream).Set(float64(n))
}

// Detections sets the detection count for a stream.
func (m *PipelineMetrics) Detections(stream string, n int) {
	m.detectionsGauge.WithLabelValues(stream).Set(float64(n))
}

// SetDimensions records the realized tensor dimensions.
func (m *PipelineMetrics) SetDimensions(nSpecies, nSites, cells int) {
	m.speciesGauge.Set(float64(nSpecies))
	m.sitesGauge.Set(float64(nSites))
	m.tensorCellsGauge.Set(float64(cells))
}

// SetDegenerateRanges records the degenerate range count.
func (m *PipelineMetrics) SetDegenerateRanges(n int) {
	m.degenerateGauge.Set(float64(n))
}

// SetQualifyingEvents records the qualifying event count.
func (m *PipelineMetrics) SetQualifyingEvents(n int) {
	m.eventsGauge.Set(float64(n))
}

// SetRunDuration records the wall-clock run duration in seconds.
func (m *PipelineMetrics) SetRunDuration(seconds float64) {
	m.runDurationGauge.Set(seconds)
}
