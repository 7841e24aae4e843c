package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "loandocs_"

	resultSuccess  = "success"
	resultError    = "error"
	resultDegraded = "degraded"
)

var (
	registerOnce sync.Once

	documentGenerateTotal   *prometheus.CounterVec
	documentGenerateLatency *prometheus.HistogramVec
	overlayDegradedTotal    *prometheus.CounterVec
	missingAssetTotal       *prometheus.CounterVec

	scheduleExportTotal   *prometheus.CounterVec
	scheduleExportLatency *prometheus.HistogramVec
)

// Init registers the document and schedule metrics with the default registry.
func Init() {
	registerOnce.Do(func() {
		documentGenerateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "document_generate_total",
				Help: "Total document generations by variant and result",
			},
			[]string{"variant", "result"},
		)
		documentGenerateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "document_generate_latency_seconds",
				Help:    "Document generation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"variant", "result"},
		)
		overlayDegradedTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "overlay_degraded_total",
				Help: "Documents returned without overlay after a compositor failure",
			},
			[]string{"variant"},
		)
		missingAssetTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "missing_asset_total",
				Help: "Generations aborted because a required asset was absent",
			},
			[]string{"variant", "asset"},
		)

		scheduleExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "schedule_export_total",
				Help: "Total schedule exports by format and result",
			},
			[]string{"format", "result"},
		)
		scheduleExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "schedule_export_latency_seconds",
				Help:    "Schedule export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			documentGenerateTotal,
			documentGenerateLatency,
			overlayDegradedTotal,
			missingAssetTotal,
			scheduleExportTotal,
			scheduleExportLatency,
		)
	})
}

// ObserveDocumentGenerate records generation latency and result.
func ObserveDocumentGenerate(variant, result string, duration time.Duration) {
	if variant == "" {
		variant = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if documentGenerateTotal != nil {
		documentGenerateTotal.WithLabelValues(variant, result).Inc()
	}
	if documentGenerateLatency != nil {
		documentGenerateLatency.WithLabelValues(variant, result).Observe(duration.Seconds())
	}
}

// IncOverlayDegraded counts a base document returned without its overlay.
func IncOverlayDegraded(variant string) {
	if variant == "" {
		variant = "unknown"
	}
	if overlayDegradedTotal != nil {
		overlayDegradedTotal.WithLabelValues(variant).Inc()
	}
}

// IncMissingAsset counts a generation aborted on a missing asset.
func IncMissingAsset(variant, asset string) {
	if missingAssetTotal != nil {
		missingAssetTotal.WithLabelValues(variant, asset).Inc()
	}
}

// ObserveScheduleExport records schedule export latency and result.
func ObserveScheduleExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if scheduleExportTotal != nil {
		scheduleExportTotal.WithLabelValues(format, result).Inc()
	}
	if scheduleExportLatency != nil {
		scheduleExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess  = resultSuccess
	ResultError    = resultError
	ResultDegraded = resultDegraded
)
