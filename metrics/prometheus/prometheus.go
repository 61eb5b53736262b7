package prometheusmetrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/prebid/gvl-validator/config"
	"github.com/prebid/gvl-validator/metrics"
)

// Metrics defines the Prometheus metrics backing the MetricsEngine implementation.
type Metrics struct {
	Gatherer *prometheus.Registry

	runs              *prometheus.CounterVec
	runTimer          prometheus.Histogram
	disclosingVendors prometheus.Gauge
	vendorErrors      prometheus.Gauge

	vendorListFetches    *prometheus.CounterVec
	vendorListFetchTimer prometheus.Histogram

	disclosureChecks     *prometheus.CounterVec
	disclosureCheckTimer *prometheus.HistogramVec
}

const (
	outcomeLabel = "outcome"
	successLabel = "success"
)

// NewMetrics initializes a new Prometheus metrics instance with preloaded label values.
func NewMetrics(cfg config.PrometheusMetrics) *Metrics {
	requestTimeBuckets := []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	runTimeBuckets := []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200}

	metrics := Metrics{}
	reg := prometheus.NewRegistry()

	metrics.runs = newCounter(cfg, reg,
		"runs",
		"Count of validation runs labeled by whether the vendor list could be retrieved.",
		[]string{successLabel})

	metrics.runTimer = newHistogram(cfg, reg,
		"run_time_seconds",
		"Seconds to complete a validation run, including every disclosure check.",
		runTimeBuckets)

	metrics.disclosingVendors = newGauge(cfg, reg,
		"disclosing_vendors",
		"Number of vendors declaring a device storage disclosure URL in the last run.")

	metrics.vendorErrors = newGauge(cfg, reg,
		"vendor_errors",
		"Number of vendors whose disclosure failed validation in the last run.")

	metrics.vendorListFetches = newCounter(cfg, reg,
		"vendor_list_fetches",
		"Count of vendor list retrievals labeled by outcome.",
		[]string{outcomeLabel})

	metrics.vendorListFetchTimer = newHistogram(cfg, reg,
		"vendor_list_fetch_time_seconds",
		"Seconds to retrieve and parse the vendor list.",
		requestTimeBuckets)

	metrics.disclosureChecks = newCounter(cfg, reg,
		"disclosure_checks",
		"Count of device storage disclosure checks labeled by outcome.",
		[]string{outcomeLabel})

	metrics.disclosureCheckTimer = newHistogramVec(cfg, reg,
		"disclosure_check_time_seconds",
		"Seconds to retrieve and check one device storage disclosure labeled by outcome.",
		[]string{outcomeLabel},
		requestTimeBuckets)

	metrics.Gatherer = reg

	preloadLabelValues(&metrics)

	return &metrics
}

func newCounter(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, labels []string) *prometheus.CounterVec {
	opts := prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
	}
	counter := prometheus.NewCounterVec(opts, labels)
	registry.MustRegister(counter)
	return counter
}

func newGauge(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string) prometheus.Gauge {
	opts := prometheus.GaugeOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
	}
	gauge := prometheus.NewGauge(opts)
	registry.MustRegister(gauge)
	return gauge
}

func newHistogramVec(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	opts := prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}
	histogram := prometheus.NewHistogramVec(opts, labels)
	registry.MustRegister(histogram)
	return histogram
}

func newHistogram(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, buckets []float64) prometheus.Histogram {
	opts := prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}
	histogram := prometheus.NewHistogram(opts)
	registry.MustRegister(histogram)
	return histogram
}

func (m *Metrics) RecordVendorListFetch(outcome metrics.Outcome, length time.Duration) {
	m.vendorListFetches.With(prometheus.Labels{
		outcomeLabel: string(outcome),
	}).Inc()
	m.vendorListFetchTimer.Observe(length.Seconds())
}

func (m *Metrics) RecordDisclosureCheck(outcome metrics.Outcome, length time.Duration) {
	m.disclosureChecks.With(prometheus.Labels{
		outcomeLabel: string(outcome),
	}).Inc()
	m.disclosureCheckTimer.With(prometheus.Labels{
		outcomeLabel: string(outcome),
	}).Observe(length.Seconds())
}

func (m *Metrics) RecordRun(labels metrics.RunLabels, length time.Duration) {
	m.runs.With(prometheus.Labels{
		successLabel: strconv.FormatBool(labels.Success),
	}).Inc()
	m.runTimer.Observe(length.Seconds())
	m.disclosingVendors.Set(float64(labels.DisclosingVendors))
	m.vendorErrors.Set(float64(labels.Errors))
}

func preloadLabelValues(m *Metrics) {
	boolValues := []string{"true", "false"}
	for _, success := range boolValues {
		m.runs.With(prometheus.Labels{successLabel: success})
	}

	for _, outcome := range metrics.Outcomes() {
		labels := prometheus.Labels{outcomeLabel: string(outcome)}
		m.vendorListFetches.With(labels)
		m.disclosureChecks.With(labels)
		m.disclosureCheckTimer.With(labels)
	}
}
