package config

import (
	"time"

	"github.com/golang/glog"
	gometrics "github.com/rcrowley/go-metrics"
	influxdb "github.com/vrischmann/go-metrics-influxdb"

	"github.com/prebid/gvl-validator/config"
	"github.com/prebid/gvl-validator/metrics"
	prometheusmetrics "github.com/prebid/gvl-validator/metrics/prometheus"
)

// NewMetricsEngine reads the configuration and returns the appropriate metrics engine
// for this instance.
func NewMetricsEngine(cfg *config.Configuration) *DetailedMetricsEngine {
	// Create a list of metrics engines to use.
	// Capacity of 2, as unlikely to have more than 2 metrics backends, and in the case
	// of 1 we won't use the list so it will be garbage collected.
	engineList := make(MultiMetricsEngine, 0, 2)
	returnEngine := DetailedMetricsEngine{}

	if cfg.Metrics.Influxdb.Host != "" {
		// Currently use go-metrics as the metrics piece for influx
		returnEngine.GoMetrics = metrics.NewMetrics(gometrics.NewPrefixedRegistry("gvl."))
		engineList = append(engineList, returnEngine.GoMetrics)
		// Set up the Influx logger
		go influxdb.InfluxDB(
			returnEngine.GoMetrics.MetricsRegistry,                             // metrics registry
			time.Second*time.Duration(cfg.Metrics.Influxdb.MetricSendInterval), // Configurable interval
			cfg.Metrics.Influxdb.Host,                                          // the InfluxDB url
			cfg.Metrics.Influxdb.Database,                                      // your InfluxDB database
			cfg.Metrics.Influxdb.Measurement,                                   // your measurement
			cfg.Metrics.Influxdb.Username,                                      // your InfluxDB user
			cfg.Metrics.Influxdb.Password,                                      // your InfluxDB password
			cfg.Metrics.Influxdb.AlignTimestamps,                               // align timestamps
		)
		glog.Infof("Reporting go-metrics to InfluxDB at %s", cfg.Metrics.Influxdb.Host)
	}
	if cfg.Metrics.Prometheus.Port != 0 {
		// Set up the Prometheus metrics.
		returnEngine.PrometheusMetrics = prometheusmetrics.NewMetrics(cfg.Metrics.Prometheus)
		engineList = append(engineList, returnEngine.PrometheusMetrics)
	}

	// Now return the proper metrics engine
	if len(engineList) > 1 {
		returnEngine.MetricsEngine = &engineList
	} else if len(engineList) == 1 {
		returnEngine.MetricsEngine = engineList[0]
	} else {
		returnEngine.MetricsEngine = &NilMetricsEngine{}
	}

	return &returnEngine
}

// DetailedMetricsEngine is a MultiMetricsEngine that preserves links to underlying metrics engines.
type DetailedMetricsEngine struct {
	metrics.MetricsEngine
	GoMetrics         *metrics.Metrics
	PrometheusMetrics *prometheusmetrics.Metrics
}

// MultiMetricsEngine logs metrics to multiple metrics databases. The can be useful in transitioning
// an instance from one engine to another, you can run both in parallel to verify stats match up.
type MultiMetricsEngine []metrics.MetricsEngine

// RecordVendorListFetch across all engines
func (me *MultiMetricsEngine) RecordVendorListFetch(outcome metrics.Outcome, length time.Duration) {
	for _, thisME := range *me {
		thisME.RecordVendorListFetch(outcome, length)
	}
}

// RecordDisclosureCheck across all engines
func (me *MultiMetricsEngine) RecordDisclosureCheck(outcome metrics.Outcome, length time.Duration) {
	for _, thisME := range *me {
		thisME.RecordDisclosureCheck(outcome, length)
	}
}

// RecordRun across all engines
func (me *MultiMetricsEngine) RecordRun(labels metrics.RunLabels, length time.Duration) {
	for _, thisME := range *me {
		thisME.RecordRun(labels, length)
	}
}

// NilMetricsEngine implements the MetricsEngine interface where no metrics are actually captured. This is
// used if no metric backend is configured and also for tests.
type NilMetricsEngine struct{}

// RecordVendorListFetch as a noop
func (me *NilMetricsEngine) RecordVendorListFetch(outcome metrics.Outcome, length time.Duration) {
}

// RecordDisclosureCheck as a noop
func (me *NilMetricsEngine) RecordDisclosureCheck(outcome metrics.Outcome, length time.Duration) {
}

// RecordRun as a noop
func (me *NilMetricsEngine) RecordRun(labels metrics.RunLabels, length time.Duration) {
}
