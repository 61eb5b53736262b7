package prometheusmetrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"

	"github.com/prebid/gvl-validator/config"
	"github.com/prebid/gvl-validator/metrics"
)

func createMetricsForTesting() *Metrics {
	return NewMetrics(config.PrometheusMetrics{
		Port:      8080,
		Namespace: "gvl",
		Subsystem: "validator",
	})
}

func TestMetricCountGatekeeping(t *testing.T) {
	m := createMetricsForTesting()

	metricFamilies, err := m.Gatherer.Gather()
	assert.NoError(t, err, "gather metics")

	// Every labeled series is preloaded, so all families are present before anything is recorded.
	names := make(map[string]bool, len(metricFamilies))
	for _, family := range metricFamilies {
		names[family.GetName()] = true
	}
	assert.True(t, names["gvl_validator_runs"])
	assert.True(t, names["gvl_validator_run_time_seconds"])
	assert.True(t, names["gvl_validator_disclosing_vendors"])
	assert.True(t, names["gvl_validator_vendor_errors"])
	assert.True(t, names["gvl_validator_vendor_list_fetches"])
	assert.True(t, names["gvl_validator_vendor_list_fetch_time_seconds"])
	assert.True(t, names["gvl_validator_disclosure_checks"])
	assert.True(t, names["gvl_validator_disclosure_check_time_seconds"])
}

func TestRecordRun(t *testing.T) {
	m := createMetricsForTesting()

	m.RecordRun(metrics.RunLabels{Success: true, DisclosingVendors: 7, Errors: 2}, 30*time.Second)
	m.RecordRun(metrics.RunLabels{Success: false}, 5*time.Second)
	m.RecordRun(metrics.RunLabels{Success: true, DisclosingVendors: 9, Errors: 1}, 40*time.Second)

	assertCounterVecValue(t, "", "runs", m.runs, 2, prometheus.Labels{successLabel: "true"})
	assertCounterVecValue(t, "", "runs", m.runs, 1, prometheus.Labels{successLabel: "false"})
	assertGaugeValue(t, "disclosing vendors", m.disclosingVendors, 9)
	assertGaugeValue(t, "vendor errors", m.vendorErrors, 1)

	result := getHistogramFromHistogram(m.runTimer)
	assert.Equal(t, uint64(3), result.GetSampleCount())
	assert.Equal(t, float64(75), result.GetSampleSum())
}

func TestRecordVendorListFetch(t *testing.T) {
	m := createMetricsForTesting()

	m.RecordVendorListFetch(metrics.OutcomeTransportError, 500*time.Millisecond)

	assertCounterVecValue(t, "", "vendor list fetches", m.vendorListFetches, 1, prometheus.Labels{outcomeLabel: "transport_error"})
	assertCounterVecValue(t, "", "vendor list fetches", m.vendorListFetches, 0, prometheus.Labels{outcomeLabel: "ok"})

	result := getHistogramFromHistogram(m.vendorListFetchTimer)
	assert.Equal(t, uint64(1), result.GetSampleCount())
	assert.Equal(t, 0.5, result.GetSampleSum())
}

func TestRecordDisclosureCheck(t *testing.T) {
	testCases := []struct {
		description string
		outcome     metrics.Outcome
	}{
		{description: "ok", outcome: metrics.OutcomeOK},
		{description: "transport", outcome: metrics.OutcomeTransportError},
		{description: "parse", outcome: metrics.OutcomeParseError},
		{description: "schema", outcome: metrics.OutcomeSchemaError},
		{description: "uri", outcome: metrics.OutcomeURIError},
	}

	for _, test := range testCases {
		m := createMetricsForTesting()

		m.RecordDisclosureCheck(test.outcome, 250*time.Millisecond)

		assertCounterVecValue(t, test.description, "disclosure checks", m.disclosureChecks, 1, prometheus.Labels{outcomeLabel: string(test.outcome)})
		result := getHistogramFromHistogramVec(m.disclosureCheckTimer, outcomeLabel, string(test.outcome))
		assert.Equal(t, uint64(1), result.GetSampleCount(), test.description)
		assert.Equal(t, 0.25, result.GetSampleSum(), test.description)
	}
}

func assertCounterVecValue(t *testing.T, description, name string, counterVec *prometheus.CounterVec, expected float64, labels prometheus.Labels) {
	counter := counterVec.With(labels)
	assertCounterValue(t, description, name, counter, expected)
}

func assertCounterValue(t *testing.T, description, name string, counter prometheus.Counter, expected float64) {
	m := dto.Metric{}
	counter.Write(&m)
	actual := *m.GetCounter().Value

	assert.Equal(t, expected, actual, description+" - "+name)
}

func assertGaugeValue(t *testing.T, description string, gauge prometheus.Gauge, expected float64) {
	m := dto.Metric{}
	gauge.Write(&m)
	actual := *m.GetGauge().Value

	assert.Equal(t, expected, actual, description)
}

func getHistogramFromHistogram(histogram prometheus.Histogram) *dto.Histogram {
	var result *dto.Histogram
	processMetrics(histogram, func(m *dto.Metric) {
		result = m.GetHistogram()
	})
	return result
}

func getHistogramFromHistogramVec(histogram *prometheus.HistogramVec, labelKey, labelValue string) *dto.Histogram {
	var result *dto.Histogram
	processMetrics(histogram, func(m *dto.Metric) {
		for _, label := range m.GetLabel() {
			if label.GetName() == labelKey && label.GetValue() == labelValue {
				result = m.GetHistogram()
			}
		}
	})
	return result
}

func processMetrics(collector prometheus.Collector, handler func(m *dto.Metric)) {
	collectorChan := make(chan prometheus.Metric)
	go func() {
		collector.Collect(collectorChan)
		close(collectorChan)
	}()

	for metric := range collectorChan {
		dtoMetric := &dto.Metric{}
		metric.Write(dtoMetric)
		handler(dtoMetric)
	}
}
