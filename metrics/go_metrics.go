package metrics

import (
	"time"

	metrics "github.com/rcrowley/go-metrics"
)

// Metrics is the legacy go-metrics backend. It is reported to InfluxDB when configured.
type Metrics struct {
	MetricsRegistry metrics.Registry

	RunMeter          metrics.Meter
	RunFailureMeter   metrics.Meter
	RunTimer          metrics.Timer
	DisclosingVendors metrics.Gauge
	VendorErrors      metrics.Gauge

	VendorListFetchTimer  metrics.Timer
	VendorListFetchMeters map[Outcome]metrics.Meter

	DisclosureCheckTimer  metrics.Timer
	DisclosureCheckMeters map[Outcome]metrics.Meter
}

// NewBlankMetrics creates a new Metrics object with all blank metrics. It allows a safe state
// before the registry is attached.
func NewBlankMetrics(registry metrics.Registry) *Metrics {
	newMetrics := &Metrics{
		MetricsRegistry:   registry,
		RunMeter:          blankMeter,
		RunFailureMeter:   blankMeter,
		RunTimer:          blankTimer,
		DisclosingVendors: blankGauge,
		VendorErrors:      blankGauge,

		VendorListFetchTimer:  blankTimer,
		VendorListFetchMeters: make(map[Outcome]metrics.Meter),

		DisclosureCheckTimer:  blankTimer,
		DisclosureCheckMeters: make(map[Outcome]metrics.Meter),
	}

	for _, outcome := range Outcomes() {
		newMetrics.VendorListFetchMeters[outcome] = blankMeter
		newMetrics.DisclosureCheckMeters[outcome] = blankMeter
	}

	return newMetrics
}

// NewMetrics creates a new Metrics object with needed metrics registered on the given registry.
func NewMetrics(registry metrics.Registry) *Metrics {
	newMetrics := NewBlankMetrics(registry)

	newMetrics.RunMeter = metrics.GetOrRegisterMeter("runs", registry)
	newMetrics.RunFailureMeter = metrics.GetOrRegisterMeter("runs.failed", registry)
	newMetrics.RunTimer = metrics.GetOrRegisterTimer("run_time", registry)
	newMetrics.DisclosingVendors = metrics.GetOrRegisterGauge("disclosing_vendors", registry)
	newMetrics.VendorErrors = metrics.GetOrRegisterGauge("vendor_errors", registry)

	newMetrics.VendorListFetchTimer = metrics.GetOrRegisterTimer("vendor_list.fetch_time", registry)
	newMetrics.DisclosureCheckTimer = metrics.GetOrRegisterTimer("disclosure.check_time", registry)
	for _, outcome := range Outcomes() {
		newMetrics.VendorListFetchMeters[outcome] = metrics.GetOrRegisterMeter("vendor_list.fetch."+string(outcome), registry)
		newMetrics.DisclosureCheckMeters[outcome] = metrics.GetOrRegisterMeter("disclosure.check."+string(outcome), registry)
	}

	return newMetrics
}

func (me *Metrics) RecordVendorListFetch(outcome Outcome, length time.Duration) {
	if meter, ok := me.VendorListFetchMeters[outcome]; ok {
		meter.Mark(1)
	}
	me.VendorListFetchTimer.Update(length)
}

func (me *Metrics) RecordDisclosureCheck(outcome Outcome, length time.Duration) {
	if meter, ok := me.DisclosureCheckMeters[outcome]; ok {
		meter.Mark(1)
	}
	me.DisclosureCheckTimer.Update(length)
}

func (me *Metrics) RecordRun(labels RunLabels, length time.Duration) {
	me.RunMeter.Mark(1)
	if !labels.Success {
		me.RunFailureMeter.Mark(1)
	}
	me.RunTimer.Update(length)
	me.DisclosingVendors.Update(int64(labels.DisclosingVendors))
	me.VendorErrors.Update(int64(labels.Errors))
}

var blankMeter = &metrics.NilMeter{}
var blankTimer = &metrics.NilTimer{}
var blankGauge = metrics.NilGauge{}
