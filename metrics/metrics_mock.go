package metrics

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MetricsEngineMock is mock for the MetricsEngine interface
type MetricsEngineMock struct {
	mock.Mock
}

// RecordVendorListFetch mock
func (me *MetricsEngineMock) RecordVendorListFetch(outcome Outcome, length time.Duration) {
	me.Called(outcome, length)
}

// RecordDisclosureCheck mock
func (me *MetricsEngineMock) RecordDisclosureCheck(outcome Outcome, length time.Duration) {
	me.Called(outcome, length)
}

// RecordRun mock
func (me *MetricsEngineMock) RecordRun(labels RunLabels, length time.Duration) {
	me.Called(labels, length)
}
