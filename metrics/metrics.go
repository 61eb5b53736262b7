package metrics

import (
	"time"

	"github.com/prebid/gvl-validator/errortypes"
)

// RunLabels describes one finished validation run.
type RunLabels struct {
	Success           bool
	DisclosingVendors int
	Errors            int
}

// Outcome is the result of fetching and checking one remote document.
type Outcome string

const (
	OutcomeOK             Outcome = "ok"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeParseError     Outcome = "parse_error"
	OutcomeSchemaError    Outcome = "schema_error"
	OutcomeURIError       Outcome = "uri_error"
	OutcomeUnknownError   Outcome = "unknown_error"
)

// Outcomes returns all possible values for Outcome.
func Outcomes() []Outcome {
	return []Outcome{
		OutcomeOK,
		OutcomeTransportError,
		OutcomeParseError,
		OutcomeSchemaError,
		OutcomeURIError,
		OutcomeUnknownError,
	}
}

// OutcomeOf maps an error returned by the fetchers or the schema checker to its Outcome.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}

	switch errortypes.ReadCode(err) {
	case errortypes.TransportErrorCode:
		return OutcomeTransportError
	case errortypes.ParseErrorCode:
		return OutcomeParseError
	case errortypes.SchemaErrorCode:
		return OutcomeSchemaError
	case errortypes.URIErrorCode:
		return OutcomeURIError
	}
	return OutcomeUnknownError
}

// MetricsEngine is a generic interface to record validator metrics into the desired backend.
// A validation run records one vendor list fetch, one disclosure check per disclosing vendor
// and finally the run itself.
type MetricsEngine interface {
	RecordVendorListFetch(outcome Outcome, length time.Duration)
	RecordDisclosureCheck(outcome Outcome, length time.Duration)
	RecordRun(labels RunLabels, length time.Duration)
}
