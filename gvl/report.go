package gvl

import "time"

// Report is the outcome of one validation run. It is built once, at the end of the run.
type Report struct {
	Version   *int              `json:"version"`
	URL       string            `json:"url"`
	Success   bool              `json:"success"`
	Errors    []ValidationError `json:"errors"`
	LastCheck *time.Time        `json:"lastCheck"`

	// VendorList is what the run fetched. It is empty when the fetch failed.
	VendorList VendorList `json:"-"`
}

// ValidationError attributes a failed disclosure check to the vendor which published it.
type ValidationError struct {
	Vendor  Vendor `json:"vendor"`
	Message string `json:"error"`
}

// HasRun reports whether the report comes from a completed run.
func (r Report) HasRun() bool {
	return r.LastCheck != nil
}
