package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"

	"github.com/prebid/gvl-validator/gvl"
)

type reportSource interface {
	Report() gvl.Report
}

// NewReportEndpoint serves the report of the latest finished validation run.
// Until the first run is over it responds 503 Service Unavailable.
func NewReportEndpoint(source reportSource) httprouter.Handle {
	return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		report := source.Report()
		if !report.HasRun() {
			http.Error(w, "The first validation run has not finished yet", http.StatusServiceUnavailable)
			return
		}

		jsonOutput, err := json.Marshal(report)
		if err != nil {
			glog.Errorf("/report Critical error when trying to marshal the report: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(jsonOutput)
	}
}
