package endpoints

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// NewStatusEndpoint answers health checks with response, or with 204 No Content if response is empty.
func NewStatusEndpoint(response string) httprouter.Handle {
	if response == "" {
		return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			w.WriteHeader(http.StatusNoContent)
		}
	}

	responseBytes := []byte(response)
	return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.Write(responseBytes)
	}
}
