package gvl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/context/ctxhttp"

	"github.com/prebid/gvl-validator/errortypes"
)

const (
	invalidJSON = "Invalid JSON"
	invalidURL  = "Invalid URL"
)

// getJSON performs a GET bounded by timeout and returns the body if it is valid JSON.
//
// Every failure is one of the errortypes: URIError if no request could be built, TransportError
// for connection failures and non-2xx responses, ParseError for a malformed body.
func getJSON(ctx context.Context, client *http.Client, timeout time.Duration, url string) ([]byte, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, &errortypes.URIError{Message: invalidURL}
	}
	req.Header.Set("Accept", "application/json")

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := ctxhttp.Do(ctx, client, req)
	if err != nil {
		return nil, &errortypes.TransportError{Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &errortypes.TransportError{
			Message:    fmt.Sprintf("Connection failed: %s", resp.Status),
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errortypes.TransportError{
			Message:    fmt.Sprintf("Connection failed: %v", err),
			StatusCode: resp.StatusCode,
		}
	}

	if !json.Valid(body) {
		return nil, &errortypes.ParseError{Message: invalidJSON}
	}
	return body, nil
}
