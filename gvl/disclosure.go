package gvl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/asaskevich/govalidator"

	"github.com/prebid/gvl-validator/errortypes"
)

// DisclosureDocument is the raw JSON body of a vendor's device storage disclosure.
type DisclosureDocument json.RawMessage

// DisclosureFetcher retrieves a single disclosure document. Errors are returned to the caller,
// which decides how to record them.
type DisclosureFetcher interface {
	FetchDisclosure(ctx context.Context, url string) (DisclosureDocument, error)
}

// NewDisclosureFetcher returns a DisclosureFetcher which bounds each request by timeout.
func NewDisclosureFetcher(client *http.Client, timeout time.Duration) DisclosureFetcher {
	return &httpDisclosureFetcher{
		client:  client,
		timeout: timeout,
	}
}

type httpDisclosureFetcher struct {
	client  *http.Client
	timeout time.Duration
}

func (f *httpDisclosureFetcher) FetchDisclosure(ctx context.Context, rawURL string) (DisclosureDocument, error) {
	if !isDisclosureURL(rawURL) {
		return nil, &errortypes.URIError{Message: invalidURL}
	}

	body, err := getJSON(ctx, f.client, f.timeout, rawURL)
	if err != nil {
		return nil, err
	}
	return DisclosureDocument(body), nil
}

// isDisclosureURL accepts absolute http(s) URLs with a host.
func isDisclosureURL(rawURL string) bool {
	if !govalidator.IsRequestURL(rawURL) {
		return false
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}
	return parsed.Scheme == "http" || parsed.Scheme == "https"
}
