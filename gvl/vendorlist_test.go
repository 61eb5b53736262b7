package gvl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xorcare/pointer"

	"github.com/prebid/gvl-validator/config"
	"github.com/prebid/gvl-validator/errortypes"
)

var defaultVendorListConfig = config.VendorList{
	LatestURL:  "https://vendor-list.consensu.org/v2/vendor-list.json",
	ArchiveURL: "https://vendor-list.consensu.org/v2/archives/vendor-list-v%d.json",
}

func TestResolveURL(t *testing.T) {
	testCases := []struct {
		description string
		version     *int
		expectedURL string
	}{
		{
			description: "Latest",
			version:     nil,
			expectedURL: "https://vendor-list.consensu.org/v2/vendor-list.json",
		},
		{
			description: "Specific",
			version:     pointer.Int(42),
			expectedURL: "https://vendor-list.consensu.org/v2/archives/vendor-list-v42.json",
		},
		{
			description: "First",
			version:     pointer.Int(1),
			expectedURL: "https://vendor-list.consensu.org/v2/archives/vendor-list-v1.json",
		},
	}

	for _, test := range testCases {
		assert.Equal(t, test.expectedURL, ResolveURL(defaultVendorListConfig, test.version), test.description)
	}
}

func TestResolveURLEmbedsEveryVersion(t *testing.T) {
	for version := 1; version <= 1000; version++ {
		url := ResolveURL(defaultVendorListConfig, pointer.Int(version))
		assert.True(t, strings.HasSuffix(url, "/vendor-list-v"+strconv.Itoa(version)+".json"), url)
	}
}

const orderedVendorList = `{
  "gvlSpecificationVersion": 2,
  "vendorListVersion": 215,
  "tcfPolicyVersion": 2,
  "vendors": {
    "755": {"id": 755, "name": "Google", "deviceStorageDisclosureUrl": "https://example.com/755.json"},
    "12": {"id": 12, "name": "BeeswaxIO", "purposes": [1, 3]},
    "1": {"id": 1, "name": "Exponential", "deviceStorageDisclosureUrl": null},
    "8": {"id": 8, "name": "Emerse", "deviceStorageDisclosureUrl": "https://example.com/8.json?a=1&b=2"}
  }
}`

func TestFetchVendorList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(orderedVendorList))
	}))
	defer server.Close()

	fetcher := NewVendorListFetcher(server.Client(), time.Second)
	list, err := fetcher.FetchVendorList(context.Background(), server.URL)
	require.NoError(t, err)

	if assert.NotNil(t, list.Version) {
		assert.Equal(t, 215, *list.Version)
	}
	require.Len(t, list.Vendors, 4)

	ids := make([]string, 0, len(list.Vendors))
	for _, vendor := range list.Vendors {
		ids = append(ids, vendor.ID)
	}
	assert.Equal(t, []string{"755", "12", "1", "8"}, ids, "vendors must keep document order")

	if assert.NotNil(t, list.Vendors[0].DisclosureURL) {
		assert.Equal(t, "https://example.com/755.json", *list.Vendors[0].DisclosureURL)
	}
	assert.Nil(t, list.Vendors[1].DisclosureURL, "absent URL")
	assert.Nil(t, list.Vendors[2].DisclosureURL, "null URL")
	if assert.NotNil(t, list.Vendors[3].DisclosureURL) {
		assert.Equal(t, "https://example.com/8.json?a=1&b=2", *list.Vendors[3].DisclosureURL, "escapes are decoded")
	}

	assert.JSONEq(t, `{"id": 12, "name": "BeeswaxIO", "purposes": [1, 3]}`, string(list.Vendors[1].Raw))
}

func TestFetchVendorListWithoutVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"vendors":{}}`))
	}))
	defer server.Close()

	list, err := NewVendorListFetcher(server.Client(), time.Second).FetchVendorList(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Nil(t, list.Version)
	assert.Empty(t, list.Vendors)
}

func TestFetchVendorListNonObjectVendor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"vendorListVersion":3,"vendors":{"1":"retired","2":{"deviceStorageDisclosureUrl":42}}}`))
	}))
	defer server.Close()

	list, err := NewVendorListFetcher(server.Client(), time.Second).FetchVendorList(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, list.Vendors, 2)

	assert.Nil(t, list.Vendors[0].DisclosureURL)
	assert.Equal(t, `"retired"`, string(list.Vendors[0].Raw))
	if assert.NotNil(t, list.Vendors[1].DisclosureURL) {
		assert.Equal(t, "42", *list.Vendors[1].DisclosureURL)
	}
}

func TestFetchVendorListErrors(t *testing.T) {
	testCases := []struct {
		description  string
		status       int
		body         string
		expectedType interface{}
	}{
		{
			description:  "Not found",
			status:       http.StatusNotFound,
			body:         `{"vendors":{}}`,
			expectedType: &errortypes.TransportError{},
		},
		{
			description:  "Malformed",
			status:       http.StatusOK,
			body:         "malformed",
			expectedType: &errortypes.ParseError{},
		},
		{
			description:  "No vendors",
			status:       http.StatusOK,
			body:         `{"vendorListVersion":1}`,
			expectedType: &errortypes.ParseError{},
		},
		{
			description:  "Vendors is an array",
			status:       http.StatusOK,
			body:         `{"vendorListVersion":1,"vendors":[]}`,
			expectedType: &errortypes.ParseError{},
		},
	}

	for _, test := range testCases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(test.status)
			w.Write([]byte(test.body))
		}))

		_, err := NewVendorListFetcher(server.Client(), time.Second).FetchVendorList(context.Background(), server.URL)
		assert.IsType(t, test.expectedType, err, test.description)

		server.Close()
	}
}

func TestFetchVendorListServerUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := NewVendorListFetcher(server.Client(), time.Second).FetchVendorList(context.Background(), server.URL)
	assert.IsType(t, &errortypes.TransportError{}, err)
}

func TestFetchVendorListServerUrlInvalid(t *testing.T) {
	_, err := NewVendorListFetcher(http.DefaultClient, time.Second).FetchVendorList(context.Background(), " http://invalid-url-has-leading-whitespace")
	assert.IsType(t, &errortypes.URIError{}, err)
}

func TestVendorMarshalJSON(t *testing.T) {
	vendor := Vendor{ID: "12", Raw: []byte(`{"id":12,"name":"BeeswaxIO"}`)}
	data, err := vendor.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":12,"name":"BeeswaxIO"}`, string(data))

	data, err = Vendor{ID: "13"}.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
