package gvl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/buger/jsonparser"
	"github.com/xorcare/pointer"

	"github.com/prebid/gvl-validator/config"
	"github.com/prebid/gvl-validator/errortypes"
)

// VendorList is one fetched version of the Global Vendor List.
type VendorList struct {
	// Version is the list's own vendorListVersion, or nil if it has none.
	Version *int
	// Vendors keeps the order of the "vendors" object in the document.
	Vendors []Vendor
}

// Vendor is one entry of the vendor list. Raw holds the entry exactly as published.
type Vendor struct {
	ID            string
	DisclosureURL *string
	Raw           json.RawMessage
}

// MarshalJSON emits the vendor as it was published.
func (v Vendor) MarshalJSON() ([]byte, error) {
	if len(v.Raw) == 0 {
		return []byte("null"), nil
	}
	return v.Raw, nil
}

// VendorListFetcher retrieves and parses a vendor list.
type VendorListFetcher interface {
	FetchVendorList(ctx context.Context, url string) (VendorList, error)
}

// ResolveURL makes the URL of the given vendor list version. A nil version means the latest list.
func ResolveURL(cfg config.VendorList, version *int) string {
	if version == nil {
		return cfg.LatestURL
	}
	return fmt.Sprintf(cfg.ArchiveURL, *version)
}

// NewVendorListFetcher returns a VendorListFetcher which bounds each request by timeout.
func NewVendorListFetcher(client *http.Client, timeout time.Duration) VendorListFetcher {
	return &httpVendorListFetcher{
		client:  client,
		timeout: timeout,
	}
}

type httpVendorListFetcher struct {
	client  *http.Client
	timeout time.Duration
}

func (f *httpVendorListFetcher) FetchVendorList(ctx context.Context, url string) (VendorList, error) {
	body, err := getJSON(ctx, f.client, f.timeout, url)
	if err != nil {
		return VendorList{}, err
	}
	return parseVendorList(body)
}

func parseVendorList(body []byte) (VendorList, error) {
	vendors, dataType, _, err := jsonparser.Get(body, "vendors")
	if err != nil || dataType != jsonparser.Object {
		return VendorList{}, &errortypes.ParseError{Message: "Vendor list has no vendors object"}
	}

	list := VendorList{}
	if version, err := jsonparser.GetInt(body, "vendorListVersion"); err == nil {
		list.Version = pointer.Int(int(version))
	}

	err = jsonparser.ObjectEach(vendors, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		id, err := jsonparser.ParseString(key)
		if err != nil {
			return err
		}
		raw, err := rawValue(value, dataType)
		if err != nil {
			return err
		}
		list.Vendors = append(list.Vendors, Vendor{
			ID:            id,
			DisclosureURL: disclosureURL(value, dataType),
			Raw:           raw,
		})
		return nil
	})
	if err != nil {
		return VendorList{}, &errortypes.ParseError{Message: invalidJSON}
	}
	return list, nil
}

// rawValue undoes jsonparser's unquoting of string values.
func rawValue(value []byte, dataType jsonparser.ValueType) (json.RawMessage, error) {
	if dataType != jsonparser.String {
		return json.RawMessage(value), nil
	}
	s, err := jsonparser.ParseString(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

// disclosureURL returns nil when the vendor declares no disclosure. A value which is present but not
// a string is returned as its JSON text, which later fails URL validation.
func disclosureURL(vendor []byte, dataType jsonparser.ValueType) *string {
	if dataType != jsonparser.Object {
		return nil
	}

	value, valueType, _, err := jsonparser.Get(vendor, "deviceStorageDisclosureUrl")
	if err != nil || valueType == jsonparser.Null {
		return nil
	}
	if valueType == jsonparser.String {
		if s, err := jsonparser.ParseString(value); err == nil {
			return &s
		}
	}
	return pointer.String(string(value))
}
