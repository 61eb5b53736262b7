package gvl

import (
	"context"
	"net/http"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/prebid/gvl-validator/config"
	"github.com/prebid/gvl-validator/metrics"
	metricsconfig "github.com/prebid/gvl-validator/metrics/config"
)

// Validator checks the device storage disclosures of every vendor in one vendor list.
//
// Each call to Validate is one full pass. The resulting Report replaces the previous one as a whole.
type Validator struct {
	vendorList     config.VendorList
	version        *int
	vendorLists    VendorListFetcher
	disclosures    DisclosureFetcher
	checker        *DisclosureChecker
	metricsEngine  metrics.MetricsEngine
	clock          clock.Clock
	maxConcurrency int

	mu     sync.RWMutex
	report Report
}

// Options configure a Validator. Nil or zero fields fall back to the cookie schema, no metrics,
// the wall clock and sequential disclosure checks.
type Options struct {
	VendorList     config.VendorList
	Version        *int
	VendorLists    VendorListFetcher
	Disclosures    DisclosureFetcher
	Checker        *DisclosureChecker
	MetricsEngine  metrics.MetricsEngine
	Clock          clock.Clock
	MaxConcurrency int
}

func NewValidator(opt Options) *Validator {
	if opt.Checker == nil {
		opt.Checker = NewDisclosureChecker(CookieSchema)
	}
	if opt.MetricsEngine == nil {
		opt.MetricsEngine = &metricsconfig.NilMetricsEngine{}
	}
	if opt.Clock == nil {
		opt.Clock = clock.New()
	}
	if opt.MaxConcurrency <= 0 {
		opt.MaxConcurrency = 1
	}

	version := cloneInt(opt.Version)
	return &Validator{
		vendorList:     opt.VendorList,
		version:        version,
		vendorLists:    opt.VendorLists,
		disclosures:    opt.Disclosures,
		checker:        opt.Checker,
		metricsEngine:  opt.MetricsEngine,
		clock:          opt.Clock,
		maxConcurrency: opt.MaxConcurrency,
		report: Report{
			Version: cloneInt(version),
			Errors:  []ValidationError{},
		},
	}
}

// NewValidatorFromConfig wires HTTP fetchers to the configured endpoints and limits.
func NewValidatorFromConfig(cfg *config.Configuration, client *http.Client, metricsEngine metrics.MetricsEngine) *Validator {
	timeout := cfg.Validator.RequestTimeout()
	return NewValidator(Options{
		VendorList:     cfg.VendorList,
		Version:        cfg.VendorList.TargetVersion(),
		VendorLists:    NewVendorListFetcher(client, timeout),
		Disclosures:    NewDisclosureFetcher(client, timeout),
		MetricsEngine:  metricsEngine,
		MaxConcurrency: cfg.Validator.MaxConcurrency,
	})
}

// Report returns the result of the latest completed run. Before the first run it only carries the
// requested version.
func (v *Validator) Report() Report {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.report
}

// Validate runs the whole pipeline once and returns the new Report.
//
// Only a failure to retrieve the vendor list makes the report unsuccessful. Disclosure failures are
// collected in Errors, in vendor list order, and never stop the run.
func (v *Validator) Validate(ctx context.Context) Report {
	start := v.clock.Now()
	url := ResolveURL(v.vendorList, v.version)
	glog.Infof("Validating device storage disclosures of vendor list %s", url)

	success := true
	version := cloneInt(v.version)

	fetchStart := v.clock.Now()
	list, err := v.vendorLists.FetchVendorList(ctx, url)
	v.metricsEngine.RecordVendorListFetch(metrics.OutcomeOf(err), v.clock.Since(fetchStart))
	if err != nil {
		glog.Errorf("GET %s failed. No disclosures will be checked: %v", url, err)
		success = false
		list = VendorList{}
	} else {
		version = cloneInt(list.Version)
	}

	disclosing := disclosingVendors(list.Vendors)
	errs := foldResults(v.checkAll(ctx, disclosing))

	lastCheck := v.clock.Now()
	report := Report{
		Version:    version,
		URL:        url,
		Success:    success,
		Errors:     errs,
		LastCheck:  &lastCheck,
		VendorList: list,
	}

	v.metricsEngine.RecordRun(metrics.RunLabels{
		Success:           success,
		DisclosingVendors: len(disclosing),
		Errors:            len(errs),
	}, v.clock.Since(start))
	glog.Infof("Validated %d disclosures of vendor list %s: %d failed", len(disclosing), url, len(errs))

	v.mu.Lock()
	v.report = report
	v.mu.Unlock()

	return report
}

// vendorResult is the outcome of checking one vendor: err is nil when its disclosure conforms.
type vendorResult struct {
	vendor Vendor
	err    error
}

func disclosingVendors(vendors []Vendor) []Vendor {
	disclosing := make([]Vendor, 0, len(vendors))
	for _, vendor := range vendors {
		if vendor.DisclosureURL != nil {
			disclosing = append(disclosing, vendor)
		}
	}
	return disclosing
}

// checkAll runs at most maxConcurrency checks at a time. results[i] always belongs to vendors[i].
func (v *Validator) checkAll(ctx context.Context, vendors []Vendor) []vendorResult {
	results := make([]vendorResult, len(vendors))

	var group errgroup.Group
	group.SetLimit(v.maxConcurrency)
	for i := range vendors {
		i := i
		group.Go(func() error {
			results[i] = vendorResult{
				vendor: vendors[i],
				err:    v.checkVendor(ctx, vendors[i]),
			}
			return nil
		})
	}
	group.Wait()

	return results
}

func (v *Validator) checkVendor(ctx context.Context, vendor Vendor) error {
	start := v.clock.Now()
	url := *vendor.DisclosureURL

	doc, err := v.disclosures.FetchDisclosure(ctx, url)
	if err == nil {
		err = v.checker.Check(doc)
	}

	v.metricsEngine.RecordDisclosureCheck(metrics.OutcomeOf(err), v.clock.Since(start))
	if err != nil {
		glog.Warningf("Disclosure of vendor %s at %s failed: %v", vendor.ID, url, err)
	}
	return err
}

func foldResults(results []vendorResult) []ValidationError {
	errs := make([]ValidationError, 0, len(results))
	for _, result := range results {
		if result.err != nil {
			errs = append(errs, ValidationError{
				Vendor:  result.vendor,
				Message: result.err.Error(),
			})
		}
	}
	return errs
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	clone := *v
	return &clone
}
