package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/spf13/viper"
	"github.com/xorcare/pointer"

	"github.com/prebid/gvl-validator/errortypes"
)

// Configuration specifies the static application config.
type Configuration struct {
	Host       string `mapstructure:"host"`
	AdminPort  int    `mapstructure:"admin_port"`
	EnableGzip bool   `mapstructure:"enable_gzip"`
	// StatusResponse is the body of GET /status. An empty value makes the endpoint return 204.
	StatusResponse string     `mapstructure:"status_response"`
	VendorList     VendorList `mapstructure:"vendor_list"`
	Validator      Validator  `mapstructure:"validator"`
	Schedule       Schedule   `mapstructure:"schedule"`
	Report         Report     `mapstructure:"report"`
	Metrics        Metrics    `mapstructure:"metrics"`
}

// VendorList configures where the Global Vendor List is fetched from.
type VendorList struct {
	LatestURL string `mapstructure:"latest_url"`

	// ArchiveURL is a format string with a single %d verb for the list version.
	ArchiveURL string `mapstructure:"archive_url"`

	// Version pins an archived list. 0 means the latest list.
	Version int `mapstructure:"version"`
}

// TargetVersion returns the pinned vendor list version, or nil for the latest list.
func (cfg VendorList) TargetVersion() *int {
	if cfg.Version <= 0 {
		return nil
	}
	return pointer.Int(cfg.Version)
}

func (cfg VendorList) validate(errs []error) []error {
	if !govalidator.IsRequestURL(cfg.LatestURL) {
		errs = append(errs, fmt.Errorf("vendor_list.latest_url must be an absolute URL. Got %q", cfg.LatestURL))
	}
	if strings.Count(cfg.ArchiveURL, "%d") != 1 {
		errs = append(errs, fmt.Errorf("vendor_list.archive_url must contain exactly one %%d placeholder. Got %q", cfg.ArchiveURL))
	} else if !govalidator.IsRequestURL(fmt.Sprintf(cfg.ArchiveURL, 1)) {
		errs = append(errs, fmt.Errorf("vendor_list.archive_url must be an absolute URL. Got %q", cfg.ArchiveURL))
	}
	if cfg.Version < 0 {
		errs = append(errs, fmt.Errorf("vendor_list.version must be >= 0. Got %d", cfg.Version))
	}
	return errs
}

// Validator tunes the disclosure checks.
type Validator struct {
	RequestTimeoutMS int `mapstructure:"request_timeout_ms"`
	MaxConcurrency   int `mapstructure:"max_concurrency"`
}

// RequestTimeout bounds every single HTTP request made during a run.
func (cfg Validator) RequestTimeout() time.Duration {
	return time.Duration(cfg.RequestTimeoutMS) * time.Millisecond
}

func (cfg Validator) validate(errs []error) []error {
	if cfg.RequestTimeoutMS <= 0 {
		errs = append(errs, fmt.Errorf("validator.request_timeout_ms must be positive. Got %d", cfg.RequestTimeoutMS))
	}
	if cfg.MaxConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("validator.max_concurrency must be positive. Got %d", cfg.MaxConcurrency))
	}
	return errs
}

// Schedule controls periodic validation runs.
type Schedule struct {
	// IntervalSeconds of 0 runs the validator once and exits.
	IntervalSeconds int `mapstructure:"interval_seconds"`
}

func (cfg Schedule) Interval() time.Duration {
	return time.Duration(cfg.IntervalSeconds) * time.Second
}

func (cfg Schedule) validate(errs []error) []error {
	if cfg.IntervalSeconds < 0 {
		errs = append(errs, fmt.Errorf("schedule.interval_seconds must be >= 0. Got %d", cfg.IntervalSeconds))
	}
	return errs
}

// Report configures where each finished report is written.
type Report struct {
	// OutputPath is a file which gets replaced after every run. Empty means stdout.
	OutputPath string `mapstructure:"output_path"`
}

type Metrics struct {
	Influxdb   InfluxMetrics     `mapstructure:"influxdb"`
	Prometheus PrometheusMetrics `mapstructure:"prometheus"`
}

type InfluxMetrics struct {
	Host               string `mapstructure:"host"`
	Database           string `mapstructure:"database"`
	Measurement        string `mapstructure:"measurement"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	AlignTimestamps    bool   `mapstructure:"align_timestamps"`
	MetricSendInterval int    `mapstructure:"metric_send_interval"`
}

func (cfg InfluxMetrics) validate(errs []error) []error {
	if cfg.Host != "" && cfg.MetricSendInterval <= 0 {
		errs = append(errs, fmt.Errorf("metrics.influxdb.metric_send_interval must be positive when metrics.influxdb.host is set. Got %d", cfg.MetricSendInterval))
	}
	return errs
}

type PrometheusMetrics struct {
	Port             int    `mapstructure:"port"`
	Namespace        string `mapstructure:"namespace"`
	Subsystem        string `mapstructure:"subsystem"`
	TimeoutMillisRaw int    `mapstructure:"timeout_ms"`
}

func (cfg PrometheusMetrics) validate(errs []error) []error {
	if cfg.Port > 0 && cfg.TimeoutMillisRaw <= 0 {
		errs = append(errs, fmt.Errorf("metrics.prometheus.timeout_ms must be positive if metrics.prometheus.port is defined. Got timeout=%d and port=%d", cfg.TimeoutMillisRaw, cfg.Port))
	}
	return errs
}

func (cfg PrometheusMetrics) Timeout() time.Duration {
	return time.Duration(cfg.TimeoutMillisRaw) * time.Millisecond
}

func (cfg *Configuration) validate() []error {
	var errs []error
	if cfg.AdminPort <= 0 {
		errs = append(errs, errors.New("admin_port must be positive"))
	}
	errs = cfg.VendorList.validate(errs)
	errs = cfg.Validator.validate(errs)
	errs = cfg.Schedule.validate(errs)
	errs = cfg.Metrics.Influxdb.validate(errs)
	errs = cfg.Metrics.Prometheus.validate(errs)
	return errs
}

// New uses viper to get our server configurations.
func New(v *viper.Viper) (*Configuration, error) {
	var c Configuration
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("viper failed to unmarshal app config: %v", err)
	}

	if errs := c.validate(); len(errs) > 0 {
		return &c, errortypes.NewAggregateErrors("validation errors", errs)
	}

	return &c, nil
}

// SetupViper sets the default values and the config file lookup. filename is the config file name
// without its extension.
func SetupViper(v *viper.Viper, filename string) {
	if filename != "" {
		v.SetConfigName(filename)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/config")
	}

	v.SetDefault("host", "")
	v.SetDefault("admin_port", 6060)
	v.SetDefault("enable_gzip", false)
	v.SetDefault("status_response", "ok")
	v.SetDefault("vendor_list.latest_url", "https://vendor-list.consensu.org/v2/vendor-list.json")
	v.SetDefault("vendor_list.archive_url", "https://vendor-list.consensu.org/v2/archives/vendor-list-v%d.json")
	v.SetDefault("vendor_list.version", 0)
	v.SetDefault("validator.request_timeout_ms", 10000)
	v.SetDefault("validator.max_concurrency", 8)
	v.SetDefault("schedule.interval_seconds", 86400)
	v.SetDefault("report.output_path", "")
	v.SetDefault("metrics.influxdb.host", "")
	v.SetDefault("metrics.influxdb.database", "")
	v.SetDefault("metrics.influxdb.measurement", "")
	v.SetDefault("metrics.influxdb.username", "")
	v.SetDefault("metrics.influxdb.password", "")
	v.SetDefault("metrics.influxdb.align_timestamps", false)
	v.SetDefault("metrics.influxdb.metric_send_interval", 20)
	v.SetDefault("metrics.prometheus.port", 0)
	v.SetDefault("metrics.prometheus.namespace", "gvl")
	v.SetDefault("metrics.prometheus.subsystem", "validator")
	v.SetDefault("metrics.prometheus.timeout_ms", 10000)

	// Environment overrides, e.g. GVL_VENDOR_LIST_VERSION=42
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("GVL")
	v.AutomaticEnv()
	v.ReadInConfig()
}
