package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/golang/glog"
	"github.com/spf13/viper"

	"github.com/prebid/gvl-validator/config"
	"github.com/prebid/gvl-validator/gvl"
	"github.com/prebid/gvl-validator/router"
	"github.com/prebid/gvl-validator/server"
	"github.com/prebid/gvl-validator/util/task"
)

// Rev holds binary revision string
// Set manually at build time using:
//
//	go build -ldflags "-X main.Rev=`git rev-parse --short HEAD` -X main.Version=`git describe --tags`"
var (
	Rev     string
	Version string
)

func main() {
	flag.Parse() // required for glog flags and testing package flags

	cfg, err := loadConfig()
	if err != nil {
		glog.Exitf("Configuration could not be loaded or did not pass validation: %v", err)
	}

	err = serve(Version, Rev, cfg)
	if err != nil {
		glog.Exitf("gvl-validator failed: %v", err)
	}
}

const configFileName = "gvl"

func loadConfig() (*config.Configuration, error) {
	v := viper.New()
	config.SetupViper(v, configFileName)
	return config.New(v)
}

func serve(version, revision string, cfg *config.Configuration) error {
	r := router.New(cfg, version, revision)
	run := newValidationRun(r.Validator, gvl.NewReportSink(cfg.Report.OutputPath))

	if cfg.Schedule.Interval() == 0 {
		return run()
	}

	validationTask := task.NewTickerTaskFromFunc("validation", cfg.Schedule.Interval(), run)
	go validationTask.Start()
	defer validationTask.Stop()

	return server.Listen(cfg, router.SupportCORS(router.NoCache{Handler: r}), r.MetricsEngine)
}

// newValidationRun validates the vendor list once and hands the report to sink.
func newValidationRun(validator *gvl.Validator, sink gvl.ReportSink) func() error {
	return func() error {
		report := validator.Validate(context.Background())
		if err := sink.Write(report); err != nil {
			return fmt.Errorf("report of %s could not be written: %v", report.URL, err)
		}
		return nil
	}
}
