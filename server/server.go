package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/golang/glog"

	"github.com/prebid/gvl-validator/config"
	metricsconfig "github.com/prebid/gvl-validator/metrics/config"
)

// Listen serves the admin endpoints, and Prometheus metrics if configured, until the process
// receives SIGTERM or SIGINT. Both servers are shut down gracefully before it returns.
func Listen(cfg *config.Configuration, adminHandler http.Handler, metrics *metricsconfig.DetailedMetricsEngine) error {
	stopSignals := make(chan os.Signal, 1)
	signal.Notify(stopSignals, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(stopSignals)

	// Fan any process-stopper signals out to each server for graceful shutdowns.
	stopAdmin := make(chan os.Signal)
	stopPrometheus := make(chan os.Signal)
	done := make(chan struct{})

	adminServer := newAdminServer(cfg, adminHandler)
	adminListener, err := newListener(adminServer.Addr)
	if err != nil {
		return fmt.Errorf("admin server: %v", err)
	}
	go shutdownAfterSignals(adminServer, stopAdmin, done)
	go runServer(adminServer, "Admin", adminListener)

	if cfg.Metrics.Prometheus.Port == 0 {
		wait(stopSignals, done, stopAdmin)
		return nil
	}

	prometheusServer := newPrometheusServer(cfg, metrics)
	prometheusListener, err := newListener(prometheusServer.Addr)
	if err != nil {
		stopAdmin <- syscall.SIGTERM
		<-done
		return fmt.Errorf("prometheus server: %v", err)
	}
	go shutdownAfterSignals(prometheusServer, stopPrometheus, done)
	go runServer(prometheusServer, "Prometheus", prometheusListener)

	wait(stopSignals, done, stopAdmin, stopPrometheus)
	return nil
}

func newAdminServer(cfg *config.Configuration, handler http.Handler) *http.Server {
	var serverHandler = handler
	if cfg.EnableGzip {
		serverHandler = gziphandler.GzipHandler(handler)
	}

	return &http.Server{
		Addr:         cfg.Host + ":" + strconv.Itoa(cfg.AdminPort),
		Handler:      serverHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

func runServer(server *http.Server, name string, listener net.Listener) {
	glog.Infof("%s server starting on: %s", name, server.Addr)
	err := server.Serve(listener)
	if err != http.ErrServerClosed {
		glog.Errorf("%s server quit with error: %v", name, err)
	}
}

func newListener(address string) (net.Listener, error) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("Error listening for TCP connections on %s: %v", address, err)
	}
	return ln, nil
}

func wait(inbound <-chan os.Signal, done <-chan struct{}, outbound ...chan<- os.Signal) {
	sig := <-inbound

	for i := 0; i < len(outbound); i++ {
		go sendSignal(outbound[i], sig)
	}

	for i := 0; i < len(outbound); i++ {
		<-done
	}
}

func shutdownAfterSignals(server *http.Server, stopper <-chan os.Signal, done chan<- struct{}) {
	sig := <-stopper

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var s struct{}
	glog.Infof("Stopping %s because of signal: %s", server.Addr, sig.String())
	if err := server.Shutdown(ctx); err != nil {
		glog.Errorf("Failed to shutdown %s: %v", server.Addr, err)
	}
	done <- s
}

func sendSignal(to chan<- os.Signal, sig os.Signal) {
	to <- sig
}
