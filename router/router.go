package router

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"github.com/prebid/gvl-validator/config"
	"github.com/prebid/gvl-validator/endpoints"
	"github.com/prebid/gvl-validator/gvl"
	metricsConf "github.com/prebid/gvl-validator/metrics/config"
)

// Router serves the admin endpoints of one validator.
type Router struct {
	*httprouter.Router
	MetricsEngine *metricsConf.DetailedMetricsEngine
	Validator     *gvl.Validator
}

// New builds the metrics engine and the validator from cfg and registers
// the /report, /status and /version endpoints.
func New(cfg *config.Configuration, version, revision string) *Router {
	r := &Router{
		Router:        httprouter.New(),
		MetricsEngine: metricsConf.NewMetricsEngine(cfg),
	}

	client := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConnsPerHost: cfg.Validator.MaxConcurrency,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	r.Validator = gvl.NewValidatorFromConfig(cfg, client, r.MetricsEngine)

	r.GET("/report", endpoints.NewReportEndpoint(r.Validator))
	r.GET("/status", endpoints.NewStatusEndpoint(cfg.StatusResponse))
	r.GET("/version", endpoints.NewVersionEndpoint(version, revision))

	return r
}

type NoCache struct {
	Handler http.Handler
}

func (m NoCache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Add("Pragma", "no-cache")
	w.Header().Add("Expires", "0")
	m.Handler.ServeHTTP(w, r)
}

// SupportCORS lets dashboards on any origin read the report.
func SupportCORS(handler http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
		AllowOriginFunc: func(string) bool {
			return true
		},
		AllowedHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept"}})
	return c.Handler(handler)
}
