// Package api configures and exposes the HTTP server: the extraction form and
// endpoints, metrics, API docs, profiling and the shared middlewares.
package api

import (
	_ "embed"
	"mapslinks/internal/api/handler/webhandler"
	"mapslinks/internal/config"
	"mapslinks/pkg/controller"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
)

// v1Spec contains the embedded OpenAPI document.
//
//go:embed specs/v1.yaml
var v1Spec []byte

// timeoutBody is served by http.TimeoutHandler once RequestTimeout elapses.
const timeoutBody = `{"code":"TIMEOUT","message":"request timed out"}`

// Options holds configuration for the HTTP server and its handlers.
// Zero durations fall back to net/http defaults.
type Options struct {
	Handler webhandler.Options

	// Addr is the TCP address the server listens on, e.g. "0.0.0.0:8080".
	Addr string
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// RequestTimeout bounds request handling via http.TimeoutHandler; zero disables it.
	RequestTimeout time.Duration
	// MaxHeaderBytes limits the size of request headers.
	MaxHeaderBytes int
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
	// Gatherer serves MetricsPath; nil means prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// NewOptions constructs an Options value from the provided application configuration.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Handler: webhandler.NewOptions(cfg),

		Addr:              cfg.Addr(),
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
	}
}

type Deps struct {
	webhandler.Deps
}

// NewHandler builds the routed and wrapped handler served by NewServer.
func NewHandler(deps Deps, opts Options) http.Handler {
	mux := http.NewServeMux()

	h := webhandler.New(deps.Deps, opts.Handler)
	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("POST /extract", h.Extract)
	mux.HandleFunc("POST /download", h.Download)

	// metrics
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if opts.MetricsPath != "" {
		mux.Handle("GET "+opts.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// docs
	mux.HandleFunc("GET /specs/v1.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(v1Spec)
	})
	mux.Handle("GET /docs/", v5emb.New("Maps Link Extractor", "/specs/v1.yaml", "/docs/"))

	// pprof
	mux.Handle("/debug/pprof/", controller.PprofMux("/debug/pprof/"))

	var handler http.Handler = mux
	if opts.RequestTimeout > 0 {
		handler = http.TimeoutHandler(handler, opts.RequestTimeout, timeoutBody)
	}
	handler = controller.WithRecovery(handler)
	handler = controller.WithCORS(handler)

	return controller.WithLogger(handler)
}

// NewServer wires up and returns a configured *http.Server.
func NewServer(deps Deps, opts Options) *http.Server {
	return &http.Server{
		Addr:              opts.Addr,
		Handler:           NewHandler(deps, opts),
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
	}
}
