// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	POST /v1/layout          lay out the JSON document in the body
//	POST /v1/render          lay out and draw it (?format=svg|png|dot)
//	GET  /v1/runs            recent runs, newest first (?limit=)
//	GET  /v1/runs/{id}       one run
//	GET  /healthz            liveness and build info
//	GET  /metrics            Prometheus metrics
//
// Layout and render accept the query parameters first_start, refresh and
// detailed (render only) as booleans. Every layout attempt, failed or not,
// is recorded in the run history.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/flowlayout/pkg/httputil"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/observability"
	"github.com/matzehuels/flowlayout/pkg/pipeline"
	"github.com/matzehuels/flowlayout/pkg/store"
)

// Defaults for [Options].
const (
	DefaultMaxBodyBytes = 8 << 20
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 60 * time.Second
	shutdownTimeout     = 10 * time.Second
)

// Options configures a [Server].
type Options struct {
	// Config and FirstStart are the layout defaults for every request.
	Config     layout.Config
	FirstStart bool

	MaxBodyBytes int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Gatherer serves /metrics. Nil uses the default Prometheus registry.
	Gatherer prometheus.Gatherer

	// Logger receives request logs. Nil discards them.
	Logger *log.Logger
}

// Server is the HTTP front end of a [pipeline.Runner].
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	opts   Options
	logger *log.Logger
	router chi.Router
}

// New creates a server. st may be nil, in which case an in-memory history
// is used.
func New(runner *pipeline.Runner, st store.Store, opts Options) *Server {
	if st == nil {
		st = store.NewMemoryStore(0)
	}
	if opts.Config == (layout.Config{}) {
		opts.Config = layout.DefaultConfig()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	s := &Server{
		runner: runner,
		store:  st,
		opts:   opts,
		logger: opts.Logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(httputil.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})
	return r
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// instrument reports each request to the HTTP hooks and the logger, using
// the matched route pattern as the label.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", d,
			"request_id", httputil.RequestIDFrom(r.Context()))
	})
}
