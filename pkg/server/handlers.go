package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/flowlayout/pkg/buildinfo"
	"github.com/matzehuels/flowlayout/pkg/cache"
	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/httputil"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/pipeline"
	"github.com/matzehuels/flowlayout/pkg/render"
	"github.com/matzehuels/flowlayout/pkg/store"
)

// sourceHTTP names request bodies in metrics and run history.
const sourceHTTP = "http"

// LayoutResponse is the body of a successful POST /v1/layout.
type LayoutResponse struct {
	RunID    string          `json:"run_id"`
	Cached   bool            `json:"cached"`
	Document json.RawMessage `json:"document"`
	Layout   *layout.Result  `json:"layout"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	data, err := httputil.ReadBody(w, r, s.opts.MaxBodyBytes)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), data, opts)
	run := s.record(r.Context(), data, res, err)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	w.Header().Set("X-Cache", cacheHeader(res.CacheInfo.LayoutHit))
	httputil.WriteJSON(w, http.StatusOK, LayoutResponse{
		RunID:    run.ID,
		Cached:   res.CacheInfo.LayoutHit,
		Document: res.Output,
		Layout:   res.Layout,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "svg"
	}
	f, err := render.ParseFormat(format)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	opts.Formats = []string{string(f)}
	data, err := httputil.ReadBody(w, r, s.opts.MaxBodyBytes)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), data, opts)
	s.record(r.Context(), data, res, err)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("X-Cache", cacheHeader(res.CacheInfo.RenderHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[string(f)])
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			httputil.WriteError(w, r, errors.New(errors.ErrCodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if stderrors.Is(err, store.ErrNotFound) {
		httputil.WriteError(w, r, errors.Wrap(errors.ErrCodeInputNotFound, err, "run not found"))
		return
	}
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, run)
}

// options builds pipeline options from the server defaults and the query.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Source:     sourceHTTP,
		Config:     s.opts.Config,
		FirstStart: s.opts.FirstStart,
		Logger:     s.logger.With("request_id", httputil.RequestIDFrom(r.Context())),
	}
	for name, dst := range map[string]*bool{
		"first_start": &opts.FirstStart,
		"refresh":     &opts.Refresh,
		"detailed":    &opts.Detailed,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a boolean, got %q", name, v)
		}
		*dst = b
	}
	return opts, nil
}

// record stores the outcome of a layout. History failures are logged, never
// returned to the client.
func (s *Server) record(ctx context.Context, data []byte, res *pipeline.Result, err error) *store.Run {
	var run *store.Run
	if res != nil {
		run = store.NewRun(sourceHTTP, res.DocHash, res.Layout, nil)
		run.Cached = res.CacheInfo.LayoutHit
	} else {
		run = store.NewRun(sourceHTTP, cache.Hash(data), nil, err)
	}

	// Recorded even when the client has gone away.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if rerr := s.store.Record(recordCtx, run); rerr != nil {
		s.logger.Warn("record run failed", "err", rerr, "run", run.ID)
	}
	return run
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
