package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowlayout/pkg/cache"
	"github.com/matzehuels/flowlayout/pkg/observability"
	"github.com/matzehuels/flowlayout/pkg/scheme"
)

// Cache key types reported to observability hooks.
const (
	keyTypeLayout = "layout"
	keyTypeRender = "render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use it so caching behaves the same everywhere.
//
// The Runner holds no per-run state. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs layout and, when opts.Formats is not empty, render.
func (r *Runner) Execute(ctx context.Context, data []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	layoutStart := time.Now()
	laid, layoutHit, err := r.LayoutWithCacheInfo(ctx, data, opts)
	if err != nil {
		return nil, err
	}
	result := &Result{
		LaidOut:   laid,
		Artifacts: make(map[string][]byte),
	}
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = laid.Layout.NodeCount
	result.Stats.EdgeCount = laid.Layout.EdgeCount
	result.Stats.Placed = len(laid.Layout.Placements)
	result.Stats.Warnings = len(laid.Layout.Warnings)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"source", opts.Source,
		"start", laid.Layout.StartID,
		"placed", result.Stats.Placed,
		"unreached", len(laid.Layout.Unreached),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	if len(opts.Formats) == 0 {
		return result, nil
	}

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, laid, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo lays out data with caching and returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, data []byte, opts Options) (*LaidOut, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.LayoutKey(cache.Hash(data), opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var laid LaidOut
			if err := json.Unmarshal(cached, &laid); err == nil && laid.Layout != nil {
				observability.Cache().OnCacheHit(ctx, keyTypeLayout)
				r.replayWarnings(ctx, &laid, opts)
				return &laid, true, nil
			}
			// Undecodable entries fall through and are overwritten.
		} else if err != nil {
			opts.Logger.Debug("cache read failed", "key", cacheKey, "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeLayout)
	}

	laid, err := ComputeLayout(ctx, data, opts)
	if err != nil {
		return nil, false, err
	}

	if payload, err := json.Marshal(laid); err == nil {
		r.store(ctx, cacheKey, keyTypeLayout, payload, opts)
	}
	return laid, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, data []byte, opts Options) (*LaidOut, error) {
	laid, _, err := r.LayoutWithCacheInfo(ctx, data, opts)
	return laid, err
}

// RenderWithCacheInfo renders laid in every requested format with caching.
// The hit flag is true only when all formats came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, laid *LaidOut, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.RenderKey(laid.DocHash, opts.RenderKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, keyTypeRender)
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, keyTypeRender)
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	doc, err := laid.Document()
	if err != nil {
		return nil, false, fmt.Errorf("decode laid-out document: %w", err)
	}
	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := RenderFormats(ctx, doc, renderOpts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		artifacts[format] = data
		r.store(ctx, r.Keyer.RenderKey(laid.DocHash, opts.RenderKeyOpts(format)), keyTypeRender, data, opts)
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, laid *LaidOut, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, laid, opts)
	return artifacts, err
}

// RepositionFile lays out the document at in and writes it to out.
// An empty out means the sibling file named by [scheme.OutputPath].
// Nothing is written when the layout fails.
func (r *Runner) RepositionFile(ctx context.Context, in, out string, opts Options) (*Result, error) {
	data, err := scheme.ReadSource(in)
	if err != nil {
		return nil, err
	}
	if opts.Source == "" {
		opts.Source = in
	}
	result, err := r.Execute(ctx, data, opts)
	if err != nil {
		return nil, err
	}
	if out == "" {
		out = scheme.OutputPath(in, "")
	}
	if err := scheme.WriteBytes(out, result.Output); err != nil {
		return nil, err
	}
	r.Logger.Debug("wrote repositioned document", "path", out)
	return result, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// store writes a cache entry. Failures are logged and otherwise ignored.
func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, opts Options) {
	if err := r.Cache.Set(ctx, key, data, opts.TTL); err != nil {
		opts.Logger.Debug("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// replayWarnings reports warnings of a cached layout so metrics and logs
// look the same as for a fresh computation.
func (r *Runner) replayWarnings(ctx context.Context, laid *LaidOut, opts Options) {
	for _, w := range laid.Layout.Warnings {
		observability.Layout().OnWarning(ctx, opts.Source, string(w.Code))
		opts.Logger.Warn(w.Message, "code", w.Code, "node", w.NodeID, "source", opts.Source)
	}
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
