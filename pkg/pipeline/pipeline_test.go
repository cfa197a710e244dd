package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/flowlayout/pkg/cache"
	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/observability"
	"github.com/matzehuels/flowlayout/pkg/scheme"
)

const process = `{
  "title": "Refund",
  "scheme": {"nodes": [
    {"id": "s", "obj_type": 1, "condition": {"logics": [{"type": "go", "to_node_id": "a"}]}},
    {"id": "a", "obj_type": 0, "condition": {"logics": [
      {"type": "go_if_const", "to_node_id": "fail"},
      {"type": "go", "to_node_id": "b"}
    ]}},
    {"id": "fail", "obj_type": 2, "extra": "{\"icon\":\"error\"}"},
    {"id": "b", "obj_type": 3, "condition": {"logics": [
      {"type": "go", "to_node_id": "done"},
      {"type": "go", "to_node_id": "ghost"}
    ]}},
    {"id": "done", "obj_type": 2}
  ]}
}`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"dot", false},
		{"SVG", false}, // case-insensitive
		{"pdf", true},
		{"json", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Invalid format error = %v, want INVALID_FORMAT", err)
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(layout.DefaultConfig()); err != nil {
		t.Errorf("default config should pass: %v", err)
	}

	bad := layout.DefaultConfig()
	bad.VerticalSpacing = 0
	bad.CenterOffset = -1
	err := ValidateConfig(bad)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("error = %v, want INVALID_CONFIG", err)
	}
	msg := err.Error()
	for _, want := range []string{"VerticalSpacing", "CenterOffset"} {
		if !bytes.Contains([]byte(msg), []byte(want)) {
			t.Errorf("error %q should name %s", msg, want)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Formats: []string{"SVG", ".dot"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}

	if opts.Config != layout.DefaultConfig() {
		t.Errorf("Config = %+v, want defaults", opts.Config)
	}
	if opts.Source != DefaultSource {
		t.Errorf("Source = %q", opts.Source)
	}
	if opts.TTL != cache.DefaultTTL {
		t.Errorf("TTL = %v", opts.TTL)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
	if opts.Formats[0] != "svg" || opts.Formats[1] != "dot" {
		t.Errorf("Formats = %v, want normalized names", opts.Formats)
	}
}

func TestOptionsValidateForRender(t *testing.T) {
	formats := []string{"PNG"}
	opts := Options{Formats: formats}
	if err := opts.ValidateForRender(); err != nil {
		t.Fatal(err)
	}
	if formats[0] != "PNG" {
		t.Error("ValidateForRender should not modify the caller's slice")
	}

	opts = Options{Formats: []string{"gif"}}
	if err := opts.ValidateForRender(); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestKeyOpts(t *testing.T) {
	opts := Options{FirstStart: true, Detailed: true}
	opts.SetLayoutDefaults()

	lk := opts.LayoutKeyOpts()
	if !lk.FirstStart || lk.Config != layout.DefaultConfig() {
		t.Errorf("LayoutKeyOpts = %+v", lk)
	}
	rk := opts.RenderKeyOpts("svg")
	if rk.Format != "svg" || !rk.Detailed || rk.LayoutKeyOpts != lk {
		t.Errorf("RenderKeyOpts = %+v", rk)
	}
}

func position(t *testing.T, out []byte, id string) (float64, float64) {
	t.Helper()
	doc, err := scheme.Parse(out)
	if err != nil {
		t.Fatalf("output does not parse: %v", err)
	}
	for _, n := range doc.Nodes {
		if n.ID == id {
			x, y, ok := n.Position()
			if !ok {
				t.Fatalf("node %s has no position", id)
			}
			return x, y
		}
	}
	t.Fatalf("node %s missing from output", id)
	return 0, 0
}

func TestExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	res, err := runner.Execute(context.Background(), []byte(process), Options{Source: "refund.json"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := map[string][2]float64{
		"s":    {600, 100},
		"a":    {500, 300},
		"fail": {900, 300},
		"b":    {500, 500},
		"done": {600, 700},
	}
	for id, p := range want {
		x, y := position(t, res.Output, id)
		if x != p[0] || y != p[1] {
			t.Errorf("%s at (%v, %v), want (%v, %v)", id, x, y, p[0], p[1])
		}
	}

	if res.Stats.NodeCount != 5 || res.Stats.Placed != 5 || res.Stats.Warnings != 1 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if res.DocHash != cache.Hash([]byte(process)) {
		t.Error("DocHash should hash the input bytes")
	}
	if len(res.Artifacts) != 0 {
		t.Errorf("no formats requested, got %d artifacts", len(res.Artifacts))
	}
	if !bytes.Contains(res.Output, []byte(`"title": "Refund"`)) {
		t.Error("top-level fields should be preserved")
	}
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		opts Options
		code errors.Code
	}{
		{"malformed json", `{"scheme":`, Options{}, errors.ErrCodeMalformedSchema},
		{"missing nodes", `{"scheme": {}}`, Options{}, errors.ErrCodeMalformedSchema},
		{"no start", `{"scheme": {"nodes": [{"id": "a", "obj_type": 3}]}}`, Options{}, errors.ErrCodeNoStartNode},
		{"bad format", process, Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"bad config", process, Options{Config: layout.Config{BaseX: 1}}, errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(nil, nil, nil).Execute(context.Background(), []byte(tt.data), tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExecuteUsesCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()
	ctx := context.Background()

	first, err := runner.Execute(ctx, []byte(process), Options{Formats: []string{"dot"}})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", first.CacheInfo)
	}

	second, err := runner.Execute(ctx, []byte(process), Options{Formats: []string{"dot"}})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Output, second.Output) || !bytes.Equal(first.Artifacts["dot"], second.Artifacts["dot"]) {
		t.Error("cached results should match computed ones")
	}
	if len(second.Layout.Placements) != 5 || second.Layout.Placements[0].Kind != scheme.KindStart {
		t.Errorf("cached layout report not restored: %+v", second.Layout)
	}

	refreshed, err := runner.Execute(ctx, []byte(process), Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.LayoutHit {
		t.Error("Refresh should bypass the cache")
	}

	other := layout.DefaultConfig()
	other.BaseX = 0
	moved, err := runner.Execute(ctx, []byte(process), Options{Config: other})
	if err != nil {
		t.Fatal(err)
	}
	if moved.CacheInfo.LayoutHit {
		t.Error("a different config must not reuse the cached layout")
	}
	if x, _ := position(t, moved.Output, "a"); x != 0 {
		t.Errorf("a.x = %v, want 0", x)
	}
}

func TestRenderDOT(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	ctx := context.Background()
	laid, err := runner.Layout(ctx, []byte(process), Options{})
	if err != nil {
		t.Fatal(err)
	}
	artifacts, err := runner.Render(ctx, laid, Options{Formats: []string{"dot"}, Detailed: true})
	if err != nil {
		t.Fatal(err)
	}
	dot := artifacts["dot"]
	if !bytes.HasPrefix(dot, []byte("digraph G {")) {
		t.Fatalf("unexpected DOT: %s", dot)
	}
	if !bytes.Contains(dot, []byte(`"a" -> "fail" [style=dashed];`)) {
		t.Errorf("branch edge missing: %s", dot)
	}
}

func TestLayoutReportsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	observability.SetLayoutHooks(m)
	observability.SetCacheHooks(m)
	t.Cleanup(observability.Reset)

	c, _ := cache.NewFileCache(t.TempDir())
	runner := NewRunner(c, nil, nil)
	ctx := context.Background()
	for range 2 {
		if _, err := runner.Layout(ctx, []byte(process), Options{}); err != nil {
			t.Fatal(err)
		}
	}
	_, _ = runner.Layout(ctx, []byte(`{}`), Options{})

	if got := testutil.ToFloat64(m.LayoutsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("successful layouts = %v, want 1 (second run is cached)", got)
	}
	if got := testutil.ToFloat64(m.LayoutsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("failed layouts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.WarningsTotal.WithLabelValues(string(errors.ErrCodeDanglingEdge))); got != 2 {
		t.Errorf("dangling warnings = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CacheOpsTotal.WithLabelValues("layout", "hit")); got != 1 {
		t.Errorf("layout cache hits = %v, want 1", got)
	}
}

func TestRepositionFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "refund.json")
	if err := os.WriteFile(in, []byte(process), 0644); err != nil {
		t.Fatal(err)
	}

	runner := NewRunner(nil, nil, nil)
	res, err := runner.RepositionFile(context.Background(), in, "", Options{})
	if err != nil {
		t.Fatalf("RepositionFile: %v", err)
	}
	out := filepath.Join(dir, "refund.repositioned.json")
	written, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !bytes.Equal(written, res.Output) {
		t.Error("file contents should equal Result.Output")
	}
	original, _ := os.ReadFile(in)
	if string(original) != process {
		t.Error("input file must not change")
	}
}

func TestRepositionFileErrors(t *testing.T) {
	dir := t.TempDir()
	runner := NewRunner(nil, nil, nil)

	_, err := runner.RepositionFile(context.Background(), filepath.Join(dir, "missing.json"), "", Options{})
	if !errors.Is(err, errors.ErrCodeInputNotFound) {
		t.Errorf("error = %v, want INPUT_NOT_FOUND", err)
	}

	in := filepath.Join(dir, "nostart.json")
	os.WriteFile(in, []byte(`{"scheme": {"nodes": [{"id": "a", "obj_type": 3}]}}`), 0644)
	out := filepath.Join(dir, "out.json")
	if _, err := runner.RepositionFile(context.Background(), in, out, Options{}); !errors.Is(err, errors.ErrCodeNoStartNode) {
		t.Errorf("error = %v, want NO_START_NODE", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("no output should be written when layout fails")
	}
}
