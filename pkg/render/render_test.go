package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/scheme"
)

func laidOut(t *testing.T) *scheme.Document {
	t.Helper()
	doc := scheme.NewDocument(
		scheme.NewNode("start", scheme.KindStart, "check"),
		scheme.NewNode("check", scheme.KindCondition, "fail", "work"),
		scheme.NewNode("fail", scheme.KindEnd).WithExtra("error"),
		scheme.NewNode("work", scheme.KindNormal, "done", "ghost"),
		scheme.NewNode("done", scheme.KindEnd),
		scheme.NewNode("island", scheme.KindNormal),
	)
	if _, err := layout.Apply(doc, layout.Options{}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return doc
}

func TestToDOT(t *testing.T) {
	dot, err := ToDOT(laidOut(t), Options{})
	if err != nil {
		t.Fatalf("ToDOT: %v", err)
	}

	wants := []string{
		`"start" [label="start", shape=circle, width=0.7777777777777778, height=0.7777777777777778, pos="600,-100!"]`,
		`"check" [label="check", shape=diamond`,
		`pos="600,-355!"`, // check: top-left (500, 300), 200x110
		`"fail" [label="fail", shape=circle`,
		`fillcolor="#f8d7da"`,
		`"work" [label="work", shape=box`,
		`"check" -> "fail" [style=dashed];`,
		`"check" -> "work";`,
		`"work" -> "done";`,
	}
	for _, want := range wants {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}

	if strings.Contains(dot, "ghost") {
		t.Error("dangling edges should not be drawn")
	}
	if !strings.Contains(dot, `"island" [label="island", shape=box, width=2.7777777777777777, height=1.3888888888888888];`) {
		t.Errorf("unpositioned node should be drawn without pos\n%s", dot)
	}
}

func TestToDOTDetailedAndTitle(t *testing.T) {
	doc, err := scheme.Parse([]byte(`{"scheme": {"nodes": [
		{"id": "s", "obj_type": 1, "title": "Begin", "x": 10, "y": 20}
	]}}`))
	if err != nil {
		t.Fatal(err)
	}
	dot, err := ToDOT(doc, Options{Detailed: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(dot, `label="Begin\nstart\n(10, 20)"`) {
		t.Errorf("unexpected label in\n%s", dot)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"svg", FormatSVG, true},
		{"PNG", FormatPNG, true},
		{".dot", FormatDOT, true},
		{"pdf", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
		if !tt.ok && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ParseFormat(%q) error = %v, want INVALID_FORMAT", tt.in, err)
		}
	}
}

func TestContentType(t *testing.T) {
	if FormatSVG.ContentType() != "image/svg+xml" || FormatPNG.ContentType() != "image/png" || FormatDOT.ContentType() != "text/vnd.graphviz" {
		t.Error("unexpected content types")
	}
}

func TestRenderDOTPassthrough(t *testing.T) {
	out, err := Render(context.Background(), "digraph G {}", FormatDOT)
	if err != nil || string(out) != "digraph G {}" {
		t.Errorf("Render(dot) = %q, %v", out, err)
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering is slow")
	}
	svg, err := RenderDocument(context.Background(), laidOut(t), FormatSVG, Options{})
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte("viewBox=\"0 0 ")) {
		t.Errorf("output does not look like normalized SVG: %.200s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if out != want {
		t.Errorf("normalizeViewBox = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Error("input without viewBox should pass through")
	}
}
