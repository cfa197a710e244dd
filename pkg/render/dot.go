package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/scheme"
)

// pointsPerInch converts pixel footprints into Graphviz sizes.
const pointsPerInch = 72.0

// Options configures DOT generation.
type Options struct {
	// Config supplies the shape footprints. The zero value uses
	// [layout.DefaultConfig].
	Config layout.Config

	// Detailed adds the node kind and position to each label.
	Detailed bool
}

// ToDOT converts doc to Graphviz DOT source.
func ToDOT(doc *scheme.Document, opts Options) (string, error) {
	cfg := opts.Config
	if cfg == (layout.Config{}) {
		cfg = layout.DefaultConfig()
	}
	ix, _, err := layout.BuildIndex(doc.Nodes)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  node [style=filled, fillcolor=white, fontsize=14, fixedsize=true];\n")
	buf.WriteString("  edge [arrowsize=0.8];\n")
	buf.WriteString("\n")

	seen := make(map[string]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		attrs := nodeAttrs(n, cfg, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range doc.Nodes {
		src, _ := ix.Node(n.ID)
		if src != n {
			continue
		}
		flow, _ := layout.Classify(src, ix)
		for _, to := range flow.Main {
			fmt.Fprintf(&buf, "  %q -> %q;\n", n.ID, to)
		}
		for _, to := range flow.Branch {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", n.ID, to)
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func nodeAttrs(n *scheme.Node, cfg layout.Config, detailed bool) []string {
	var (
		w, h  float64
		shape string
	)
	switch n.Kind {
	case scheme.KindStart, scheme.KindEnd:
		w, h, shape = cfg.CenterPivotFootprint, cfg.CenterPivotFootprint, "circle"
	case scheme.KindCondition:
		w, h, shape = cfg.ConditionFootprint, cfg.ConditionHeight, "diamond"
	default:
		w, h, shape = cfg.StandardFootprint, cfg.StandardHeight, "box"
	}

	attrs := []string{
		fmt.Sprintf("label=%q", label(n, detailed)),
		"shape=" + shape,
		"width=" + fmtFloat(w/pointsPerInch),
		"height=" + fmtFloat(h/pointsPerInch),
	}
	if n.ErrorTerminal() {
		attrs = append(attrs, "fillcolor=\"#f8d7da\"", "color=\"#a12622\"")
	}
	if x, y, ok := n.Position(); ok {
		cx, cy := x, y
		if !n.Kind.CenterPivot() {
			cx, cy = x+w/2, y+h/2
		}
		attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(cx), fmtFloat(-cy)))
	}
	return attrs
}

func label(n *scheme.Node, detailed bool) string {
	text := n.ID
	if title, ok := n.Field("title"); ok {
		if s, isString := title.(string); isString && s != "" {
			text = s
		}
	}
	if !detailed {
		return text
	}
	text += "\n" + n.Kind.String()
	if x, y, ok := n.Position(); ok {
		text += fmt.Sprintf("\n(%s, %s)", fmtFloat(x), fmtFloat(y))
	}
	return text
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
