package layout

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/scheme"
)

// Options configures [Plan] and [Apply].
type Options struct {
	// Config holds the spacing constants. The zero value is replaced by
	// [DefaultConfig].
	Config Config

	// FirstStart picks the first start node in document order when several
	// exist. By default more than one start node is an error.
	FirstStart bool

	// Logger receives debug traces and dangling-edge warnings.
	// Nil discards output.
	Logger *log.Logger
}

// Placement is one node's computed position.
type Placement struct {
	ID    string      `json:"id" bson:"id"`
	Kind  scheme.Kind `json:"kind" bson:"kind"`
	Cell  Cell        `json:"cell" bson:"cell"`
	Point Point       `json:"point" bson:"point"`
	Role  Role        `json:"role" bson:"role"`
	// Parent is the node whose edge first reached this one; empty for start.
	Parent string `json:"parent,omitempty" bson:"parent,omitempty"`
}

// Result describes a layout. It is computed before the document is mutated.
type Result struct {
	StartID    string           `json:"start_id" bson:"start_id"`
	Placements []Placement      `json:"placements" bson:"placements"` // Visit order
	Unreached  []string         `json:"unreached,omitempty" bson:"unreached,omitempty"`
	Warnings   []errors.Warning `json:"warnings,omitempty" bson:"warnings,omitempty"`
	NodeCount  int              `json:"node_count" bson:"node_count"`
	EdgeCount  int              `json:"edge_count" bson:"edge_count"`
	Duration   time.Duration    `json:"duration" bson:"duration"`
}

// Cells returns the grid cell of every placed node.
func (r *Result) Cells() map[string]Cell {
	cells := make(map[string]Cell, len(r.Placements))
	for _, p := range r.Placements {
		cells[p.ID] = p.Cell
	}
	return cells
}

// Placement returns the placement of id.
func (r *Result) Placement(id string) (Placement, bool) {
	for _, p := range r.Placements {
		if p.ID == id {
			return p, true
		}
	}
	return Placement{}, false
}

func (o *Options) setDefaults() {
	if o.Config == (Config{}) {
		o.Config = DefaultConfig()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Plan computes the layout of doc without modifying it.
//
// It fails with MALFORMED_SCHEMA when doc has no node list and with
// NO_START_NODE when doc has no start node, or several and
// [Options.FirstStart] is false.
func Plan(doc *scheme.Document, opts Options) (*Result, error) {
	opts.setDefaults()
	started := time.Now()

	if doc == nil {
		return nil, errors.New(errors.ErrCodeMalformedSchema, "invalid process schema format: missing nodes array")
	}
	ix, warnings, err := BuildIndex(doc.Nodes)
	if err != nil {
		return nil, err
	}
	start, err := findStart(doc, opts.FirstStart)
	if err != nil {
		return nil, err
	}

	t := Traverse(ix, start.ID)
	warnings = append(warnings, t.Warnings...)
	for _, w := range warnings {
		opts.Logger.Warn(w.Message, "code", w.Code, "node", w.NodeID)
	}

	res := &Result{
		StartID:    start.ID,
		Placements: make([]Placement, 0, len(t.Order)),
		Warnings:   warnings,
		NodeCount:  len(doc.Nodes),
		EdgeCount:  doc.EdgeCount(),
	}
	for _, id := range t.Order {
		n, _ := ix.Node(id)
		cell := t.Cells[id]
		res.Placements = append(res.Placements, Placement{
			ID:     id,
			Kind:   n.Kind,
			Cell:   cell,
			Point:  opts.Config.Point(n.Kind, cell),
			Role:   t.Roles[id],
			Parent: t.Parents[id],
		})
	}
	for _, n := range doc.Nodes {
		if _, ok := t.Cells[n.ID]; !ok {
			res.Unreached = append(res.Unreached, n.ID)
		}
	}
	res.Duration = time.Since(started)

	opts.Logger.Debug("planned layout",
		"start", start.ID,
		"placed", len(res.Placements),
		"unreached", len(res.Unreached),
		"warnings", len(res.Warnings))
	return res, nil
}

// Apply computes the layout of doc and writes x and y onto every reachable
// node. On error doc is left unchanged.
func Apply(doc *scheme.Document, opts Options) (*Result, error) {
	opts.setDefaults()
	res, err := Plan(doc, opts)
	if err != nil {
		return nil, err
	}
	MapCoordinates(doc.Nodes, res.Cells(), opts.Config)
	return res, nil
}

func findStart(doc *scheme.Document, first bool) (*scheme.Node, error) {
	starts := doc.StartNodes()
	switch {
	case len(starts) == 0:
		return nil, errors.New(errors.ErrCodeNoStartNode, "no start node found in the process")
	case len(starts) > 1 && !first:
		return nil, errors.New(errors.ErrCodeNoStartNode, "found %d start nodes, want exactly one", len(starts))
	}
	return starts[0], nil
}
