package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/flowlayout/pkg/cache"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/observability"
	"github.com/matzehuels/flowlayout/pkg/scheme"
)

// LaidOut is a repositioned document. It is what the layout cache stores.
type LaidOut struct {
	// DocHash is the SHA-256 of the input bytes.
	DocHash string `json:"doc_hash"`

	// Output is the repositioned document, encoded as indented JSON.
	Output []byte `json:"output"`

	// Layout reports where each reachable node was placed.
	Layout *layout.Result `json:"layout"`
}

// Document decodes Output.
func (l *LaidOut) Document() (*scheme.Document, error) {
	return scheme.Parse(l.Output)
}

// ComputeLayout parses data, lays it out and encodes the result.
// It does not consult a cache; see [Runner.LayoutWithCacheInfo].
func ComputeLayout(ctx context.Context, data []byte, opts Options) (laid *LaidOut, err error) {
	opts.SetLayoutDefaults()
	hooks := observability.Layout()
	start := time.Now()
	placed := 0
	defer func() {
		hooks.OnLayoutComplete(ctx, opts.Source, placed, time.Since(start), err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := scheme.Parse(data)
	if err != nil {
		return nil, err
	}
	hooks.OnLayoutStart(ctx, opts.Source, len(doc.Nodes))

	res, err := layout.Apply(doc, layout.Options{
		Config:     opts.Config,
		FirstStart: opts.FirstStart,
		Logger:     opts.Logger.With("source", opts.Source),
	})
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		hooks.OnWarning(ctx, opts.Source, string(w.Code))
	}

	out, err := doc.Marshal()
	if err != nil {
		return nil, err
	}
	placed = len(res.Placements)
	return &LaidOut{
		DocHash: cache.Hash(data),
		Output:  out,
		Layout:  res,
	}, nil
}
