package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/flowlayout/pkg/render"
	"github.com/matzehuels/flowlayout/pkg/scheme"
)

// RenderFormats draws doc once as DOT and encodes it in every requested
// format.
func RenderFormats(ctx context.Context, doc *scheme.Document, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	dot, err := render.ToDOT(doc, opts.RenderOptions())
	if err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, f := range opts.Formats {
		data, err := render.Render(ctx, dot, render.Format(f))
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", f, err)
		}
		artifacts[f] = data
	}
	return artifacts, nil
}
