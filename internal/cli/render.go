package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/pipeline"
	"github.com/matzehuels/flowlayout/pkg/scheme"
)

// renderOpts holds render command flags.
type renderOpts struct {
	formats  string
	output   string
	detailed bool
	asIs     bool
}

// renderCommand creates the render command for drawing a process schema.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <process.json>",
		Short: "Draw a process schema as SVG, PNG or DOT",
		Long: `Draw a process schema as SVG, PNG or DOT.

The document is laid out first, then drawn with every placed node pinned at
its computed position. With --as-is the positions already in the document
are drawn without a new layout. One file is written per format, named
<output>.<format>.`,
		Example: `  flowlayout render process.json
  flowlayout render process.json -f svg,png -o build/process
  flowlayout render process.repositioned.json --as-is --detailed`,
		Args: cobra.ExactArgs(1),
	}
	lf := addLayoutFlags(cmd)
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "svg", "output formats, comma separated (svg, png, dot)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: input without extension)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with kind and position")
	cmd.Flags().BoolVar(&opts.asIs, "as-is", false, "draw existing positions without laying out")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		input := args[0]
		popts := c.pipelineOptions(input)
		lf.apply(&popts)
		popts.Formats = splitFormats(opts.formats)
		popts.Detailed = opts.detailed
		if opts.output == "" {
			opts.output = strings.TrimSuffix(input, filepath.Ext(input))
		}
		return c.runRender(cmd.Context(), input, popts, opts, lf.noCache)
	}
	return cmd
}

// runRender draws input in every requested format and writes the files.
func (c *CLI) runRender(ctx context.Context, input string, popts pipeline.Options, opts renderOpts, noCache bool) error {
	if err := popts.ValidateForRender(); err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Rendering "+filepath.Base(input)+"...")
	spinner.Start()
	artifacts, cached, err := c.artifacts(ctx, input, popts, opts.asIs, noCache)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.StopWithSuccess("Rendered " + filepath.Base(input))

	for _, format := range popts.Formats {
		path := opts.output + "." + format
		if err := scheme.WriteBytes(path, artifacts[format]); err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
		printFile(path)
	}
	if cached {
		printDetail("served from cache")
	}
	return nil
}

// artifacts produces the rendered outputs, laying out first unless asIs.
func (c *CLI) artifacts(ctx context.Context, input string, popts pipeline.Options, asIs, noCache bool) (map[string][]byte, bool, error) {
	if asIs {
		doc, err := scheme.ReadFile(input)
		if err != nil {
			return nil, false, err
		}
		out, err := pipeline.RenderFormats(ctx, doc, popts)
		return out, false, err
	}

	data, err := scheme.ReadSource(input)
	if err != nil {
		return nil, false, err
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, false, err
	}
	defer runner.Close()

	res, err := runner.Execute(ctx, data, popts)
	if err != nil {
		return nil, false, err
	}
	return res.Artifacts, res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit, nil
}

// splitFormats splits a comma-separated format list, dropping blanks.
func splitFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
