package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/pipeline"
)

// layoutFlags are the layout settings that can be overridden per command.
// Only flags the user actually set replace configured values.
type layoutFlags struct {
	cmd *cobra.Command

	baseX, baseY     float64
	vertical         float64
	horizontal       float64
	centerOffset     float64
	firstStart       bool
	noCache, refresh bool
}

// addLayoutFlags registers the layout flags on cmd.
func addLayoutFlags(cmd *cobra.Command) *layoutFlags {
	f := &layoutFlags{cmd: cmd}
	def := layout.DefaultConfig()
	fs := cmd.Flags()
	fs.Float64Var(&f.baseX, "base-x", def.BaseX, "x of the first column")
	fs.Float64Var(&f.baseY, "base-y", def.BaseY, "y of the first level")
	fs.Float64Var(&f.vertical, "vertical-spacing", def.VerticalSpacing, "pixels between levels")
	fs.Float64Var(&f.horizontal, "horizontal-spacing", def.HorizontalSpacing, "pixels between columns")
	fs.Float64Var(&f.centerOffset, "center-offset", def.CenterOffset, "x shift for start and end nodes")
	fs.BoolVar(&f.firstStart, "first-start", false, "use the first start node when there are several")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fs.BoolVar(&f.refresh, "refresh", false, "recompute even when a cached result exists")
	return f
}

// apply overlays the flags the user set onto opts.
func (f *layoutFlags) apply(opts *pipeline.Options) {
	changed := f.cmd.Flags().Changed
	cfg := &opts.Config
	if changed("base-x") {
		cfg.BaseX = f.baseX
	}
	if changed("base-y") {
		cfg.BaseY = f.baseY
	}
	if changed("vertical-spacing") {
		cfg.VerticalSpacing = f.vertical
	}
	if changed("horizontal-spacing") {
		cfg.HorizontalSpacing = f.horizontal
	}
	if changed("center-offset") {
		cfg.CenterOffset = f.centerOffset
	}
	if changed("first-start") {
		opts.FirstStart = f.firstStart
	}
	opts.Refresh = f.refresh
}
