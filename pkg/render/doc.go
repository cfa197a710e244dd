// Package render draws laid-out process schemas with Graphviz.
//
// # Overview
//
// [ToDOT] turns a document whose nodes carry x and y into Graphviz DOT source
// with every positioned node pinned where the layout put it. [Render] runs
// that source through the neato engine (which honors pinned positions) and
// produces SVG or PNG:
//
//	dot, err := render.ToDOT(doc, render.Options{Config: layout.DefaultConfig()})
//	svg, err := render.Render(ctx, dot, render.FormatSVG)
//
// # Shapes
//
// Start and end nodes are circles, conditions are diamonds and all other
// nodes are boxes, sized by the footprints in [layout.Config]. Error
// terminals are filled red. Branch edges, as decided by [layout.Classify],
// are dashed; main-flow edges are solid.
//
// # Coordinates
//
// Round nodes are positioned by their center, the others by their top-left
// corner, matching the document convention. Graphviz measures y upward, so
// y is negated when pinning. Nodes without a position are left for neato
// to place.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz], which embeds Graphviz as
// WebAssembly, so no system installation is needed.
package render
