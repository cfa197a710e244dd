// Package pkg holds the libraries behind flowlayout.
//
// # Overview
//
// Flowlayout gives the nodes of a process schema grid coordinates so that
// the main flow reads top to bottom and branches (error exits, alternative
// routes) step out to the right. The packages are organized as:
//
//  1. [scheme] - process documents: parsing, node kinds, lossless writing
//  2. [layout] - the engine: index, flow classification, traversal, coordinates
//  3. [pipeline] - orchestration with caching (layout, then render)
//  4. [render] - Graphviz drawings of laid-out documents
//  5. [server], [store] - the HTTP API and its run history
//  6. [cache], [config], [observability], [errors] - shared infrastructure
//
// # Data flow
//
//	process.json
//	     ↓
//	[scheme] package (parse and shape-check)
//	     ↓
//	[layout] package (start node, traversal, cells, x/y)
//	     ↓
//	[pipeline] package (cache, write <name>.repositioned.json)
//	     ↓
//	[render] package (optional SVG/PNG/DOT)
//
// # Quick Start
//
//	doc, err := scheme.ReadFile("process.json")
//	if err != nil {
//	    return err
//	}
//	res, err := layout.Apply(doc, layout.Options{})
//	if err != nil {
//	    return err
//	}
//	for _, w := range res.Warnings {
//	    log.Warn(w.Message)
//	}
//	return scheme.WriteFile(doc, scheme.OutputPath("process.json", ""))
//
// [scheme]: github.com/matzehuels/flowlayout/pkg/scheme
// [layout]: github.com/matzehuels/flowlayout/pkg/layout
// [pipeline]: github.com/matzehuels/flowlayout/pkg/pipeline
// [render]: github.com/matzehuels/flowlayout/pkg/render
// [server]: github.com/matzehuels/flowlayout/pkg/server
// [store]: github.com/matzehuels/flowlayout/pkg/store
// [cache]: github.com/matzehuels/flowlayout/pkg/cache
// [config]: github.com/matzehuels/flowlayout/pkg/config
// [observability]: github.com/matzehuels/flowlayout/pkg/observability
// [errors]: github.com/matzehuels/flowlayout/pkg/errors
package pkg
