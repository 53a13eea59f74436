// Package graph turns dependents scans into graphs and renders them.
//
// # Overview
//
// A scan is a star: the scanned repository at the centre and one node per
// kept dependent. [FromScan] builds that graph, [ToDOT] writes it as
// Graphviz DOT source and [RenderSVG] lays it out in-process.
//
// # Usage
//
//	g := graph.FromScan(scan)
//	dot := graph.ToDOT(g, graph.Options{Detailed: true})
//	svg, err := graph.RenderSVG(ctx, dot)
//
// [WriteGraph] emits the graph as JSON for tools that do their own layout.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for SVG rendering; no
// Graphviz installation is required.
package graph
