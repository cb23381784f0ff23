// Package nodelink renders artifact dependency graphs as node-link diagrams.
//
// # Usage
//
// Convert a resolved graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(set.Graph(), nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools.
//
// # Options
//
//   - Detailed: label links with their version, group type and compatibility
//   - GroupTypes: only draw links of these group types
//
// Identities reached with several versions are highlighted, which makes the
// diagram of an unreconciled graph a quick way to spot conflicts.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
