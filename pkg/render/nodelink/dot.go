package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/depot/pkg/artifact"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed labels every link with its version and group type.
	// When false, only the node labels carry versions.
	Detailed bool

	// GroupTypes restricts the rendered links to these group types.
	// Empty renders every link.
	GroupTypes []string
}

// ToDOT converts an artifact graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Nodes are labeled with their identity and every distinct version that
// reaches them. An identity reached with more than one version is filled
// orange so that unreconciled conflicts stand out. The project root is
// drawn as a dashed ellipse.
func ToDOT(g *artifact.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, id := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(id), strings.Join(fmtAttrs(g, id, opts), ", "))
	}

	buf.WriteString("\n")
	for _, id := range g.Nodes() {
		for _, l := range g.Outbound(id) {
			if !inScope(opts.GroupTypes, l.Value.GroupType) {
				continue
			}
			if opts.Detailed {
				fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", nodeID(l.Origin), nodeID(l.Destination), fmtLinkLabel(l.Value))
			} else {
				fmt.Fprintf(&buf, "  %q -> %q;\n", nodeID(l.Origin), nodeID(l.Destination))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(id artifact.Identity) string {
	if id == artifact.ProjectRoot {
		return "project"
	}
	return id.String()
}

func fmtAttrs(g *artifact.Graph, id artifact.Identity, opts Options) []string {
	if id == artifact.ProjectRoot {
		return []string{`label="project"`, "shape=ellipse", `style="dashed"`}
	}
	versions := versionsOf(g, id, opts.GroupTypes)
	label := id.String()
	if len(versions) > 0 {
		label += "\n" + strings.Join(versions, ", ")
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if len(versions) > 1 {
		attrs = append(attrs, "fillcolor=orange")
	}
	return attrs
}

func fmtLinkLabel(l artifact.Link) string {
	v := l.DependencyVersion
	if l.DependencyIntegrationVersion != "" {
		v = l.DependencyIntegrationVersion
	}
	label := v + " (" + l.GroupType + ")"
	if l.Compatibility != "" {
		label += "\n" + l.Compatibility
	}
	return label
}

// versionsOf returns the distinct effective versions reaching id, sorted.
func versionsOf(g *artifact.Graph, id artifact.Identity, groupTypes []string) []string {
	var out []string
	for _, l := range g.Inbound(id) {
		if !inScope(groupTypes, l.Value.GroupType) {
			continue
		}
		v := l.Value.DependencyVersion
		if l.Value.DependencyIntegrationVersion != "" {
			v = l.Value.DependencyIntegrationVersion
		}
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}

func inScope(groupTypes []string, typ string) bool {
	return len(groupTypes) == 0 || slices.Contains(groupTypes, typ)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the diagram scales with
// its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
