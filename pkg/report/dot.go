package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/lioia/personalized-pagerank/pkg/graph"
)

// DOT converts a ranked graph to Graphviz DOT format.
// Node labels carry the score; sources are filled, dangling nodes dashed.
// Only the first limit entries of the ranking (and the edges between them)
// are drawn when limit > 0.
func DOT(g *graph.Graph, ranking Ranking, sources []int, limit int) string {
	isSource := make(map[int]bool, len(sources))
	for _, s := range sources {
		isSource[s] = true
	}
	drawn := make(map[int]bool)
	for _, rank := range ranking.Top(limit) {
		if g.Has(rank.Node) {
			drawn[rank.Node] = true
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=ellipse, fontsize=12];\n")
	buf.WriteString("\n")
	for _, rank := range ranking.Top(limit) {
		if !drawn[rank.Node] {
			continue
		}
		attrs := fmt.Sprintf("label=\"%d\\n%.5f\"", rank.Node, rank.Score)
		switch {
		case isSource[rank.Node]:
			attrs += ", style=filled, fillcolor=gold"
		case g.IsDangling(rank.Node):
			attrs += ", style=dashed"
		}
		fmt.Fprintf(&buf, "  %d [%s];\n", rank.Node, attrs)
	}
	buf.WriteString("\n")
	for _, id := range g.Nodes() {
		if !drawn[id] {
			continue
		}
		for _, to := range g.Successors(id) {
			if drawn[to] {
				fmt.Fprintf(&buf, "  %d -> %d;\n", id, to)
			}
		}
	}
	buf.WriteString("}\n")
	return buf.String()
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
	return buf.Bytes(), nil
}
