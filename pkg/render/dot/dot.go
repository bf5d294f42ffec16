// Package dot renders batch dependency graphs as Graphviz diagrams.
//
// Nodes are laid out top to bottom in emission-constraint order and filled
// by batch key, so runs that the batcher can merge share a color. The
// output is meant for debugging why two widgets could not be batched.
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; [ToDOT] itself has no external requirements.
package dot

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/batchsort/pkg/batch"
)

// palette cycles fill colors per distinct batch key.
var palette = []string{
	"#cde7f0", "#f6d6ad", "#d5e8d4", "#e1d5e7", "#fff2cc",
	"#f8cecc", "#dae8fc", "#f5f5f5", "#e6d0de", "#d0e0e3",
}

// Options configures DOT output.
type Options struct {
	// Label returns the display label of node i. Defaults to the index.
	Label func(i int) string
	// ShowKeys appends the batch key to each label.
	ShowKeys bool
}

// ToDOT converts the live part of g to Graphviz DOT format.
// The result can be rendered with [RenderSVG].
func ToDOT[T batch.Item[T]](g *batch.Graph[T], opts Options) string {
	label := opts.Label
	if label == nil {
		label = func(i int) string { return fmt.Sprint(i) }
	}

	var buf bytes.Buffer
	buf.WriteString("digraph Batch {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14];\n\n")

	colors := make(map[string]string)
	for i := 0; i < g.Len(); i++ {
		if !g.Has(i) {
			continue
		}
		key := g.Item(i).Key()
		color, ok := colors[key]
		if !ok {
			color = palette[len(colors)%len(palette)]
			colors[key] = color
		}
		text := label(i)
		if opts.ShowKeys {
			text += "\n" + key
		}
		fmt.Fprintf(&buf, "  n%d [label=%q, fillcolor=%q];\n", i, text, color)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  n%d -> n%d;\n", e[0], e[1])
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
