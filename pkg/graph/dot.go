package graph

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// Options configures DOT generation.
type Options struct {
	// Detailed adds the language and dependents count to node labels.
	// When false, only the repository name is shown.
	Detailed bool
}

// ToDOT converts a graph to Graphviz DOT source. Nodes are filled with a
// colour derived from their language so that dependents written in the
// same language stand out together.
func ToDOT(g Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#888888\", arrowsize=0.6];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.15;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n Node, detailed bool) string {
	if !detailed {
		return n.ID
	}
	lang := n.Language
	if lang == "" {
		lang = "unknown"
	}
	if n.IsRoot() {
		return n.ID + "\n" + lang
	}
	return fmt.Sprintf("%s\n%s / %d dependents", n.ID, lang, n.Dependents)
}

func fmtAttrs(n Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label), fmt.Sprintf("fillcolor=%q", LanguageColor(n.Language))}
	if n.URL != "" {
		attrs = append(attrs, fmt.Sprintf("URL=%q", n.URL))
	}
	if n.IsRoot() {
		attrs = append(attrs, "penwidth=2", "fontsize=18")
	}
	return attrs
}

var languageColors = map[string]string{
	"go":         "#cdeffa",
	"java":       "#f6dcc4",
	"javascript": "#fbf3c2",
	"typescript": "#cfdcf5",
	"python":     "#d6e2f0",
	"ruby":       "#f5cfcf",
	"rust":       "#ecd9cc",
	"php":        "#dcdcf2",
	"kotlin":     "#e3d6f7",
	"scala":      "#f3cfd6",
	"c#":         "#d2ecd4",
}

var fallbackColors = []string{"#e8f0d8", "#f0e0ec", "#dde8e8", "#f2ead8", "#e4e4f4", "#ece4dc"}

// LanguageColor returns the fill colour for a language. Unknown languages
// get a stable colour from a small palette; no language gets white.
func LanguageColor(language string) string {
	if language == "" {
		return "white"
	}
	key := strings.ToLower(language)
	if c, ok := languageColors[key]; ok {
		return c
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	return fallbackColors[h.Sum32()%uint32(len(fallbackColors))]
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz.
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

// normalizeViewBox replaces Graphviz's pt-based width and height with
// pixel sizes matching the viewBox.
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

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
