package graph

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pierre-ernst/ghnet/pkg/network"
)

// FromScan builds the star graph of a scan: the scanned repository first,
// then its dependents in scan order.
func FromScan(scan *network.Scan) Graph {
	root := scan.Repository
	g := Graph{
		Nodes: make([]Node, 0, len(scan.Dependents)+1),
		Edges: make([]Edge, 0, len(scan.Dependents)),
	}
	g.Nodes = append(g.Nodes, Node{
		ID:       root.String(),
		Kind:     KindRoot,
		Language: root.Language,
		Stars:    root.Stars,
		URL:      root.HTMLURL,
	})
	for _, d := range scan.Dependents {
		id := d.Repository.String()
		g.Nodes = append(g.Nodes, Node{
			ID:         id,
			Kind:       KindDependent,
			Language:   d.Language,
			Dependents: d.Dependents,
			Stars:      d.Stars,
			URL:        d.HTMLURL,
		})
		g.Edges = append(g.Edges, Edge{From: root.String(), To: id})
	}
	return g
}

// MarshalGraph converts a graph to indented JSON bytes.
func MarshalGraph(g Graph) ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// WriteGraph writes a graph as JSON to w.
func WriteGraph(g Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}
