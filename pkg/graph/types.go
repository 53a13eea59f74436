package graph

// Node kinds.
const (
	KindRoot      = "root"
	KindDependent = "dependent"
)

// Graph is the serialization format for dependents graphs.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node is a repository in the graph. ID is the repository's full name.
type Node struct {
	ID         string `json:"id" bson:"id"`
	Kind       string `json:"kind" bson:"kind"`
	Language   string `json:"language,omitempty" bson:"language,omitempty"`
	Dependents int64  `json:"dependents,omitempty" bson:"dependents,omitempty"`
	Stars      int    `json:"stars,omitempty" bson:"stars,omitempty"`
	URL        string `json:"url,omitempty" bson:"url,omitempty"`
}

// IsRoot returns true for the scanned repository.
func (n *Node) IsRoot() bool { return n.Kind == KindRoot }

// Edge points from a repository to one of its dependents.
type Edge struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
}
