package domain

// Graph is the whole composition and the shape of the exported document
type Graph struct {
	Nodes    []Node    `json:"nodes"`
	Edges    []Edge    `json:"edges"`
	Viewport *Viewport `json:"viewport,omitempty"`
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		Nodes: make([]Node, 0),
		Edges: make([]Edge, 0),
	}
}

// AddNode appends a node to the graph
func (g *Graph) AddNode(node Node) {
	g.Nodes = append(g.Nodes, node)
}

// AddEdge appends an edge to the graph
func (g *Graph) AddEdge(edge Edge) {
	g.Edges = append(g.Edges, edge)
}

// Node returns the node with the given ID, or nil
func (g *Graph) Node(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// NodeIndex maps node IDs to their kinds
func (g *Graph) NodeIndex() map[string]NodeKind {
	index := make(map[string]NodeKind, len(g.Nodes))
	for i := range g.Nodes {
		index[g.Nodes[i].ID] = g.Nodes[i].Kind()
	}
	return index
}

// Clone returns a deep copy of the graph
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	for i := range g.Nodes {
		out.Nodes[i] = g.Nodes[i].Clone()
	}
	copy(out.Edges, g.Edges)
	if g.Viewport != nil {
		vp := *g.Viewport
		out.Viewport = &vp
	}
	return out
}
