package store

import (
	"errors"
	"math/rand/v2"
	"sync"

	"qompath/internal/domain"
)

var (
	// ErrDerivedField is returned when a patch tries to author Render lists
	ErrDerivedField = errors.New("geometryIds and lightIds are derived from edges and cannot be edited")
	// ErrFieldNotApplicable is returned when a patch sets a field the node does not have
	ErrFieldNotApplicable = errors.New("field does not apply to this node type")
)

// canvasSpan bounds the pseudo-random placement of new nodes
const canvasSpan = 400.0

// Change describes the effect of one mutation. A zero Revision means the
// mutation was a no-op.
type Change struct {
	Revision uint64   `json:"revision"`
	Nodes    []string `json:"nodes,omitempty"`
	Edges    []string `json:"edges,omitempty"`
	Derived  []string `json:"derived,omitempty"` // Render nodes whose lists were rewritten
}

// Empty reports whether the mutation changed nothing
func (c Change) Empty() bool {
	return c.Revision == 0
}

// DataPatch is a partial update of a node's data. Only authored fields
// are patchable.
type DataPatch struct {
	Color     *string  `json:"color,omitempty"`
	Intensity *float64 `json:"intensity,omitempty"`
}

// Option configures a Store
type Option func(*Store)

// WithRand sets the source used for node placement
func WithRand(r *rand.Rand) Option {
	return func(s *Store) {
		s.rng = r
	}
}

// WithEdgeIDs sets the edge ID source
func WithEdgeIDs(next func() string) Option {
	return func(s *Store) {
		s.edgeIDs = next
	}
}

// Store is the in-memory graph store
type Store struct {
	mu       sync.RWMutex
	nodes    []domain.Node
	edges    []domain.Edge
	viewport *domain.Viewport
	revision uint64

	ids     IDGenerator
	edgeIDs func() string
	rng     *rand.Rand
}

// New creates an empty store
func New(opts ...Option) *Store {
	s := &Store{
		nodes:   make([]domain.Node, 0),
		edges:   make([]domain.Edge, 0),
		edgeIDs: newEdgeID,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Revision returns the current revision
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Snapshot returns a deep copy of the current graph
func (s *Store) Snapshot() *domain.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g := &domain.Graph{Nodes: s.nodes, Edges: s.edges, Viewport: s.viewport}
	return g.Clone()
}

// Node returns a copy of the node with the given ID
func (s *Store) Node(id string) (domain.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.nodeIndex(id); i >= 0 {
		return s.nodes[i].Clone(), true
	}
	return domain.Node{}, false
}

// Edge returns the edge with the given ID
func (s *Store) Edge(id string) (domain.Edge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.edgeIndex(id); i >= 0 {
		return s.edges[i], true
	}
	return domain.Edge{}, false
}

// AddNode appends a node of the given kind at a pseudo-random position and
// returns its new ID. A nil or mismatched payload falls back to the kind's
// default; Render payloads always start empty since a new node has no
// incoming edges.
func (s *Store) AddNode(kind domain.NodeKind, data domain.NodeData) (string, Change) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data == nil || data.Kind() != kind || kind == domain.KindRender {
		data = domain.DefaultData(kind)
	}
	if data == nil {
		return "", Change{}
	}

	id := s.ids.Next(func(id string) bool { return s.nodeIndex(id) >= 0 })
	pos := domain.Position{
		X: s.rng.Float64() * canvasSpan,
		Y: s.rng.Float64() * canvasSpan,
	}
	s.nodes = append(s.nodes, *domain.NewNode(id, pos, data))

	return id, s.commit(Change{Nodes: []string{id}})
}

// RemoveNode removes a node and every edge touching it
func (s *Store) RemoveNode(id string) Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.nodeIndex(id)
	if i < 0 {
		return Change{}
	}

	var touching []string
	for _, e := range s.edges {
		if e.Touches(id) {
			touching = append(touching, e.ID)
		}
	}

	// Drop the node first so a Render target being deleted is not re-derived
	s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
	change := s.removeEdgesLocked(touching)
	change.Nodes = []string{id}

	return s.commit(change)
}

// AddEdge connects source to target on the given handle and returns the new
// edge ID. Mismatched handles produce an inert edge.
func (s *Store) AddEdge(source, target string, handle domain.Handle) (string, Change) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nodeIndex(source) < 0 || s.nodeIndex(target) < 0 {
		return "", Change{}
	}

	id := s.edgeIDs()
	for s.edgeIndex(id) >= 0 {
		id = s.edgeIDs()
	}
	s.edges = append(s.edges, *domain.NewEdge(id, source, target, handle))

	change := Change{
		Edges:   []string{id},
		Derived: s.resyncLocked([]string{target}),
	}
	return id, s.commit(change)
}

// RemoveEdge removes a single edge
func (s *Store) RemoveEdge(id string) Change {
	return s.RemoveEdges([]string{id})
}

// RemoveEdges removes every listed edge that exists
func (s *Store) RemoveEdges(ids []string) Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(s.removeEdgesLocked(ids))
}

// ReplaceAll installs g as the whole graph. The caller hands over a parsed
// and validated document; the store keeps its own copy.
func (s *Store) ReplaceAll(g *domain.Graph) Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := g.Clone()
	s.nodes = next.Nodes
	s.edges = next.Edges
	s.viewport = next.Viewport

	var renders []string
	for _, n := range s.nodes {
		if n.Kind() == domain.KindRender {
			renders = append(renders, n.ID)
		}
	}

	nodeIDs := make([]string, 0, len(s.nodes))
	for _, n := range s.nodes {
		nodeIDs = append(nodeIDs, n.ID)
	}

	// Always a revision, even for an empty document
	s.revision++
	return Change{
		Revision: s.revision,
		Nodes:    nodeIDs,
		Derived:  s.resyncLocked(renders),
	}
}

// UpdateNodeData merges patch into the node's data
func (s *Store) UpdateNodeData(id string, patch DataPatch) (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.nodeIndex(id)
	if i < 0 {
		return Change{}, nil
	}

	var data domain.NodeData
	switch d := s.nodes[i].Data.(type) {
	case domain.SphereData:
		if patch.Intensity != nil {
			return Change{}, ErrFieldNotApplicable
		}
		if patch.Color != nil {
			d.Color = *patch.Color
		}
		data = d
	case domain.BoxData:
		if patch.Intensity != nil {
			return Change{}, ErrFieldNotApplicable
		}
		if patch.Color != nil {
			d.Color = *patch.Color
		}
		data = d
	case domain.LightData:
		if patch.Color != nil {
			return Change{}, ErrFieldNotApplicable
		}
		if patch.Intensity != nil {
			d.Intensity = *patch.Intensity
		}
		data = d
	case domain.RenderData:
		if patch.Color != nil || patch.Intensity != nil {
			return Change{}, ErrFieldNotApplicable
		}
		return Change{}, nil
	default:
		return Change{}, nil
	}

	if data == s.nodes[i].Data {
		return Change{}, nil
	}
	s.nodes[i].Data = data
	return s.commit(Change{Nodes: []string{id}}), nil
}

// MoveNode sets a node's canvas position
func (s *Store) MoveNode(id string, pos domain.Position) Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.nodeIndex(id)
	if i < 0 {
		return Change{}
	}
	s.nodes[i].Position = pos
	return s.commit(Change{Nodes: []string{id}})
}

// SetViewport records the canvas pan/zoom
func (s *Store) SetViewport(vp domain.Viewport) Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.viewport = &vp
	s.revision++
	return Change{Revision: s.revision}
}

// removeEdgesLocked drops the listed edges and re-derives their Render
// targets. The returned change is not yet committed.
func (s *Store) removeEdgesLocked(ids []string) Change {
	if len(ids) == 0 {
		return Change{}
	}
	doomed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		doomed[id] = struct{}{}
	}

	var (
		removed []string
		targets []string
	)
	kept := s.edges[:0]
	for _, e := range s.edges {
		if _, ok := doomed[e.ID]; ok {
			removed = append(removed, e.ID)
			targets = append(targets, e.Target)
			continue
		}
		kept = append(kept, e)
	}
	s.edges = kept

	if len(removed) == 0 {
		return Change{}
	}
	return Change{
		Edges:   removed,
		Derived: s.resyncLocked(targets),
	}
}

// commit assigns the next revision to a non-empty change
func (s *Store) commit(c Change) Change {
	if len(c.Nodes) == 0 && len(c.Edges) == 0 && len(c.Derived) == 0 {
		return Change{}
	}
	s.revision++
	c.Revision = s.revision
	return c
}

func (s *Store) nodeIndex(id string) int {
	for i := range s.nodes {
		if s.nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) edgeIndex(id string) int {
	for i := range s.edges {
		if s.edges[i].ID == id {
			return i
		}
	}
	return -1
}
