package service

import (
	"fmt"
	"io"

	"qompath/internal/codec"
	"qompath/internal/domain"
	"qompath/internal/store"
)

// SceneService provides business logic for scene graph operations. It is
// the only writer of the store and publishes one event per effective
// mutation.
type SceneService struct {
	store    *store.Store
	eventBus *EventBus
}

// NewSceneService creates a new scene service
func NewSceneService(st *store.Store, eventBus *EventBus) *SceneService {
	return &SceneService{
		store:    st,
		eventBus: eventBus,
	}
}

// GetGraph returns a snapshot of the complete graph
func (s *SceneService) GetGraph() *domain.Graph {
	return s.store.Snapshot()
}

// GetNode returns a single node
func (s *SceneService) GetNode(id string) (domain.Node, bool) {
	return s.store.Node(id)
}

// Revision returns the store revision
func (s *SceneService) Revision() uint64 {
	return s.store.Revision()
}

// CreateNode adds a node of the given kind. data may be nil for defaults.
func (s *SceneService) CreateNode(kind domain.NodeKind, data domain.NodeData) (string, store.Change) {
	id, change := s.store.AddNode(kind, data)
	s.publish(EventNodeCreated, change)
	return id, change
}

// DeleteNode removes a node and every edge touching it
func (s *SceneService) DeleteNode(id string) store.Change {
	change := s.store.RemoveNode(id)
	s.publish(EventNodeDeleted, change)
	return change
}

// UpdateNodeData patches a node's authored fields
func (s *SceneService) UpdateNodeData(id string, patch store.DataPatch) (store.Change, error) {
	change, err := s.store.UpdateNodeData(id, patch)
	if err != nil {
		return store.Change{}, err
	}
	s.publish(EventNodeUpdated, change)
	return change, nil
}

// MoveNode sets a node's canvas position
func (s *SceneService) MoveNode(id string, pos domain.Position) store.Change {
	change := s.store.MoveNode(id, pos)
	s.publish(EventNodeUpdated, change)
	return change
}

// CreateEdge connects two nodes
func (s *SceneService) CreateEdge(source, target string, handle domain.Handle) (string, store.Change) {
	id, change := s.store.AddEdge(source, target, handle)
	s.publish(EventEdgeCreated, change)
	return id, change
}

// DeleteEdge removes one edge
func (s *SceneService) DeleteEdge(id string) store.Change {
	return s.DeleteEdges([]string{id})
}

// DeleteEdges removes several edges in one mutation
func (s *SceneService) DeleteEdges(ids []string) store.Change {
	change := s.store.RemoveEdges(ids)
	s.publish(EventEdgesDeleted, change)
	return change
}

// SetViewport records the canvas pan/zoom
func (s *SceneService) SetViewport(vp domain.Viewport) store.Change {
	change := s.store.SetViewport(vp)
	s.publish(EventViewportUpdated, change)
	return change
}

// ExportDocument writes the graph in the given format ("json" or "yaml")
func (s *SceneService) ExportDocument(format string, w io.Writer) error {
	c, err := codec.ForFormat(format)
	if err != nil {
		return err
	}
	return c.Export(s.store.Snapshot(), w)
}

// ImportDocument parses a whole document and only then replaces the graph.
// On any error the live graph is untouched.
func (s *SceneService) ImportDocument(format string, r io.Reader) (store.Change, error) {
	c, err := codec.ForFormat(format)
	if err != nil {
		return store.Change{}, err
	}

	g, err := c.Parse(r)
	if err != nil {
		return store.Change{}, fmt.Errorf("failed to import %s document: %w", c.Format(), err)
	}

	return s.ReplaceGraph(g), nil
}

// ReplaceGraph installs an already validated graph
func (s *SceneService) ReplaceGraph(g *domain.Graph) store.Change {
	change := s.store.ReplaceAll(g)
	s.publish(EventGraphReplaced, change)
	return change
}

func (s *SceneService) publish(t EventType, change store.Change) {
	if change.Empty() || s.eventBus == nil {
		return
	}
	s.eventBus.Publish(Event{
		Type:     t,
		Revision: change.Revision,
		Payload:  change,
	})
}
