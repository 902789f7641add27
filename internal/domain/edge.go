package domain

import "fmt"

// Handle names the target port an edge plugs into
type Handle string

const (
	HandleNone       Handle = ""
	HandleGeometryIn Handle = "geometry-in"
	HandleLightIn    Handle = "light-in"
)

// InputHandle returns the Render input a node of the given kind feeds.
// Render nodes feed nothing.
func InputHandle(kind NodeKind) (Handle, bool) {
	switch kind {
	case KindSphere, KindBox:
		return HandleGeometryIn, true
	case KindLight:
		return HandleLightIn, true
	case KindRender:
		return HandleNone, false
	default:
		return HandleNone, false
	}
}

// Edge represents a directed connection between two nodes
type Edge struct {
	ID           string `json:"id" yaml:"id"`
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
	TargetHandle Handle `json:"targetHandle,omitempty" yaml:"targetHandle,omitempty"`
}

// NewEdge creates an edge
func NewEdge(id, source, target string, handle Handle) *Edge {
	return &Edge{
		ID:           id,
		Source:       source,
		Target:       target,
		TargetHandle: handle,
	}
}

// Touches reports whether the edge starts or ends at the node
func (e *Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

func errUnknownKind(kind NodeKind) error {
	return fmt.Errorf("unknown node kind %d", int(kind))
}
