package domain

import (
	"encoding/json"
	"fmt"
)

// NodeKind enumerates the types of nodes in a composition.
type NodeKind int

const (
	KindSphere NodeKind = iota
	KindBox
	KindLight
	KindRender
)

// String returns the wire name of the kind
func (k NodeKind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindBox:
		return "box"
	case KindLight:
		return "light"
	case KindRender:
		return "render"
	default:
		return "unknown"
	}
}

// ParseNodeKind converts a wire name to a NodeKind
func ParseNodeKind(s string) (NodeKind, error) {
	switch s {
	case "sphere":
		return KindSphere, nil
	case "box":
		return KindBox, nil
	case "light":
		return KindLight, nil
	case "render":
		return KindRender, nil
	default:
		return 0, fmt.Errorf("unknown node type %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (k NodeKind) MarshalText() ([]byte, error) {
	switch k {
	case KindSphere, KindBox, KindLight, KindRender:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("unknown node kind %d", int(k))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *NodeKind) UnmarshalText(text []byte) error {
	parsed, err := ParseNodeKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Position is the free-form canvas location of a node. Layout only.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node represents a positioned, typed element of the composition
type Node struct {
	ID       string
	Position Position
	Data     NodeData
}

// NewNode creates a node carrying the given payload
func NewNode(id string, pos Position, data NodeData) *Node {
	return &Node{
		ID:       id,
		Position: pos,
		Data:     normalizeData(data),
	}
}

// Kind returns the node's type, taken from its payload variant
func (n Node) Kind() NodeKind {
	return n.Data.Kind()
}

// Clone returns a deep copy of the node
func (n Node) Clone() Node {
	n.Data = cloneData(n.Data)
	return n
}

// wireNode is the document shape of a node
type wireNode struct {
	ID       string          `json:"id"`
	Type     NodeKind        `json:"type"`
	Position Position        `json:"position"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON emits {id, type, position, data}
func (n Node) MarshalJSON() ([]byte, error) {
	if n.Data == nil {
		return nil, fmt.Errorf("node %s has no data", n.ID)
	}
	data, err := json.Marshal(normalizeData(n.Data))
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireNode{
		ID:       n.ID,
		Type:     n.Data.Kind(),
		Position: n.Position,
		Data:     data,
	})
}

// UnmarshalJSON decodes the payload into the variant named by "type".
// A missing type is an error; a missing data object yields zero values.
func (n *Node) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID       string          `json:"id"`
		Type     *string         `json:"type"`
		Position Position        `json:"position"`
		Data     json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Type == nil {
		return fmt.Errorf("node %q: missing type", raw.ID)
	}
	kind, err := ParseNodeKind(*raw.Type)
	if err != nil {
		return fmt.Errorf("node %q: %w", raw.ID, err)
	}

	data, err := DecodeData(kind, func(target any) error {
		if len(raw.Data) == 0 || string(raw.Data) == "null" {
			return nil
		}
		return json.Unmarshal(raw.Data, target)
	})
	if err != nil {
		return fmt.Errorf("node %q: invalid %s data: %w", raw.ID, kind, err)
	}

	n.ID = raw.ID
	n.Position = raw.Position
	n.Data = data
	return nil
}
