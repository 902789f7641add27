package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"qompath/internal/domain"
)

// Importer interface for importing scene documents from various formats
type Importer interface {
	Parse(r io.Reader) (*domain.Graph, error)
	Format() string
}

// Exporter interface for exporting scene documents to various formats
type Exporter interface {
	Export(g *domain.Graph, w io.Writer) error
	Format() string
}

// Codec both imports and exports a format
type Codec interface {
	Importer
	Exporter
}

// ErrUnknownFormat is returned by ForFormat for unsupported format names
var ErrUnknownFormat = errors.New("unknown document format")

// ForFormat returns the codec for a format name. An empty name selects JSON.
func ForFormat(format string) (Codec, error) {
	switch format {
	case "", "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ValidationError reports a structurally invalid document
type ValidationError struct {
	Path    string // e.g. nodes[2].id
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return "invalid document: " + e.Message
	}
	return fmt.Sprintf("invalid document: %s: %s", e.Path, e.Message)
}

// Marshal serializes a graph into the authoritative JSON document
func Marshal(g *domain.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewJSONCodec().Export(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal parses and validates a JSON document. The returned graph is
// complete or nil; nothing is partially applied anywhere.
func Unmarshal(data []byte) (*domain.Graph, error) {
	return NewJSONCodec().Parse(bytes.NewReader(data))
}

// Validate checks the shape of a parsed document: non-empty unique ids,
// typed node payloads and edges with both endpoints. Edges pointing at
// unknown nodes are accepted; they are inert until such a node exists.
func Validate(g *domain.Graph) error {
	if g == nil {
		return &ValidationError{Message: "document is empty"}
	}

	nodeIDs := make(map[string]struct{}, len(g.Nodes))
	for i, n := range g.Nodes {
		path := fmt.Sprintf("nodes[%d]", i)
		if n.ID == "" {
			return &ValidationError{Path: path + ".id", Message: "missing id"}
		}
		if _, dup := nodeIDs[n.ID]; dup {
			return &ValidationError{Path: path + ".id", Message: fmt.Sprintf("duplicate node id %q", n.ID)}
		}
		nodeIDs[n.ID] = struct{}{}
		if n.Data == nil {
			return &ValidationError{Path: path + ".data", Message: "missing data"}
		}
	}

	edgeIDs := make(map[string]struct{}, len(g.Edges))
	for i, e := range g.Edges {
		path := fmt.Sprintf("edges[%d]", i)
		if e.ID == "" {
			return &ValidationError{Path: path + ".id", Message: "missing id"}
		}
		if _, dup := edgeIDs[e.ID]; dup {
			return &ValidationError{Path: path + ".id", Message: fmt.Sprintf("duplicate edge id %q", e.ID)}
		}
		edgeIDs[e.ID] = struct{}{}
		if e.Source == "" {
			return &ValidationError{Path: path + ".source", Message: "missing source"}
		}
		if e.Target == "" {
			return &ValidationError{Path: path + ".target", Message: "missing target"}
		}
	}
	return nil
}

// normalize replaces missing sequences with empty ones
func normalize(g *domain.Graph) *domain.Graph {
	if g.Nodes == nil {
		g.Nodes = make([]domain.Node, 0)
	}
	if g.Edges == nil {
		g.Edges = make([]domain.Edge, 0)
	}
	return g
}
