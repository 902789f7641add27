package codec

import (
	"fmt"
	"io"

	"qompath/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec carries the same document as JSONCodec in YAML, for hand editing
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlDocument represents the YAML structure for a scene document
type yamlDocument struct {
	Nodes    []yamlNode       `yaml:"nodes"`
	Edges    []domain.Edge    `yaml:"edges"`
	Viewport *domain.Viewport `yaml:"viewport,omitempty"`
}

type yamlNode struct {
	ID       string          `yaml:"id"`
	Type     string          `yaml:"type"`
	Position domain.Position `yaml:"position"`
	Data     yaml.Node       `yaml:"data,omitempty"`
}

// Parse imports a scene document from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Graph, error) {
	var root yaml.Node
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&root); err != nil {
		if err == io.EOF {
			return nil, &ValidationError{Message: "document is empty"}
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, &ValidationError{Message: "document root must be a mapping"}
	}

	var doc yamlDocument
	if err := root.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	g := domain.NewGraph()
	g.Viewport = doc.Viewport

	// Convert nodes
	for i, yn := range doc.Nodes {
		kind, err := domain.ParseNodeKind(yn.Type)
		if err != nil {
			return nil, &ValidationError{Path: fmt.Sprintf("nodes[%d].type", i), Message: err.Error()}
		}
		data, err := domain.DecodeData(kind, func(target any) error {
			if yn.Data.IsZero() {
				return nil
			}
			return yn.Data.Decode(target)
		})
		if err != nil {
			return nil, &ValidationError{Path: fmt.Sprintf("nodes[%d].data", i), Message: err.Error()}
		}
		g.AddNode(*domain.NewNode(yn.ID, yn.Position, data))
	}

	// Convert edges
	for _, e := range doc.Edges {
		g.AddEdge(e)
	}

	if err := Validate(g); err != nil {
		return nil, err
	}
	return g, nil
}

// Export exports a scene document to YAML
func (c *YAMLCodec) Export(g *domain.Graph, w io.Writer) error {
	doc := yamlDocument{
		Nodes:    make([]yamlNode, 0, len(g.Nodes)),
		Edges:    make([]domain.Edge, 0, len(g.Edges)),
		Viewport: g.Viewport,
	}

	// Convert nodes
	for _, n := range g.Nodes {
		if n.Data == nil {
			return fmt.Errorf("node %s has no data", n.ID)
		}
		yn := yamlNode{
			ID:       n.ID,
			Type:     n.Kind().String(),
			Position: n.Position,
		}
		if err := yn.Data.Encode(n.Clone().Data); err != nil {
			return fmt.Errorf("failed to encode node %s: %w", n.ID, err)
		}
		doc.Nodes = append(doc.Nodes, yn)
	}

	doc.Edges = append(doc.Edges, g.Edges...)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
