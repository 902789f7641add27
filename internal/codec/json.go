package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"qompath/internal/domain"
)

// JSONCodec handles the authoritative JSON document format
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports a scene document from JSON. Unknown fields such as the
// editor's width/selected/dragging are ignored.
func (c *JSONCodec) Parse(r io.Reader) (*domain.Graph, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON: %w", err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &ValidationError{Message: "document is empty"}
	}
	if trimmed[0] != '{' {
		return nil, &ValidationError{Message: "document root must be an object"}
	}

	var g domain.Graph
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	if err := decoder.Decode(&g); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, &ValidationError{Message: "unexpected data after document"}
	}

	if err := Validate(&g); err != nil {
		return nil, err
	}
	return normalize(&g), nil
}

// Export exports a scene document to JSON
func (c *JSONCodec) Export(g *domain.Graph, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(normalize(g.Clone())); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
