package store

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeIDPrefix prefixes generated node IDs
const NodeIDPrefix = "dndnode_"

// IDGenerator hands out node IDs of the form dndnode_<n>
type IDGenerator struct {
	next int
}

// Next returns the next candidate ID that taken does not report as used
func (g *IDGenerator) Next(taken func(id string) bool) string {
	for {
		id := fmt.Sprintf("%s%d", NodeIDPrefix, g.next)
		g.next++
		if taken == nil || !taken(id) {
			return id
		}
	}
}

// newEdgeID is the default edge ID source
func newEdgeID() string {
	return "edge_" + uuid.NewString()
}
