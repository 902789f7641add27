package store

import (
	"slices"

	"qompath/internal/domain"
)

// Derive computes the geometry and light lists of a Render node from an edge
// set: the sources of edges into renderID whose handle matches the source's
// role, in edge order. Duplicates are kept, one entry per edge.
func Derive(renderID string, edges []domain.Edge, kinds map[string]domain.NodeKind) domain.RenderData {
	out := domain.RenderData{
		GeometryIDs: []string{},
		LightIDs:    []string{},
	}
	for _, e := range edges {
		if e.Target != renderID {
			continue
		}
		kind, ok := kinds[e.Source]
		if !ok {
			continue
		}
		role, ok := domain.InputHandle(kind)
		if !ok || role != e.TargetHandle {
			continue
		}
		switch role {
		case domain.HandleGeometryIn:
			out.GeometryIDs = append(out.GeometryIDs, e.Source)
		case domain.HandleLightIn:
			out.LightIDs = append(out.LightIDs, e.Source)
		}
	}
	return out
}

// resyncLocked re-derives the Render nodes among targets and writes the
// results back in one pass. Returns the IDs whose lists changed.
func (s *Store) resyncLocked(targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	kinds := make(map[string]domain.NodeKind, len(s.nodes))
	for _, n := range s.nodes {
		kinds[n.ID] = n.Kind()
	}

	updates := make(map[string]domain.RenderData)
	var order []string
	for _, id := range targets {
		if kind, ok := kinds[id]; !ok || kind != domain.KindRender {
			continue
		}
		if _, seen := updates[id]; seen {
			continue
		}
		updates[id] = Derive(id, s.edges, kinds)
		order = append(order, id)
	}

	var changed []string
	for _, id := range order {
		i := s.nodeIndex(id)
		current, _ := s.nodes[i].Data.(domain.RenderData)
		next := updates[id]
		if slices.Equal(current.GeometryIDs, next.GeometryIDs) &&
			slices.Equal(current.LightIDs, next.LightIDs) {
			continue
		}
		s.nodes[i].Data = next
		changed = append(changed, id)
	}
	return changed
}
