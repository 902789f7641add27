package store

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"reflect"
	"testing"

	"qompath/internal/domain"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestStore creates a store with deterministic placement and edge IDs
func newTestStore(t *testing.T) *Store {
	t.Helper()
	n := 0
	return New(
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithEdgeIDs(func() string {
			n++
			return fmt.Sprintf("e%d", n)
		}),
	)
}

func mustAddNode(t *testing.T, s *Store, kind domain.NodeKind) string {
	t.Helper()
	id, change := s.AddNode(kind, nil)
	if id == "" || change.Empty() {
		t.Fatalf("failed to add %s node", kind)
	}
	return id
}

func mustAddEdge(t *testing.T, s *Store, source, target string, handle domain.Handle) string {
	t.Helper()
	id, change := s.AddEdge(source, target, handle)
	if id == "" || change.Empty() {
		t.Fatalf("failed to add edge %s -> %s", source, target)
	}
	return id
}

func renderData(t *testing.T, s *Store, id string) domain.RenderData {
	t.Helper()
	node, ok := s.Node(id)
	if !ok {
		t.Fatalf("render node %s not found", id)
	}
	rd, ok := node.Data.(domain.RenderData)
	if !ok {
		t.Fatalf("node %s is %T, not RenderData", id, node.Data)
	}
	return rd
}

func assertIDs(t *testing.T, label string, want, got []string) {
	t.Helper()
	if len(want) == 0 && len(got) == 0 {
		return
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("%s: expected %v, got %v", label, want, got)
	}
}

// ============================================================================
// Node Tests
// ============================================================================

func TestAddNode(t *testing.T) {
	t.Run("allocates sequential ids", func(t *testing.T) {
		s := newTestStore(t)
		a := mustAddNode(t, s, domain.KindSphere)
		b := mustAddNode(t, s, domain.KindBox)

		if a != "dndnode_0" || b != "dndnode_1" {
			t.Errorf("expected dndnode_0, dndnode_1; got %s, %s", a, b)
		}
	})

	t.Run("uses default data when none given", func(t *testing.T) {
		s := newTestStore(t)
		id := mustAddNode(t, s, domain.KindLight)
		node, _ := s.Node(id)

		if node.Data != (domain.LightData{Intensity: 1}) {
			t.Errorf("expected default light data, got %+v", node.Data)
		}
	})

	t.Run("keeps initial data of matching kind", func(t *testing.T) {
		s := newTestStore(t)
		id, _ := s.AddNode(domain.KindSphere, domain.SphereData{Color: "teal"})
		node, _ := s.Node(id)

		if node.Data != (domain.SphereData{Color: "teal"}) {
			t.Errorf("expected teal sphere, got %+v", node.Data)
		}
	})

	t.Run("render nodes start with empty lists", func(t *testing.T) {
		s := newTestStore(t)
		id, _ := s.AddNode(domain.KindRender, domain.RenderData{GeometryIDs: []string{"ghost"}})
		rd := renderData(t, s, id)

		if len(rd.GeometryIDs) != 0 || len(rd.LightIDs) != 0 {
			t.Errorf("expected empty render lists, got %+v", rd)
		}
	})

	t.Run("places nodes inside the canvas span", func(t *testing.T) {
		s := newTestStore(t)
		for i := 0; i < 20; i++ {
			id := mustAddNode(t, s, domain.KindBox)
			node, _ := s.Node(id)
			if node.Position.X < 0 || node.Position.X >= canvasSpan ||
				node.Position.Y < 0 || node.Position.Y >= canvasSpan {
				t.Fatalf("position out of range: %+v", node.Position)
			}
		}
	})

	t.Run("bumps revision once per node", func(t *testing.T) {
		s := newTestStore(t)
		mustAddNode(t, s, domain.KindBox)
		mustAddNode(t, s, domain.KindBox)

		if s.Revision() != 2 {
			t.Errorf("expected revision 2, got %d", s.Revision())
		}
	})
}

func TestRemoveNodeCascades(t *testing.T) {
	s := newTestStore(t)
	sphere := mustAddNode(t, s, domain.KindSphere)
	box := mustAddNode(t, s, domain.KindBox)
	light := mustAddNode(t, s, domain.KindLight)
	render := mustAddNode(t, s, domain.KindRender)

	mustAddEdge(t, s, sphere, render, domain.HandleGeometryIn)
	mustAddEdge(t, s, box, render, domain.HandleGeometryIn)
	mustAddEdge(t, s, light, render, domain.HandleLightIn)
	mustAddEdge(t, s, sphere, render, domain.HandleGeometryIn)

	before := s.Revision()
	change := s.RemoveNode(sphere)

	if change.Revision != before+1 {
		t.Errorf("expected a single revision bump, got %d -> %d", before, change.Revision)
	}
	if len(change.Edges) != 2 {
		t.Errorf("expected 2 cascaded edges, got %v", change.Edges)
	}
	for _, e := range s.Snapshot().Edges {
		if e.Touches(sphere) {
			t.Errorf("edge %s still touches removed node", e.ID)
		}
	}

	rd := renderData(t, s, render)
	assertIDs(t, "geometryIds", []string{box}, rd.GeometryIDs)
	assertIDs(t, "lightIds", []string{light}, rd.LightIDs)
	assertIDs(t, "derived", []string{render}, change.Derived)
}

func TestRemoveRenderNode(t *testing.T) {
	s := newTestStore(t)
	light := mustAddNode(t, s, domain.KindLight)
	render := mustAddNode(t, s, domain.KindRender)
	mustAddEdge(t, s, light, render, domain.HandleLightIn)

	change := s.RemoveNode(render)

	if len(change.Derived) != 0 {
		t.Errorf("expected no derived updates, got %v", change.Derived)
	}
	if len(s.Snapshot().Edges) != 0 {
		t.Error("expected edge into removed render node to be gone")
	}
}

// ============================================================================
// Edge Tests
// ============================================================================

func TestAddEdgeDerivesRenderLists(t *testing.T) {
	s := newTestStore(t)
	sphere := mustAddNode(t, s, domain.KindSphere)
	box := mustAddNode(t, s, domain.KindBox)
	light := mustAddNode(t, s, domain.KindLight)
	render := mustAddNode(t, s, domain.KindRender)

	mustAddEdge(t, s, box, render, domain.HandleGeometryIn)
	mustAddEdge(t, s, sphere, render, domain.HandleGeometryIn)
	_, lightChange := s.AddEdge(light, render, domain.HandleLightIn)

	rd := renderData(t, s, render)
	assertIDs(t, "geometryIds", []string{box, sphere}, rd.GeometryIDs)
	assertIDs(t, "lightIds", []string{light}, rd.LightIDs)
	assertIDs(t, "derived", []string{render}, lightChange.Derived)
}

func TestAddEdgeInert(t *testing.T) {
	tests := []struct {
		name   string
		source domain.NodeKind
		target domain.NodeKind
		handle domain.Handle
	}{
		{"light into geometry input", domain.KindLight, domain.KindRender, domain.HandleGeometryIn},
		{"sphere into light input", domain.KindSphere, domain.KindRender, domain.HandleLightIn},
		{"box without handle", domain.KindBox, domain.KindRender, domain.HandleNone},
		{"sphere into box", domain.KindSphere, domain.KindBox, domain.HandleGeometryIn},
		{"render into render", domain.KindRender, domain.KindRender, domain.HandleGeometryIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			source := mustAddNode(t, s, tt.source)
			target := mustAddNode(t, s, tt.target)

			id, change := s.AddEdge(source, target, tt.handle)

			if id == "" {
				t.Fatal("expected inert edge to still be added")
			}
			if len(change.Derived) != 0 {
				t.Errorf("expected no derived updates, got %v", change.Derived)
			}
			if _, ok := s.Edge(id); !ok {
				t.Error("expected edge to be stored")
			}
			if tt.target == domain.KindRender {
				rd := renderData(t, s, target)
				if len(rd.GeometryIDs) != 0 || len(rd.LightIDs) != 0 {
					t.Errorf("expected untouched render lists, got %+v", rd)
				}
			}
		})
	}
}

func TestAddEdgeUnknownEndpoint(t *testing.T) {
	s := newTestStore(t)
	render := mustAddNode(t, s, domain.KindRender)
	before := s.Revision()

	id, change := s.AddEdge("dndnode_99", render, domain.HandleGeometryIn)

	if id != "" || !change.Empty() {
		t.Errorf("expected no-op, got id=%q change=%+v", id, change)
	}
	if s.Revision() != before {
		t.Error("expected revision to stay unchanged")
	}
}

func TestTwoLightsThenDisconnectOne(t *testing.T) {
	s := newTestStore(t)
	l1 := mustAddNode(t, s, domain.KindLight)
	l2 := mustAddNode(t, s, domain.KindLight)
	render := mustAddNode(t, s, domain.KindRender)

	e1 := mustAddEdge(t, s, l1, render, domain.HandleLightIn)
	mustAddEdge(t, s, l2, render, domain.HandleLightIn)

	if got := len(renderData(t, s, render).LightIDs); got != 2 {
		t.Fatalf("expected 2 lights, got %d", got)
	}

	s.RemoveEdge(e1)

	rd := renderData(t, s, render)
	assertIDs(t, "lightIds", []string{l2}, rd.LightIDs)
}

func TestDuplicateSourceSurvivesPartialRemoval(t *testing.T) {
	s := newTestStore(t)
	light := mustAddNode(t, s, domain.KindLight)
	render := mustAddNode(t, s, domain.KindRender)

	e1 := mustAddEdge(t, s, light, render, domain.HandleLightIn)
	mustAddEdge(t, s, light, render, domain.HandleLightIn)

	assertIDs(t, "before", []string{light, light}, renderData(t, s, render).LightIDs)

	s.RemoveEdge(e1)

	assertIDs(t, "after", []string{light}, renderData(t, s, render).LightIDs)
}

func TestRemoveEdgesBatch(t *testing.T) {
	s := newTestStore(t)
	sphere := mustAddNode(t, s, domain.KindSphere)
	light := mustAddNode(t, s, domain.KindLight)
	r1 := mustAddNode(t, s, domain.KindRender)
	r2 := mustAddNode(t, s, domain.KindRender)

	e1 := mustAddEdge(t, s, sphere, r1, domain.HandleGeometryIn)
	e2 := mustAddEdge(t, s, light, r2, domain.HandleLightIn)
	mustAddEdge(t, s, light, r1, domain.HandleLightIn)

	before := s.Revision()
	change := s.RemoveEdges([]string{e1, e2, "missing"})

	if change.Revision != before+1 {
		t.Errorf("expected one revision for the batch, got %d -> %d", before, change.Revision)
	}
	assertIDs(t, "removed", []string{e1, e2}, change.Edges)
	assertIDs(t, "derived", []string{r1, r2}, change.Derived)
	assertIDs(t, "r1 geometry", nil, renderData(t, s, r1).GeometryIDs)
	assertIDs(t, "r1 lights", []string{light}, renderData(t, s, r1).LightIDs)
	assertIDs(t, "r2 lights", nil, renderData(t, s, r2).LightIDs)
}

func TestStaleIDsAreNoOps(t *testing.T) {
	s := newTestStore(t)
	mustAddNode(t, s, domain.KindSphere)
	before := s.Snapshot()
	rev := s.Revision()

	color := "red"
	changes := []Change{
		s.RemoveNode("missing"),
		s.RemoveEdge("missing"),
		s.RemoveEdges(nil),
		s.MoveNode("missing", domain.Position{X: 1}),
	}
	patchChange, err := s.UpdateNodeData("missing", DataPatch{Color: &color})
	if err != nil {
		t.Fatalf("expected no error for stale id, got %v", err)
	}
	changes = append(changes, patchChange)

	for i, c := range changes {
		if !c.Empty() {
			t.Errorf("change %d: expected empty, got %+v", i, c)
		}
	}
	if s.Revision() != rev {
		t.Error("expected revision to stay unchanged")
	}
	if !reflect.DeepEqual(before, s.Snapshot()) {
		t.Error("expected graph to stay unchanged")
	}
}

// ============================================================================
// Field Edit Tests
// ============================================================================

func TestUpdateNodeData(t *testing.T) {
	color := "crimson"
	intensity := 3.5

	t.Run("sets sphere color", func(t *testing.T) {
		s := newTestStore(t)
		id := mustAddNode(t, s, domain.KindSphere)

		change, err := s.UpdateNodeData(id, DataPatch{Color: &color})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if change.Empty() {
			t.Error("expected a change")
		}
		node, _ := s.Node(id)
		if node.Data != (domain.SphereData{Color: color}) {
			t.Errorf("expected crimson sphere, got %+v", node.Data)
		}
	})

	t.Run("sets light intensity", func(t *testing.T) {
		s := newTestStore(t)
		id := mustAddNode(t, s, domain.KindLight)

		if _, err := s.UpdateNodeData(id, DataPatch{Intensity: &intensity}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		node, _ := s.Node(id)
		if node.Data != (domain.LightData{Intensity: intensity}) {
			t.Errorf("expected intensity 3.5, got %+v", node.Data)
		}
	})

	t.Run("unchanged data is a no-op", func(t *testing.T) {
		s := newTestStore(t)
		sphere := mustAddNode(t, s, domain.KindSphere)
		light := mustAddNode(t, s, domain.KindLight)
		rev := s.Revision()

		same := domain.DefaultSphereColor
		unit := domain.DefaultLightIntensity
		patches := []struct {
			id    string
			patch DataPatch
		}{
			{sphere, DataPatch{}},
			{sphere, DataPatch{Color: &same}},
			{light, DataPatch{}},
			{light, DataPatch{Intensity: &unit}},
		}
		for i, p := range patches {
			change, err := s.UpdateNodeData(p.id, p.patch)
			if err != nil {
				t.Fatalf("patch %d: unexpected error: %v", i, err)
			}
			if !change.Empty() {
				t.Errorf("patch %d: expected empty change, got %+v", i, change)
			}
		}
		if s.Revision() != rev {
			t.Errorf("expected revision %d, got %d", rev, s.Revision())
		}
	})

	t.Run("rejects intensity on box", func(t *testing.T) {
		s := newTestStore(t)
		id := mustAddNode(t, s, domain.KindBox)

		_, err := s.UpdateNodeData(id, DataPatch{Intensity: &intensity})
		if !errors.Is(err, ErrFieldNotApplicable) {
			t.Errorf("expected ErrFieldNotApplicable, got %v", err)
		}
	})

	t.Run("render data is not patchable", func(t *testing.T) {
		s := newTestStore(t)
		id := mustAddNode(t, s, domain.KindRender)

		_, err := s.UpdateNodeData(id, DataPatch{Color: &color})
		if !errors.Is(err, ErrFieldNotApplicable) {
			t.Errorf("expected ErrFieldNotApplicable, got %v", err)
		}
		change, err := s.UpdateNodeData(id, DataPatch{})
		if err != nil || !change.Empty() {
			t.Errorf("expected empty patch to be a no-op, got %+v, %v", change, err)
		}
	})
}

func TestMoveNodeAndViewport(t *testing.T) {
	s := newTestStore(t)
	id := mustAddNode(t, s, domain.KindBox)

	s.MoveNode(id, domain.Position{X: 12, Y: 34})
	s.SetViewport(domain.Viewport{X: 5, Y: 6, Zoom: 2})

	node, _ := s.Node(id)
	if node.Position != (domain.Position{X: 12, Y: 34}) {
		t.Errorf("expected moved position, got %+v", node.Position)
	}
	g := s.Snapshot()
	if g.Viewport == nil || *g.Viewport != (domain.Viewport{X: 5, Y: 6, Zoom: 2}) {
		t.Errorf("expected viewport to be set, got %+v", g.Viewport)
	}
}

// ============================================================================
// Replacement Tests
// ============================================================================

func TestReplaceAll(t *testing.T) {
	t.Run("installs graph and re-derives render lists", func(t *testing.T) {
		s := newTestStore(t)

		g := domain.NewGraph()
		g.AddNode(*domain.NewNode("dndnode_0", domain.Position{}, domain.SphereData{Color: "red"}))
		g.AddNode(*domain.NewNode("dndnode_1", domain.Position{}, domain.RenderData{
			GeometryIDs: []string{"stale"},
		}))
		g.AddEdge(*domain.NewEdge("e1", "dndnode_0", "dndnode_1", domain.HandleGeometryIn))

		change := s.ReplaceAll(g)

		if change.Empty() {
			t.Fatal("expected a change")
		}
		assertIDs(t, "derived", []string{"dndnode_1"}, change.Derived)
		assertIDs(t, "geometryIds", []string{"dndnode_0"}, renderData(t, s, "dndnode_1").GeometryIDs)
	})

	t.Run("does not alias the caller's graph", func(t *testing.T) {
		s := newTestStore(t)
		g := domain.NewGraph()
		g.AddNode(*domain.NewNode("a", domain.Position{}, domain.BoxData{Color: "blue"}))

		s.ReplaceAll(g)
		g.Nodes[0].ID = "mutated"

		if _, ok := s.Node("a"); !ok {
			t.Error("expected store to keep its own copy")
		}
	})

	t.Run("new ids skip imported ids", func(t *testing.T) {
		s := newTestStore(t)
		g := domain.NewGraph()
		g.AddNode(*domain.NewNode("dndnode_0", domain.Position{}, domain.BoxData{Color: "blue"}))
		g.AddNode(*domain.NewNode("dndnode_1", domain.Position{}, domain.BoxData{Color: "blue"}))
		s.ReplaceAll(g)

		id := mustAddNode(t, s, domain.KindSphere)
		if id != "dndnode_2" {
			t.Errorf("expected dndnode_2, got %s", id)
		}
	})
}
