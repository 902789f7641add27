// Package preview resolves what a Render node shows and tessellates it.
//
// Resolve turns a Render node's id lists into the actual Sphere, Box and
// Light nodes. Tessellate converts the resolved geometries into triangle
// meshes with sdfx marching cubes, for clients that draw the scene.
package preview

import (
	"qompath/internal/domain"
)

// Vec3 is a point in scene space
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Placement used by the editor's preview canvas
var (
	GeometryOrigin = Vec3{X: 0, Y: 0, Z: 0}
	LightPosition  = Vec3{X: 0, Y: 2, Z: 5}
)

// Geometry is a Sphere or Box node as drawn by a Render node
type Geometry struct {
	ID       string          `json:"id"`
	Kind     domain.NodeKind `json:"type"`
	Color    string          `json:"color"`
	Position Vec3            `json:"position"`
}

// Light is a Light node as drawn by a Render node
type Light struct {
	ID        string  `json:"id"`
	Intensity float64 `json:"intensity"`
	Position  Vec3    `json:"position"`
}

// Scene is the resolved content of one Render node
type Scene struct {
	RenderID   string     `json:"renderId"`
	Geometries []Geometry `json:"geometries"`
	Lights     []Light    `json:"lights"`
}

// Resolve looks up the nodes a Render node lists. Ids that no longer name a
// node of the right kind are skipped. Returns false if renderID is not a
// Render node.
func Resolve(g *domain.Graph, renderID string) (*Scene, bool) {
	node := g.Node(renderID)
	if node == nil {
		return nil, false
	}
	rd, ok := node.Data.(domain.RenderData)
	if !ok {
		return nil, false
	}

	scene := &Scene{
		RenderID:   renderID,
		Geometries: make([]Geometry, 0, len(rd.GeometryIDs)),
		Lights:     make([]Light, 0, len(rd.LightIDs)),
	}

	for _, id := range rd.GeometryIDs {
		n := g.Node(id)
		if n == nil {
			continue
		}
		switch d := n.Data.(type) {
		case domain.SphereData:
			scene.Geometries = append(scene.Geometries, Geometry{ID: id, Kind: domain.KindSphere, Color: d.Color, Position: GeometryOrigin})
		case domain.BoxData:
			scene.Geometries = append(scene.Geometries, Geometry{ID: id, Kind: domain.KindBox, Color: d.Color, Position: GeometryOrigin})
		case domain.LightData, domain.RenderData:
			// not a geometry
		}
	}

	for _, id := range rd.LightIDs {
		n := g.Node(id)
		if n == nil {
			continue
		}
		if d, ok := n.Data.(domain.LightData); ok {
			scene.Lights = append(scene.Lights, Light{ID: id, Intensity: d.Intensity, Position: LightPosition})
		}
	}

	return scene, true
}
