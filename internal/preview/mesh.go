package preview

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"qompath/internal/domain"
)

// DefaultMeshCells controls marching cubes resolution when none is configured
const DefaultMeshCells = 32

// Mesh is a flat triangle list for one geometry
type Mesh struct {
	ID       string    `json:"id"`
	Color    string    `json:"color"`
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
}

// TriangleCount returns the number of triangles
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Tessellate meshes every geometry of the scene: spheres of radius 1 and
// unit boxes, translated to their position.
func Tessellate(scene *Scene, cells int) ([]Mesh, error) {
	if cells <= 0 {
		cells = DefaultMeshCells
	}

	meshes := make([]Mesh, 0, len(scene.Geometries))
	for _, geom := range scene.Geometries {
		solid, err := solidFor(geom)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s %s: %w", geom.Kind, geom.ID, err)
		}
		mesh := toMesh(solid, cells)
		mesh.ID = geom.ID
		mesh.Color = geom.Color
		meshes = append(meshes, *mesh)
	}
	return meshes, nil
}

func solidFor(geom Geometry) (sdf.SDF3, error) {
	var (
		s   sdf.SDF3
		err error
	)
	switch geom.Kind {
	case domain.KindSphere:
		s, err = sdf.Sphere3D(1)
	case domain.KindBox:
		s, err = sdf.Box3D(v3.Vec{X: 1, Y: 1, Z: 1}, 0)
	case domain.KindLight, domain.KindRender:
		return nil, fmt.Errorf("%s is not a geometry", geom.Kind)
	default:
		return nil, fmt.Errorf("unknown node kind %d", int(geom.Kind))
	}
	if err != nil {
		return nil, err
	}

	p := geom.Position
	if p != (Vec3{}) {
		s = sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: p.X, Y: p.Y, Z: p.Z}))
	}
	return s, nil
}

// toMesh runs marching cubes and flattens the triangles with face normals
func toMesh(s sdf.SDF3, cells int) *Mesh {
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	numVerts := len(triangles) * 3
	mesh := &Mesh{
		Vertices: make([]float32, 0, numVerts*3),
		Normals:  make([]float32, 0, numVerts*3),
		Indices:  make([]uint32, 0, numVerts),
	}

	for i, tri := range triangles {
		n := tri.Normal()
		for j := 0; j < 3; j++ {
			v := tri[j]
			mesh.Vertices = append(mesh.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			mesh.Normals = append(mesh.Normals, float32(n.X), float32(n.Y), float32(n.Z))
			mesh.Indices = append(mesh.Indices, uint32(i*3+j))
		}
	}
	return mesh
}
