package geometry

import (
	"fmt"

	"github.com/achilleasa/lux/types"
	"github.com/chewxy/math32"
)

// Threshold below which the ray/triangle determinant is treated as zero.
const detEpsilon float32 = 1e-8

// A triangle mesh. Normals and UVs are optional; when present they are
// indexed by the same face indices as the vertex positions.
type Mesh struct {
	Name string

	Positions []types.Vec3
	Normals   []types.Vec3
	UVs       []types.Vec2
	Faces     [][3]uint32

	bbox types.BBox
}

// Create a mesh and validate its face indices.
func NewMesh(name string, positions []types.Vec3, normals []types.Vec3, uvs []types.Vec2, faces [][3]uint32) (*Mesh, error) {
	if len(normals) != 0 && len(normals) != len(positions) {
		return nil, fmt.Errorf("mesh %q: expected %d normals; got %d", name, len(positions), len(normals))
	}
	if len(uvs) != 0 && len(uvs) != len(positions) {
		return nil, fmt.Errorf("mesh %q: expected %d uvs; got %d", name, len(positions), len(uvs))
	}

	m := &Mesh{
		Name:      name,
		Positions: positions,
		Normals:   normals,
		UVs:       uvs,
		Faces:     faces,
		bbox:      types.EmptyBBox(),
	}

	for faceIndex, face := range faces {
		for _, vIndex := range face {
			if int(vIndex) >= len(positions) {
				return nil, fmt.Errorf("mesh %q: face %d references vertex %d; mesh has %d vertices", name, faceIndex, vIndex, len(positions))
			}
			m.bbox = m.bbox.Expand(positions[vIndex])
		}
	}

	return m, nil
}

// Get the number of triangles.
func (m *Mesh) TriangleCount() uint32 {
	return uint32(len(m.Faces))
}

// Get the bounding box of all referenced vertices.
func (m *Mesh) BBox() types.BBox {
	return m.bbox
}

// Returns true if the mesh defines per-vertex normals.
func (m *Mesh) HasNormals() bool {
	return len(m.Normals) != 0
}

// Returns true if the mesh defines per-vertex texture coordinates.
func (m *Mesh) HasUVs() bool {
	return len(m.UVs) != 0
}

// Get the vertex positions of a triangle.
func (m *Mesh) Vertices(index uint32) (p0, p1, p2 types.Vec3) {
	f := m.Faces[index]
	return m.Positions[f[0]], m.Positions[f[1]], m.Positions[f[2]]
}

// Get the bounding box of a triangle.
func (m *Mesh) TriangleBBox(index uint32) types.BBox {
	p0, p1, p2 := m.Vertices(index)
	return types.BBoxFromPoints(p0, p1, p2)
}

// Get the centroid of a triangle.
func (m *Mesh) TriangleCentroid(index uint32) types.Vec3 {
	p0, p1, p2 := m.Vertices(index)
	return p0.Add(p1).Add(p2).Mul(1.0 / 3.0)
}

// Get the area of a triangle.
func (m *Mesh) TriangleArea(index uint32) float32 {
	p0, p1, p2 := m.Vertices(index)
	return 0.5 * p1.Sub(p0).Cross(p2.Sub(p0)).Len()
}

// Intersect a ray with a triangle using the Möller–Trumbore algorithm.
func (m *Mesh) Intersect(index uint32, ray *types.Ray) (uv types.Vec2, t float32, hit bool) {
	p0, p1, p2 := m.Vertices(index)

	edge1 := p1.Sub(p0)
	edge2 := p2.Sub(p0)

	pvec := ray.Dir.Cross(edge2)

	// Ray lies in (or is nearly parallel to) the triangle plane
	det := edge1.Dot(pvec)
	if det > -detEpsilon && det < detEpsilon {
		return uv, 0, false
	}
	invDet := 1.0 / det

	tvec := ray.Origin.Sub(p0)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return uv, 0, false
	}

	qvec := tvec.Cross(edge1)
	v := ray.Dir.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return uv, 0, false
	}

	t = edge2.Dot(qvec) * invDet
	if t < ray.MinT || t > ray.MaxT || math32.IsNaN(t) {
		return uv, 0, false
	}

	return types.Vec2{u, v}, t, true
}

// Resolve returns the mesh itself; a lone mesh owns every triangle.
func (m *Mesh) Resolve(index uint32) (*Mesh, uint32) {
	return m, index
}

// Surface data reconstructed at a point on a triangle.
type Surface struct {
	P         types.Vec3
	UV        types.Vec2
	GeoNormal types.Vec3
	ShNormal  types.Vec3
}

// Interpolate surface attributes for a triangle at barycentric coordinates
// (u, v). When the mesh has no texture coordinates the barycentric pair is
// reported as UV. Without shading normals the face normal is used.
func (m *Mesh) Interpolate(index uint32, uv types.Vec2) Surface {
	f := m.Faces[index]
	b0, b1, b2 := 1-uv[0]-uv[1], uv[0], uv[1]

	p0, p1, p2 := m.Positions[f[0]], m.Positions[f[1]], m.Positions[f[2]]
	s := Surface{
		P:         p0.Mul(b0).Add(p1.Mul(b1)).Add(p2.Mul(b2)),
		UV:        uv,
		GeoNormal: p1.Sub(p0).Cross(p2.Sub(p0)).Normalize(),
	}

	if m.HasUVs() {
		s.UV = m.UVs[f[0]].Mul(b0).Add(m.UVs[f[1]].Mul(b1)).Add(m.UVs[f[2]].Mul(b2))
	}

	s.ShNormal = s.GeoNormal
	if m.HasNormals() {
		n := m.Normals[f[0]].Mul(b0).Add(m.Normals[f[1]].Mul(b1)).Add(m.Normals[f[2]].Mul(b2)).Normalize()
		if n != (types.Vec3{}) {
			s.ShNormal = n
		}
	}

	return s
}
