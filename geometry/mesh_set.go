package geometry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/achilleasa/lux/types"
)

var ErrEmptyMesh = errors.New("geometry: mesh contains no triangles")

// A MeshSet addresses the triangles of several meshes through one global
// index space. offsets[i] is the global index of the first triangle of mesh
// i; a trailing entry holds the total triangle count.
type MeshSet struct {
	meshes  []*Mesh
	offsets []uint32
	bbox    types.BBox
}

// Create an empty mesh set.
func NewMeshSet(meshes ...*Mesh) (*MeshSet, error) {
	s := &MeshSet{
		offsets: []uint32{0},
		bbox:    types.EmptyBBox(),
	}
	for _, m := range meshes {
		if err := s.Add(m); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Register a mesh. Empty meshes are rejected so that offsets stay strictly
// increasing.
func (s *MeshSet) Add(m *Mesh) error {
	if m.TriangleCount() == 0 {
		return fmt.Errorf("%w: %q", ErrEmptyMesh, m.Name)
	}

	s.meshes = append(s.meshes, m)
	s.offsets = append(s.offsets, s.offsets[len(s.offsets)-1]+m.TriangleCount())
	s.bbox = s.bbox.Union(m.BBox())
	return nil
}

// Get the registered meshes.
func (s *MeshSet) Meshes() []*Mesh {
	return s.meshes
}

// Get the global index of the first triangle of each mesh.
func (s *MeshSet) Offsets() []uint32 {
	return s.offsets[:len(s.meshes)]
}

// Find the index of the mesh owning a global triangle index.
func (s *MeshSet) FindMesh(index uint32) int {
	// First offset strictly greater than index, minus one
	return sort.Search(len(s.offsets), func(i int) bool { return s.offsets[i] >= index+1 }) - 1
}

// Map a global triangle index to its mesh and local index.
func (s *MeshSet) Resolve(index uint32) (*Mesh, uint32) {
	meshIndex := s.FindMesh(index)
	return s.meshes[meshIndex], index - s.offsets[meshIndex]
}

func (s *MeshSet) TriangleCount() uint32 {
	return s.offsets[len(s.offsets)-1]
}

func (s *MeshSet) BBox() types.BBox {
	return s.bbox
}

func (s *MeshSet) TriangleBBox(index uint32) types.BBox {
	m, local := s.Resolve(index)
	return m.TriangleBBox(local)
}

func (s *MeshSet) TriangleCentroid(index uint32) types.Vec3 {
	m, local := s.Resolve(index)
	return m.TriangleCentroid(local)
}

func (s *MeshSet) Intersect(index uint32, ray *types.Ray) (types.Vec2, float32, bool) {
	m, local := s.Resolve(index)
	return m.Intersect(local, ray)
}
