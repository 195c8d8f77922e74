package bvh

import (
	"fmt"

	"github.com/achilleasa/lux/geometry"
	"github.com/achilleasa/lux/types"
)

// Describes the closest surface hit found by a ray query.
type Intersection struct {
	// Distance along the ray.
	T float32

	// Hit position.
	P types.Vec3

	// Interpolated texture coordinates. Falls back to the barycentric
	// coordinates when the mesh has no UVs.
	UV types.Vec2

	// Frame around the face normal.
	GeoFrame types.Frame

	// Frame around the interpolated shading normal.
	ShFrame types.Frame

	// The hit mesh and the triangle index within it.
	Mesh     *geometry.Mesh
	Triangle uint32

	// The global triangle index.
	Primitive uint32
}

func (its *Intersection) fill(geom geometry.Geometry, prim uint32, uv types.Vec2, t float32) {
	mesh, local := geom.Resolve(prim)
	surface := mesh.Interpolate(local, uv)

	its.T = t
	its.P = surface.P
	its.UV = surface.UV
	its.GeoFrame = types.NewFrame(surface.GeoNormal)
	its.ShFrame = types.NewFrame(surface.ShNormal)
	its.Mesh = mesh
	its.Triangle = local
	its.Primitive = prim
}

func (its *Intersection) String() string {
	name := "<nil>"
	if its.Mesh != nil {
		name = its.Mesh.Name
	}
	return fmt.Sprintf("Intersection[t=%g, p=%v, uv=%v, n=%v, mesh=%s, tri=%d]", its.T, its.P, its.UV, its.ShFrame.N, name, its.Triangle)
}
