// Package geometry stores triangle mesh data and exposes it to the
// acceleration structure through the narrow Geometry interface.
package geometry

import "github.com/achilleasa/lux/types"

// The Geometry interface is the read-only view of triangle data consumed by
// the BVH. Triangles are addressed by a global index in [0, TriangleCount()).
type Geometry interface {
	// Get the total number of triangles.
	TriangleCount() uint32

	// Get the bounding box of all triangles.
	BBox() types.BBox

	// Get the bounding box of a single triangle.
	TriangleBBox(index uint32) types.BBox

	// Get the centroid of a single triangle.
	TriangleCentroid(index uint32) types.Vec3

	// Test a ray against a single triangle. On a hit within [ray.MinT,
	// ray.MaxT] it returns the barycentric (u, v) coordinates and the hit
	// distance.
	Intersect(index uint32, ray *types.Ray) (uv types.Vec2, t float32, hit bool)

	// Map a global triangle index to its owning mesh and the triangle
	// index local to that mesh.
	Resolve(index uint32) (mesh *Mesh, local uint32)
}
