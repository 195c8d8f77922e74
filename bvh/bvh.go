// Package bvh implements a bounding volume hierarchy over triangle geometry.
// Trees are built with the surface area heuristic and queried with an
// iterative, stack based traversal.
package bvh

import (
	"github.com/achilleasa/lux/geometry"
	"github.com/achilleasa/lux/types"
)

// Expected maximum tree depth. Deeper trees spill the traversal stack to
// the heap.
const stackSize = 64

// A BVH over a set of triangles. Once built the tree is immutable and safe
// for concurrent queries.
type BVH struct {
	geom geometry.Geometry

	// Flattened node arena. The root is at index 0.
	nodes []Node

	// Permutation of primitive indices; leaves reference ranges of it.
	indices []uint32

	bbox  types.BBox
	stats Stats
}

// Get the bounding box of the whole tree.
func (t *BVH) BBox() types.BBox {
	return t.bbox
}

// Get build statistics.
func (t *BVH) Stats() Stats {
	return t.stats
}

// Get the node arena.
func (t *BVH) Nodes() []Node {
	return t.nodes
}

// Get the primitive permutation array.
func (t *BVH) Indices() []uint32 {
	return t.indices
}

// Get the indexed geometry.
func (t *BVH) Geometry() geometry.Geometry {
	return t.geom
}

// Intersect a ray against the tree. If shadow is true the call only checks
// for occlusion and returns on the first hit without touching its.
// Otherwise it finds the closest hit and fills in its.
func (t *BVH) RayIntersect(ray types.Ray, its *Intersection, shadow bool) bool {
	if len(t.nodes) == 0 {
		return false
	}

	ray.AdaptEpsilon()
	ray.Update()

	var (
		stackBuf = [stackSize]uint32{}
		stack    = stackBuf[:0]
		nodeIdx  uint32
		found    bool
		hitPrim  uint32
		hitUV    types.Vec2
	)

	for {
		node := &t.nodes[nodeIdx]

		if node.BBox.RayIntersect(&ray) {
			if !node.IsLeaf() {
				stack = append(stack, node.RightChild())
				nodeIdx++
				continue
			}

			for i, end := node.Start(), node.Start()+node.Count(); i < end; i++ {
				prim := t.indices[i]
				uv, dist, hit := t.geom.Intersect(prim, &ray)
				if !hit {
					continue
				}
				if shadow {
					return true
				}

				ray.MaxT = dist
				hitUV = uv
				hitPrim = prim
				found = true
			}
		}

		if len(stack) == 0 {
			break
		}
		nodeIdx = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
	}

	if found && its != nil {
		its.fill(t.geom, hitPrim, hitUV, ray.MaxT)
	}
	return found
}
