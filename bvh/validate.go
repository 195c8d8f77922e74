package bvh

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Validate checks the structural invariants of the tree: the permutation
// array is a bijection over all primitives, every node box contains its
// children (or its primitives for leaves) and the root box matches the
// geometry bounds.
func (t *BVH) Validate() error {
	numPrims := t.geom.TriangleCount()
	if numPrims == 0 {
		if len(t.nodes) != 0 {
			return fmt.Errorf("%w: empty geometry produced %d nodes", ErrInvalidTree, len(t.nodes))
		}
		return nil
	}

	if uint32(len(t.indices)) != numPrims {
		return fmt.Errorf("%w: expected %d primitive indices; got %d", ErrInvalidTree, numPrims, len(t.indices))
	}

	seen := bitset.New(uint(numPrims))
	for pos, idx := range t.indices {
		if idx >= numPrims {
			return fmt.Errorf("%w: index %d at position %d is out of range", ErrInvalidTree, idx, pos)
		}
		if seen.Test(uint(idx)) {
			return fmt.Errorf("%w: primitive %d appears more than once", ErrInvalidTree, idx)
		}
		seen.Set(uint(idx))
	}
	if seen.Count() != uint(numPrims) {
		return fmt.Errorf("%w: expected %d distinct primitives; got %d", ErrInvalidTree, numPrims, seen.Count())
	}

	if t.nodes[0].BBox != t.geom.BBox() {
		return fmt.Errorf("%w: root bbox %v-%v differs from geometry bbox %v-%v", ErrInvalidTree, t.nodes[0].BBox.Min, t.nodes[0].BBox.Max, t.geom.BBox().Min, t.geom.BBox().Max)
	}

	// Every primitive must be reachable through exactly one leaf
	covered := bitset.New(uint(numPrims))
	stack := []uint32{0}
	for len(stack) > 0 {
		nodeIdx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if int(nodeIdx) >= len(t.nodes) {
			return fmt.Errorf("%w: node index %d out of range", ErrInvalidTree, nodeIdx)
		}
		node := &t.nodes[nodeIdx]
		switch {
		case node.IsUnused():
			return fmt.Errorf("%w: node %d references an unused slot", ErrInvalidTree, nodeIdx)
		case node.IsLeaf():
			for pos := node.Start(); pos < node.Start()+node.Count(); pos++ {
				if covered.Test(uint(pos)) {
					return fmt.Errorf("%w: permutation slot %d referenced by more than one leaf", ErrInvalidTree, pos)
				}
				covered.Set(uint(pos))
				if !node.BBox.Contains(t.geom.TriangleBBox(t.indices[pos])) {
					return fmt.Errorf("%w: leaf %d does not contain primitive %d", ErrInvalidTree, nodeIdx, t.indices[pos])
				}
			}
		default:
			left, right := nodeIdx+1, node.RightChild()
			if int(right) >= len(t.nodes) || right <= left {
				return fmt.Errorf("%w: node %d has invalid right child %d", ErrInvalidTree, nodeIdx, right)
			}
			for _, child := range []uint32{left, right} {
				if !node.BBox.Contains(t.nodes[child].BBox) {
					return fmt.Errorf("%w: node %d does not contain child %d", ErrInvalidTree, nodeIdx, child)
				}
			}
			stack = append(stack, right, left)
		}
	}

	if covered.Count() != uint(numPrims) {
		return fmt.Errorf("%w: leaves cover %d of %d primitives", ErrInvalidTree, covered.Count(), numPrims)
	}
	return nil
}
