package bvh

import (
	"fmt"

	"github.com/achilleasa/lux/types"
)

const (
	// Marks a node slot that the builder never assigned.
	unusedSlot uint32 = ^uint32(0)

	// Set in Node.meta for leaf nodes.
	leafFlag uint32 = 1 << 31
)

// A BVH node. Nodes are stored in a flat arena; the left child of an inner
// node always follows its parent.
type Node struct {
	BBox types.BBox

	// If this is a leaf then data contains the index of the first primitive
	// in the permutation array. If this is an inner node then data contains
	// the index of the right child.
	data uint32

	// If this is a leaf then meta contains leafFlag | primitive count. If
	// this is an inner node it contains the split axis. Unused slots are set
	// to unusedSlot.
	meta uint32
}

// Get the number of node slots reserved for a subtree covering n primitives.
// A subtree with n leaves never needs more than 2n-1 nodes so this bound
// lets parallel build tasks place their nodes without coordination.
func SlotsFor(n uint32) uint32 {
	return 2 * n
}

func newLeaf(bbox types.BBox, start, count uint32) Node {
	return Node{BBox: bbox, data: start, meta: leafFlag | count}
}

func newInner(bbox types.BBox, axis int, rightChild uint32) Node {
	return Node{BBox: bbox, data: rightChild, meta: uint32(axis)}
}

func unusedNode() Node {
	return Node{BBox: types.EmptyBBox(), data: unusedSlot, meta: unusedSlot}
}

// Returns true if this slot was never assigned by the builder.
func (n *Node) IsUnused() bool {
	return n.meta == unusedSlot
}

// Returns true if this is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.meta != unusedSlot && n.meta&leafFlag != 0
}

// Get the index of the first primitive in the permutation array.
func (n *Node) Start() uint32 {
	return n.data
}

// Get the number of primitives in a leaf.
func (n *Node) Count() uint32 {
	return n.meta &^ leafFlag
}

// Get the split axis of an inner node.
func (n *Node) Axis() int {
	return int(n.meta)
}

// Get the index of the right child of an inner node.
func (n *Node) RightChild() uint32 {
	return n.data
}

func (n Node) String() string {
	switch {
	case n.IsUnused():
		return "Node[unused]"
	case n.IsLeaf():
		return fmt.Sprintf("Leaf[start=%d, count=%d, bbox=%v-%v]", n.Start(), n.Count(), n.BBox.Min, n.BBox.Max)
	default:
		return fmt.Sprintf("Inner[axis=%d, right=%d, bbox=%v-%v]", n.Axis(), n.RightChild(), n.BBox.Min, n.BBox.Max)
	}
}
