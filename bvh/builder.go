package bvh

import (
	"fmt"
	"time"

	"github.com/achilleasa/lux/geometry"
	"github.com/achilleasa/lux/log"
	"github.com/achilleasa/lux/types"
	"golang.org/x/sync/errgroup"
)

// Builder options.
type Options struct {
	// Ranges with at least this many primitives build their two children
	// as concurrent tasks. Smaller ranges recurse on the calling goroutine.
	SerialThreshold uint32

	// SAH cost model constants.
	TraversalCost    float32
	IntersectionCost float32

	// Remove unused arena slots once the build completes.
	Compact bool

	// Track the ranges owned by concurrently running build tasks and fail
	// the build if two of them ever overlap.
	VerifyRanges bool
}

// Get the default builder options.
func DefaultOptions() Options {
	return Options{
		SerialThreshold:  32,
		TraversalCost:    1,
		IntersectionCost: 1,
		Compact:          true,
	}
}

type builder struct {
	opts Options
	geom geometry.Geometry

	// Shared arrays. Every build task only touches the sub-slices that
	// correspond to its own primitive and node slot ranges.
	nodes     []Node
	indices   []uint32
	sortTmp   []uint32
	leftAreas []float32

	// Per-primitive data cached before the build starts.
	bboxes    []types.BBox
	centroids []types.Vec3

	guard *rangeGuard
}

// Build a BVH over the triangles exposed by geom using the surface area
// heuristic. An empty geometry yields a BVH that never reports a hit.
func Build(geom geometry.Geometry, opts Options) (*BVH, error) {
	logger := log.New("bvh")
	start := time.Now()

	numPrims := geom.TriangleCount()
	tree := &BVH{
		geom: geom,
		bbox: geom.BBox(),
	}
	if numPrims == 0 {
		tree.bbox = types.EmptyBBox()
		logger.Notice("scene contains no primitives; skipping BVH construction")
		return tree, nil
	}

	b := &builder{
		opts:      opts,
		geom:      geom,
		nodes:     make([]Node, SlotsFor(numPrims)),
		indices:   make([]uint32, numPrims),
		sortTmp:   make([]uint32, numPrims),
		leftAreas: make([]float32, numPrims),
		bboxes:    make([]types.BBox, numPrims),
		centroids: make([]types.Vec3, numPrims),
	}
	if opts.VerifyRanges {
		b.guard = newRangeGuard()
	}

	for i := range b.nodes {
		b.nodes[i] = unusedNode()
	}
	for idx := uint32(0); idx < numPrims; idx++ {
		b.indices[idx] = idx
		b.bboxes[idx] = geom.TriangleBBox(idx)
		b.centroids[idx] = geom.TriangleCentroid(idx)
	}

	if err := b.build(0, 0, numPrims); err != nil {
		return nil, err
	}

	tree.nodes = b.nodes
	tree.indices = b.indices
	slots := len(b.nodes)
	if opts.Compact {
		tree.nodes = compact(b.nodes)
	}

	tree.stats = collectStats(tree.nodes)
	tree.stats.Primitives = numPrims
	tree.stats.Slots = slots
	tree.stats.Compacted = opts.Compact
	tree.stats.BuildTime = time.Since(start)
	if b.guard != nil {
		tree.stats.GuardedTasks = b.guard.checked
		tree.stats.MaxConcurrentTasks = b.guard.maxActive
	}

	logger.Infof(
		"BVH build time: %d ms, primitives: %d, nodes: %d (of %d slots), leaves: %d, max depth: %d",
		tree.stats.BuildTime.Nanoseconds()/1e6,
		numPrims, tree.stats.Nodes, slots, tree.stats.Leaves, tree.stats.MaxDepth,
	)
	return tree, nil
}

// Partition the primitive range [start, end) and store its subtree at
// nodeIndex. The subtree writes only to node slots
// [nodeIndex, nodeIndex + SlotsFor(end-start) - 1).
func (b *builder) build(nodeIndex, start, end uint32) error {
	size := end - start
	slots := span{nodeIndex, nodeIndex + SlotsFor(size) - 1}
	if slots.end > uint32(len(b.nodes)) {
		return fmt.Errorf("%w: range [%d, %d) placed at node %d", ErrSlotOverflow, start, end, nodeIndex)
	}

	var guardID uint64
	if b.guard != nil {
		var err error
		if guardID, err = b.guard.acquire(span{start, end}, slots); err != nil {
			return err
		}
	}

	indices := b.indices[start:end]
	if size == 1 {
		b.nodes[nodeIndex] = newLeaf(b.bboxes[indices[0]], start, 1)
		b.release(guardID)
		return nil
	}

	var (
		bbox      types.BBox
		invArea   float32
		leafCost  = b.opts.IntersectionCost * float32(size)
		bestCost  = leafCost
		bestAxis  = -1
		bestIndex uint32
		leftAreas = b.leftAreas[start:end]
		sortTmp   = b.sortTmp[start:end]
	)

	for axis := 0; axis < 3; axis++ {
		sortByAxis(indices, sortTmp, b.centroids, axis)

		left := types.EmptyBBox()
		for i, idx := range indices {
			left = left.Union(b.bboxes[idx])
			leftAreas[i] = left.SurfaceArea()
		}

		// The first sweep covers the whole range
		if axis == 0 {
			bbox = left
			area := bbox.SurfaceArea()
			if area == 0 {
				break
			}
			invArea = 1.0 / area
		}

		right := types.EmptyBBox()
		for i := size - 1; i >= 1; i-- {
			right = right.Union(b.bboxes[indices[i]])

			leftCount := float32(i)
			rightCount := float32(size - i)
			cost := 2*b.opts.TraversalCost +
				b.opts.IntersectionCost*invArea*(leftCount*leftAreas[i-1]+rightCount*right.SurfaceArea())

			if cost < bestCost {
				bestCost = cost
				bestAxis = axis
				bestIndex = i
			}
		}
	}

	if bestAxis == -1 {
		b.nodes[nodeIndex] = newLeaf(bbox, start, size)
		b.release(guardID)
		return nil
	}

	sortByAxis(indices, sortTmp, b.centroids, bestAxis)

	leftIndex := nodeIndex + 1
	rightIndex := nodeIndex + SlotsFor(bestIndex)
	mid := start + bestIndex
	b.nodes[nodeIndex] = newInner(bbox, bestAxis, rightIndex)

	// Children own disjoint halves of our ranges
	b.release(guardID)

	if size < b.opts.SerialThreshold {
		if err := b.build(leftIndex, start, mid); err != nil {
			return err
		}
		return b.build(rightIndex, mid, end)
	}

	var g errgroup.Group
	g.Go(func() error { return b.build(leftIndex, start, mid) })
	g.Go(func() error { return b.build(rightIndex, mid, end) })
	return g.Wait()
}

func (b *builder) release(guardID uint64) {
	if b.guard != nil {
		b.guard.release(guardID)
	}
}

// Drop unused arena slots and relabel right child links. Arena indices
// already follow a pre-order layout so left children stay at index+1.
func compact(nodes []Node) []Node {
	remap := make([]uint32, len(nodes))
	used := uint32(0)
	for i := range nodes {
		if !nodes[i].IsUnused() {
			remap[i] = used
			used++
		}
	}

	out := make([]Node, 0, used)
	for _, node := range nodes {
		if node.IsUnused() {
			continue
		}
		if !node.IsLeaf() {
			node.data = remap[node.data]
		}
		out = append(out, node)
	}
	return out
}
