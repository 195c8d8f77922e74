package bvh

import (
	"cmp"
	"slices"

	"github.com/achilleasa/lux/types"
	"golang.org/x/sync/errgroup"
)

// Ranges with at least this many primitives are sorted with the parallel
// merge sort.
const parallelSortThreshold = 4096

// Stable sort of a primitive index range by centroid along axis. The tmp
// slice must be as long as indices; it is used as merge scratch space.
func sortByAxis(indices, tmp []uint32, centroids []types.Vec3, axis int) {
	compare := func(a, b uint32) int {
		return cmp.Compare(centroids[a][axis], centroids[b][axis])
	}

	if len(indices) < parallelSortThreshold {
		slices.SortStableFunc(indices, compare)
		return
	}
	parallelMergeSort(indices, tmp, compare)
}

func parallelMergeSort(indices, tmp []uint32, compare func(a, b uint32) int) {
	if len(indices) < parallelSortThreshold {
		slices.SortStableFunc(indices, compare)
		return
	}

	mid := len(indices) / 2
	var g errgroup.Group
	g.Go(func() error {
		parallelMergeSort(indices[:mid], tmp[:mid], compare)
		return nil
	})
	g.Go(func() error {
		parallelMergeSort(indices[mid:], tmp[mid:], compare)
		return nil
	})
	_ = g.Wait()

	mergeRuns(indices[:mid], indices[mid:], tmp, compare)
	copy(indices, tmp)
}

// Merge two sorted runs into out. Ties are taken from the left run.
func mergeRuns(left, right, out []uint32, compare func(a, b uint32) int) {
	i, j, k := 0, 0, 0
	for i < len(left) && j < len(right) {
		if compare(right[j], left[i]) < 0 {
			out[k] = right[j]
			j++
		} else {
			out[k] = left[i]
			i++
		}
		k++
	}
	k += copy(out[k:], left[i:])
	copy(out[k:], right[j:])
}
