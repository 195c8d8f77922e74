package bvh

import (
	"fmt"
	"sync"
)

// A half-open index interval.
type span struct {
	start, end uint32
}

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

// rangeGuard tracks the primitive and node slot ranges owned by the build
// tasks that are currently mutating shared arrays and reports any overlap.
type rangeGuard struct {
	sync.Mutex

	nextID uint64
	active map[uint64][2]span

	maxActive int
	checked   int
}

func newRangeGuard() *rangeGuard {
	return &rangeGuard{active: make(map[uint64][2]span)}
}

// Claim a primitive range and a node slot range. The returned id must be
// passed to release once the task stops writing to them.
func (g *rangeGuard) acquire(prims, slots span) (uint64, error) {
	g.Lock()
	defer g.Unlock()

	for _, owned := range g.active {
		if owned[0].overlaps(prims) {
			return 0, fmt.Errorf("%w: primitive range [%d, %d) overlaps active range [%d, %d)", ErrOverlappingRanges, prims.start, prims.end, owned[0].start, owned[0].end)
		}
		if owned[1].overlaps(slots) {
			return 0, fmt.Errorf("%w: node slots [%d, %d) overlap active slots [%d, %d)", ErrOverlappingRanges, slots.start, slots.end, owned[1].start, owned[1].end)
		}
	}

	g.nextID++
	g.active[g.nextID] = [2]span{prims, slots}
	g.checked++
	if len(g.active) > g.maxActive {
		g.maxActive = len(g.active)
	}
	return g.nextID, nil
}

func (g *rangeGuard) release(id uint64) {
	g.Lock()
	delete(g.active, id)
	g.Unlock()
}
