package bvh

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
)

// BVH build statistics.
type Stats struct {
	Primitives uint32

	// Arena slots reserved by the builder and nodes actually in use.
	Slots int
	Nodes int

	Leaves      int
	MaxDepth    int
	MaxLeafSize uint32
	AvgLeafSize float32

	Compacted bool
	BuildTime time.Duration

	// Populated when range verification is enabled.
	GuardedTasks       int
	MaxConcurrentTasks int
}

type depthEntry struct {
	node  uint32
	depth int
}

func collectStats(nodes []Node) Stats {
	var s Stats
	if len(nodes) == 0 {
		return s
	}

	var leafPrims uint32
	stack := []depthEntry{{0, 0}}
	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		s.Nodes++
		if entry.depth > s.MaxDepth {
			s.MaxDepth = entry.depth
		}

		node := &nodes[entry.node]
		if node.IsLeaf() {
			s.Leaves++
			leafPrims += node.Count()
			if node.Count() > s.MaxLeafSize {
				s.MaxLeafSize = node.Count()
			}
			continue
		}

		stack = append(stack,
			depthEntry{node.RightChild(), entry.depth + 1},
			depthEntry{entry.node + 1, entry.depth + 1},
		)
	}

	s.AvgLeafSize = float32(leafPrims) / float32(s.Leaves)
	return s
}

// Build a tabular representation of the statistics.
func (s Stats) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Statistic", "Value"})
	table.Append([]string{"Primitives", fmt.Sprintf("%d", s.Primitives)})
	table.Append([]string{"Nodes", fmt.Sprintf("%d", s.Nodes)})
	table.Append([]string{"Reserved slots", fmt.Sprintf("%d", s.Slots)})
	table.Append([]string{"Compacted", fmt.Sprintf("%t", s.Compacted)})
	table.Append([]string{"Leaves", fmt.Sprintf("%d", s.Leaves)})
	table.Append([]string{"Max depth", fmt.Sprintf("%d", s.MaxDepth)})
	table.Append([]string{"Max leaf size", fmt.Sprintf("%d", s.MaxLeafSize)})
	table.Append([]string{"Avg leaf size", fmt.Sprintf("%.2f", s.AvgLeafSize)})
	if s.GuardedTasks > 0 {
		table.Append([]string{"Verified tasks", fmt.Sprintf("%d", s.GuardedTasks)})
		table.Append([]string{"Max concurrent tasks", fmt.Sprintf("%d", s.MaxConcurrentTasks)})
	}
	table.SetFooter([]string{"Build time", s.BuildTime.String()})
	table.Render()

	return buf.String()
}
