package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
)

type WorkerStat struct {
	// The worker id.
	Id int

	// Number of rendered tiles and the percentage of frame pixels they
	// represent.
	Tiles        int
	FramePercent float32

	// Generated and discarded samples.
	Samples uint64
	Dropped int

	// Time spent rendering tiles.
	BusyTime time.Duration
}

type FrameStats struct {
	// Individual worker stats.
	Workers []WorkerStat

	// Number of tiles merged into the frame.
	Tiles int

	// Total render time for entire frame.
	RenderTime time.Duration
}

// Build a tabular representation of frame statistics.
func (s FrameStats) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Worker", "Tiles", "% of frame", "Samples", "Dropped", "Busy time"})

	var samples uint64
	for _, stat := range s.Workers {
		samples += stat.Samples
		table.Append([]string{
			fmt.Sprintf("%d", stat.Id),
			fmt.Sprintf("%d", stat.Tiles),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			fmt.Sprintf("%d", stat.Samples),
			fmt.Sprintf("%d", stat.Dropped),
			stat.BusyTime.String(),
		})
	}
	table.SetFooter([]string{"", fmt.Sprintf("%d", s.Tiles), "", fmt.Sprintf("%d", samples), "TOTAL", s.RenderTime.String()})
	table.Render()

	return buf.String()
}
