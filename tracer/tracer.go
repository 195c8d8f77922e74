// Package tracer splits a frame into tiles and hands them out to render
// workers.
package tracer

import (
	"fmt"
	"image"
)

// A unit of work processed by a render worker.
type Tile struct {
	// Sequence number in emission order.
	Index int

	// Top-left pixel of the tile.
	Offset image.Point

	// Tile dimensions. Tiles on the right and bottom edges of the frame
	// may be smaller than the configured tile size.
	Size image.Point
}

// Get the pixel rectangle covered by this tile.
func (t Tile) Bounds() image.Rectangle {
	return image.Rectangle{Min: t.Offset, Max: t.Offset.Add(t.Size)}
}

// Get the number of pixels in this tile.
func (t Tile) Pixels() int {
	return t.Size.X * t.Size.Y
}

func (t Tile) String() string {
	return fmt.Sprintf("Tile[#%d, offset=%v, size=%v]", t.Index, t.Offset, t.Size)
}
