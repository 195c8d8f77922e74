// Package film accumulates filtered radiance samples into image blocks.
package film

import (
	"image"
	"image/color"
	"sync"

	"github.com/achilleasa/lux/filter"
	"github.com/achilleasa/lux/log"
	"github.com/achilleasa/lux/types"
	"github.com/chewxy/math32"
)

// Number of entries in the precomputed filter table.
const FilterResolution = 32

// Accumulated weighted color and total weight for a pixel.
type Pixel struct {
	Color  types.Color
	Weight float32
}

// A Block is a rectangular region of the frame, surrounded by a border wide
// enough to hold every pixel a sample inside the region can reach through
// the reconstruction filter.
type Block struct {
	sync.Mutex

	offset image.Point
	size   image.Point
	border int

	// Stride of the pixel buffer; size plus border on both sides.
	cols, rows int
	pixels     []Pixel

	radius       float32
	lookupFactor float32
	filter       [FilterResolution + 1]float32

	policy  NonFinitePolicy
	dropped int
	logger  log.Logger
}

// Create a block with the given size in pixels.
func NewBlock(size image.Point, f filter.Filter, policy NonFinitePolicy) *Block {
	radius := f.Radius()
	b := &Block{
		radius:       radius,
		border:       int(math32.Ceil(radius - 0.5)),
		lookupFactor: FilterResolution / radius,
		policy:       policy,
		logger:       log.New("film"),
	}

	for i := 0; i < FilterResolution; i++ {
		b.filter[i] = f.Eval(radius * float32(i) / FilterResolution)
	}
	b.filter[FilterResolution] = 0

	b.SetSize(size)
	return b
}

// Resize the block. The contents are cleared.
func (b *Block) SetSize(size image.Point) {
	b.size = size
	b.cols = size.X + 2*b.border
	b.rows = size.Y + 2*b.border
	if cap(b.pixels) >= b.cols*b.rows {
		b.pixels = b.pixels[:b.cols*b.rows]
	} else {
		b.pixels = make([]Pixel, b.cols*b.rows)
	}
	b.Clear()
}

// Get the block size (border excluded).
func (b *Block) Size() image.Point {
	return b.size
}

// Set the frame position of the block's top-left pixel.
func (b *Block) SetOffset(offset image.Point) {
	b.offset = offset
}

// Get the frame position of the block's top-left pixel.
func (b *Block) Offset() image.Point {
	return b.offset
}

// Get the border width in pixels.
func (b *Block) BorderSize() int {
	return b.border
}

// Get the number of samples discarded by the lenient policy since the last
// call to Clear.
func (b *Block) Dropped() int {
	return b.dropped
}

// Get the raw pixel buffer, border included, in row-major order. Each row
// holds Size().X + 2*BorderSize() pixels.
func (b *Block) Pixels() []Pixel {
	return b.pixels
}

// Reset all accumulated values.
func (b *Block) Clear() {
	clear(b.pixels)
	b.dropped = 0
}

// Splat a sample at frame position pos. Non-finite values are handled
// according to the block policy.
func (b *Block) Put(pos types.Vec2, value types.Color) error {
	if !value.IsValid() {
		err := &SampleError{Pos: pos, Value: value}
		if b.policy == Strict {
			return err
		}
		b.dropped++
		b.logger.Warningf("discarding sample: %v", err)
		return nil
	}

	// Convert to buffer coordinates
	px := pos[0] - 0.5 - float32(b.offset.X-b.border)
	py := pos[1] - 0.5 - float32(b.offset.Y-b.border)

	minX := max(int(math32.Ceil(px-b.radius)), 0)
	minY := max(int(math32.Ceil(py-b.radius)), 0)
	maxX := min(int(math32.Floor(px+b.radius)), b.cols-1)
	maxY := min(int(math32.Floor(py+b.radius)), b.rows-1)

	for y := minY; y <= maxY; y++ {
		wy := b.weight(float32(y) - py)
		row := b.pixels[y*b.cols:]
		for x := minX; x <= maxX; x++ {
			w := wy * b.weight(float32(x)-px)
			row[x].Color = row[x].Color.Add(value.Scale(w))
			row[x].Weight += w
		}
	}

	return nil
}

func (b *Block) weight(delta float32) float32 {
	idx := int(math32.Abs(delta) * b.lookupFactor)
	if idx > FilterResolution {
		idx = FilterResolution
	}
	return b.filter[idx]
}

// Merge adds the contents of another block, border included, at its frame
// position. Only the destination is locked.
func (b *Block) Merge(src *Block) {
	b.Lock()
	defer b.Unlock()

	// Position of the source buffer origin in our buffer coordinates
	origin := src.offset.Sub(b.offset).Add(image.Pt(b.border-src.border, b.border-src.border))

	for y := 0; y < src.rows; y++ {
		dy := origin.Y + y
		if dy < 0 || dy >= b.rows {
			continue
		}
		srcRow := src.pixels[y*src.cols : (y+1)*src.cols]
		dstRow := b.pixels[dy*b.cols : (dy+1)*b.cols]
		for x, p := range srcRow {
			dx := origin.X + x
			if dx < 0 || dx >= b.cols {
				continue
			}
			dstRow[dx].Color = dstRow[dx].Color.Add(p.Color)
			dstRow[dx].Weight += p.Weight
		}
	}
}

// Get the reconstructed linear color for each pixel (border excluded) in
// row-major order. Pixels with no accumulated weight are black.
func (b *Block) Colors() []types.Color {
	b.Lock()
	defer b.Unlock()

	out := make([]types.Color, 0, b.size.X*b.size.Y)
	for y := 0; y < b.size.Y; y++ {
		row := b.pixels[(y+b.border)*b.cols+b.border:]
		for x := 0; x < b.size.X; x++ {
			p := row[x]
			if p.Weight == 0 {
				out = append(out, types.Color{})
				continue
			}
			out = append(out, p.Color.Scale(1.0/p.Weight))
		}
	}
	return out
}

// Develop converts the accumulated samples into an sRGB image. The exposure
// scales linear values before the conversion.
func (b *Block) Develop(exposure float32) *image.NRGBA64 {
	img := image.NewNRGBA64(image.Rect(0, 0, b.size.X, b.size.Y))
	for idx, c := range b.Colors() {
		srgb := c.Scale(exposure).ToSRGB()
		img.SetNRGBA64(idx%b.size.X, idx/b.size.X, color.NRGBA64{
			R: toUint16(srgb[0]),
			G: toUint16(srgb[1]),
			B: toUint16(srgb[2]),
			A: 0xffff,
		})
	}
	return img
}

func toUint16(v float32) uint16 {
	return uint16(math32.Max(0, math32.Min(1, v))*0xffff + 0.5)
}
