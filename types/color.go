package types

import (
	"fmt"

	"github.com/chewxy/math32"
)

// A linear RGB color.
type Color [3]float32

// Create a color with all channels set to v.
func Gray(v float32) Color {
	return Color{v, v, v}
}

// Add color.
func (c Color) Add(c2 Color) Color {
	return Color{c[0] + c2[0], c[1] + c2[1], c[2] + c2[2]}
}

// Modulate by another color.
func (c Color) Mul(c2 Color) Color {
	return Color{c[0] * c2[0], c[1] * c2[1], c[2] * c2[2]}
}

// Scale color.
func (c Color) Scale(s float32) Color {
	return Color{c[0] * s, c[1] * s, c[2] * s}
}

// Returns true if no channel is NaN or infinite.
func (c Color) IsValid() bool {
	for _, ch := range c {
		if math32.IsNaN(ch) || math32.IsInf(ch, 0) {
			return false
		}
	}
	return true
}

// Convert linear color to sRGB.
func (c Color) ToSRGB() Color {
	var out Color
	for i, v := range c {
		if v <= 0.0031308 {
			out[i] = 12.92 * v
		} else {
			out[i] = 1.055*math32.Pow(v, 1.0/2.4) - 0.055
		}
	}
	return out
}

func (c Color) String() string {
	return fmt.Sprintf("[%g, %g, %g]", c[0], c[1], c[2])
}
