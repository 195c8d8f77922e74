package renderer

import (
	"runtime"

	"github.com/achilleasa/lux/film"
	"github.com/shirou/gopsutil/cpu"
)

type Options struct {
	// Number of samples per pixel. If zero, the scene sampler's sample
	// count is used.
	SamplesPerPixel uint32

	// Tile edge length in pixels.
	TileSize uint32

	// Number of render workers. If zero, one worker per logical CPU.
	Workers uint32

	// Handling of NaN/Inf radiance samples.
	NonFinitePolicy film.NonFinitePolicy

	// Reconstruction filter name and radius. A zero radius selects the
	// filter's default.
	Filter       string
	FilterRadius float32

	// Exposure for tonemapping.
	Exposure float32
}

// Get the default render options.
func DefaultOptions() Options {
	return Options{
		TileSize:        32,
		NonFinitePolicy: film.Strict,
		Filter:          "gaussian",
		Exposure:        1,
	}
}

// Get the number of logical CPUs. Falls back to the Go runtime count if the
// system query fails.
func DetectWorkers() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}
