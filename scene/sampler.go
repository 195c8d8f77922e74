package scene

import (
	"image"
	"math/rand/v2"

	"github.com/achilleasa/lux/types"
)

// A sampler producing independent uniform random samples.
type IndependentSampler struct {
	sampleCount int
	seed        uint64
	rng         *rand.Rand
}

// Create an independent sampler taking sampleCount samples per pixel.
func NewIndependentSampler(sampleCount int, seed uint64) *IndependentSampler {
	s := &IndependentSampler{
		sampleCount: sampleCount,
		seed:        seed,
	}
	s.Prepare(image.Point{})
	return s
}

func (s *IndependentSampler) Clone() Sampler {
	return NewIndependentSampler(s.sampleCount, s.seed)
}

// Reseed the generator from the tile offset so each tile renders the same
// sample sequence regardless of which worker picks it up.
func (s *IndependentSampler) Prepare(offset image.Point) {
	stream := uint64(uint32(offset.Y))<<32 | uint64(uint32(offset.X))
	s.rng = rand.New(rand.NewPCG(s.seed, stream))
}

func (s *IndependentSampler) Next1D() float32 {
	return s.rng.Float32()
}

func (s *IndependentSampler) Next2D() types.Vec2 {
	return types.Vec2{s.rng.Float32(), s.rng.Float32()}
}

func (s *IndependentSampler) SampleCount() int {
	return s.sampleCount
}
