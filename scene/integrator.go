package scene

import (
	"github.com/achilleasa/lux/bvh"
	"github.com/achilleasa/lux/types"
	"github.com/chewxy/math32"
)

// Visualizes absolute shading normal components.
type NormalIntegrator struct{}

func (NormalIntegrator) Li(sc *Scene, _ Sampler, ray types.Ray) types.Color {
	var its bvh.Intersection
	if !sc.RayIntersect(ray, &its, false) {
		return types.Color{}
	}

	n := its.ShFrame.N
	return types.Color{math32.Abs(n[0]), math32.Abs(n[1]), math32.Abs(n[2])}
}

// Estimates ambient occlusion with a single cosine-weighted shadow ray per
// sample.
type AmbientOcclusionIntegrator struct {
	// Occluders farther than this distance are ignored. Zero means no limit.
	Range float32
}

func (in AmbientOcclusionIntegrator) Li(sc *Scene, sampler Sampler, ray types.Ray) types.Color {
	var its bvh.Intersection
	if !sc.RayIntersect(ray, &its, false) {
		return types.Color{}
	}

	// Flip the frame towards the viewer
	frame := its.ShFrame
	if frame.N.Dot(ray.Dir) > 0 {
		frame = types.NewFrame(frame.N.Neg())
	}

	dir := frame.ToWorld(SquareToCosineHemisphere(sampler.Next2D()))
	maxT := math32.Inf(1)
	if in.Range > 0 {
		maxT = in.Range
	}

	shadowRay := types.NewSegment(its.P, dir, types.Epsilon, maxT)
	if sc.RayIntersect(shadowRay, nil, true) {
		return types.Color{}
	}
	return types.Gray(1)
}

// Map a point in [0, 1)^2 to a cosine-weighted direction on the hemisphere
// around +Z.
func SquareToCosineHemisphere(sample types.Vec2) types.Vec3 {
	r := math32.Sqrt(sample[0])
	phi := 2 * math32.Pi * sample[1]
	return types.Vec3{
		r * math32.Cos(phi),
		r * math32.Sin(phi),
		math32.Sqrt(math32.Max(0, 1-sample[0])),
	}
}
