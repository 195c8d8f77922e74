package types

import (
	"fmt"

	"github.com/chewxy/math32"
)

// The default ray epsilon. Rays whose MinT equals this value get their MinT
// rescaled by the magnitude of their origin before traversal.
const Epsilon float32 = 1e-4

// A parametric ray segment [MinT, MaxT].
type Ray struct {
	Origin Vec3
	Dir    Vec3

	// Component-wise reciprocal of Dir. Derived by Update.
	DirRcp Vec3

	MinT float32
	MaxT float32
}

// Create a ray spanning [Epsilon, +inf).
func NewRay(origin, dir Vec3) Ray {
	return NewSegment(origin, dir, Epsilon, math32.Inf(1))
}

// Create a ray spanning [minT, maxT].
func NewSegment(origin, dir Vec3, minT, maxT float32) Ray {
	r := Ray{Origin: origin, Dir: dir, MinT: minT, MaxT: maxT}
	r.Update()
	return r
}

// Recompute the reciprocal direction.
func (r *Ray) Update() {
	for axis := 0; axis < 3; axis++ {
		r.DirRcp[axis] = 1.0 / r.Dir[axis]
	}
}

// Get point along the ray.
func (r *Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// Scale MinT by the magnitude of the ray origin if MinT is set to the
// default epsilon. Rays leaving surfaces far away from the coordinate origin
// need a larger offset to avoid re-hitting the surface they start on.
func (r *Ray) AdaptEpsilon() {
	if r.MinT != Epsilon {
		return
	}
	r.MinT = Epsilon * math32.Max(1, r.Origin.MaxAbs())
}

func (r Ray) String() string {
	return fmt.Sprintf("Ray[o=%v, d=%v, t=[%g, %g]]", r.Origin, r.Dir, r.MinT, r.MaxT)
}
