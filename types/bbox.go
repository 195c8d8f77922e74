package types

import "github.com/chewxy/math32"

// An axis-aligned bounding box.
type BBox struct {
	Min Vec3
	Max Vec3
}

// Create an empty bounding box. Expanding an empty box by a point yields a
// degenerate box containing only that point.
func EmptyBBox() BBox {
	return BBox{
		Min: Vec3{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32},
		Max: Vec3{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32},
	}
}

// Create the bounding box of a set of points.
func BBoxFromPoints(points ...Vec3) BBox {
	b := EmptyBBox()
	for _, p := range points {
		b = b.Expand(p)
	}
	return b
}

// Grow the box so it contains point p.
func (b BBox) Expand(p Vec3) BBox {
	return BBox{Min: MinVec3(b.Min, p), Max: MaxVec3(b.Max, p)}
}

// Grow the box so it contains box o.
func (b BBox) Union(o BBox) BBox {
	return BBox{Min: MinVec3(b.Min, o.Min), Max: MaxVec3(b.Max, o.Max)}
}

// Returns true if min <= max along every axis.
func (b BBox) IsValid() bool {
	return b.Min[0] <= b.Max[0] && b.Min[1] <= b.Max[1] && b.Min[2] <= b.Max[2]
}

// Get box extents.
func (b BBox) Extents() Vec3 {
	return b.Max.Sub(b.Min)
}

// Get box center.
func (b BBox) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Get box surface area. Invalid boxes have zero area.
func (b BBox) SurfaceArea() float32 {
	if !b.IsValid() {
		return 0
	}
	d := b.Extents()
	return 2 * (d[0]*d[1] + d[1]*d[2] + d[0]*d[2])
}

// Get the axis with the largest extent.
func (b BBox) MajorAxis() int {
	d := b.Extents()
	axis := 0
	if d[1] > d[axis] {
		axis = 1
	}
	if d[2] > d[axis] {
		axis = 2
	}
	return axis
}

// Returns true if o lies entirely within b.
func (b BBox) Contains(o BBox) bool {
	for axis := 0; axis < 3; axis++ {
		if o.Min[axis] < b.Min[axis] || o.Max[axis] > b.Max[axis] {
			return false
		}
	}
	return true
}

// Test the box against a ray using the slab method. The ray reciprocal
// direction must be up to date (see Ray.Update).
func (b BBox) RayIntersect(r *Ray) bool {
	nearT := math32.Inf(-1)
	farT := math32.Inf(1)

	for axis := 0; axis < 3; axis++ {
		origin := r.Origin[axis]
		minVal, maxVal := b.Min[axis], b.Max[axis]

		// Ray is parallel to this slab
		if r.Dir[axis] == 0 {
			if origin < minVal || origin > maxVal {
				return false
			}
			continue
		}

		t1 := (minVal - origin) * r.DirRcp[axis]
		t2 := (maxVal - origin) * r.DirRcp[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		nearT = math32.Max(t1, nearT)
		farT = math32.Min(t2, farT)
		if !(nearT <= farT) {
			return false
		}
	}

	return r.MinT <= farT && nearT <= r.MaxT
}
