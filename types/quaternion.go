package types

import "github.com/chewxy/math32"

// A rotation quaternion. Used by the camera to apply yaw/pitch adjustments
// to its viewing direction.
type Quat struct {
	V Vec3
	W float32
}

// Create identity quaternion.
func QuatIdent() Quat {
	return Quat{W: 1.0}
}

// Create a quaternion rotating by angle radians around axis.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	sin, cos := math32.Sin(angle*0.5), math32.Cos(angle*0.5)
	return Quat{
		V: axis.Normalize().Mul(sin),
		W: cos,
	}
}

// Rotate a vector by the rotation this quaternion represents.
func (q Quat) Rotate(v Vec3) Vec3 {
	// v + 2w(q x v) + 2q x (q x v)
	cross := q.V.Cross(v)
	return v.Add(cross.Mul(2 * q.W)).Add(q.V.Mul(2).Cross(cross))
}

// Compose two rotations; the result applies q2 first and then q.
func (q Quat) Mul(q2 Quat) Quat {
	return Quat{
		V: q.V.Cross(q2.V).Add(q2.V.Mul(q.W)).Add(q.V.Mul(q2.W)),
		W: q.W*q2.W - q.V.Dot(q2.V),
	}
}

// Get quaternion norm.
func (q Quat) Len() float32 {
	return math32.Sqrt(q.W*q.W + q.V.Dot(q.V))
}

// Normalize to a unit quaternion. A zero quaternion maps to the identity.
func (q Quat) Normalize() Quat {
	l := q.Len()
	if l == 0 {
		return QuatIdent()
	}
	if math32.Abs(1-l) < floatCmpEpsilon {
		return q
	}
	return Quat{V: q.V.Mul(1 / l), W: q.W / l}
}
