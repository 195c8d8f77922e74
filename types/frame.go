package types

// An orthonormal frame (S, T, N) used for geometric and shading normals.
type Frame struct {
	S, T, N Vec3
}

// Build a frame around normal n. Uses the branchless construction from
// Duff et al. "Building an Orthonormal Basis, Revisited".
func NewFrame(n Vec3) Frame {
	var sign float32 = 1
	if n[2] < 0 {
		sign = -1
	}
	a := -1.0 / (sign + n[2])
	b := n[0] * n[1] * a
	return Frame{
		S: Vec3{1 + sign*n[0]*n[0]*a, sign * b, -sign * n[0]},
		T: Vec3{b, sign + n[1]*n[1]*a, -n[1]},
		N: n,
	}
}

// Convert a world-space vector into frame-local coordinates.
func (f Frame) ToLocal(v Vec3) Vec3 {
	return Vec3{v.Dot(f.S), v.Dot(f.T), v.Dot(f.N)}
}

// Convert a frame-local vector to world coordinates.
func (f Frame) ToWorld(v Vec3) Vec3 {
	return f.S.Mul(v[0]).Add(f.T.Mul(v[1])).Add(f.N.Mul(v[2]))
}
