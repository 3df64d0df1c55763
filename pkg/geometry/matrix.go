package geometry

// Matrix4 is a 4x4 transform stored in column-major order, matching the
// layout GPU APIs expect (translation lives in elements 12, 13 and 14).
type Matrix4 [16]float64

// Identity returns the identity transform
func Identity() Matrix4 {
	return Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Compose builds translation * rotation * scale
func Compose(translation Vector3, rotation Quaternion, scale Vector3) Matrix4 {
	x, y, z, w := rotation.X, rotation.Y, rotation.Z, rotation.W
	x2, y2, z2 := x+x, y+y, z+z
	xx, xy, xz := x*x2, x*y2, x*z2
	yy, yz, zz := y*y2, y*z2, z*z2
	wx, wy, wz := w*x2, w*y2, w*z2

	return Matrix4{
		(1 - (yy + zz)) * scale.X, (xy + wz) * scale.X, (xz - wy) * scale.X, 0,
		(xy - wz) * scale.Y, (1 - (xx + zz)) * scale.Y, (yz + wx) * scale.Y, 0,
		(xz + wy) * scale.Z, (yz - wx) * scale.Z, (1 - (xx + yy)) * scale.Z, 0,
		translation.X, translation.Y, translation.Z, 1,
	}
}

// Translation returns the translation component
func (m Matrix4) Translation() Vector3 {
	return Vector3{X: m[12], Y: m[13], Z: m[14]}
}

// MulPoint transforms a point (w = 1)
func (m Matrix4) MulPoint(p Vector3) Vector3 {
	return Vector3{
		X: m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12],
		Y: m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13],
		Z: m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14],
	}
}

// Float32 converts the matrix for upload into a GPU buffer
func (m Matrix4) Float32() [16]float32 {
	var out [16]float32
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}
