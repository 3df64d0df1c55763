package geometry

import "math"

// Quaternion represents a rotation in 3D space
type Quaternion struct {
	X, Y, Z, W float64
}

// IdentityQuaternion returns the rotation that leaves every vector unchanged
func IdentityQuaternion() Quaternion {
	return Quaternion{W: 1}
}

// QuaternionFromUnitVectors returns the shortest-arc rotation taking the
// unit vector from onto the unit vector to.
func QuaternionFromUnitVectors(from, to Vector3) Quaternion {
	r := from.Dot(to) + 1

	var q Quaternion
	if r < 1e-9 {
		// from and to point in opposite directions: any perpendicular axis works
		if math.Abs(from.X) > math.Abs(from.Z) {
			q = Quaternion{X: -from.Y, Y: from.X, Z: 0, W: 0}
		} else {
			q = Quaternion{X: 0, Y: -from.Z, Z: from.Y, W: 0}
		}
	} else {
		c := from.Cross(to)
		q = Quaternion{X: c.X, Y: c.Y, Z: c.Z, W: r}
	}
	return q.Normalize()
}

// Length returns the norm of the quaternion
func (q Quaternion) Length() float64 {
	return math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

// Normalize returns a unit quaternion
func (q Quaternion) Normalize() Quaternion {
	l := q.Length()
	if l == 0 {
		return IdentityQuaternion()
	}
	return Quaternion{X: q.X / l, Y: q.Y / l, Z: q.Z / l, W: q.W / l}
}

// Rotate applies the rotation to v
func (q Quaternion) Rotate(v Vector3) Vector3 {
	u := Vector3{X: q.X, Y: q.Y, Z: q.Z}
	t := u.Cross(v).Mul(2)
	return v.Add(t.Mul(q.W)).Add(u.Cross(t))
}
