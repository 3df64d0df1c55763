package viewer

import (
	"math"

	"github.com/philipparndt/gcodeview/pkg/geometry"
)

// Plane is the set of points p with Normal·p + D = 0; the normal points
// into the frustum
type Plane struct {
	Normal geometry.Vector3
	D      float64
}

// Distance returns the signed distance of p from the plane
func (p Plane) Distance(point geometry.Vector3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum is the visible volume of a camera
type Frustum struct {
	Planes [6]Plane
}

// NewFrustum builds the view frustum of a camera for a viewport aspect
// ratio (width / height)
func NewFrustum(c *Camera, aspect float64) Frustum {
	forward, right, up := c.Basis()
	tanV := math.Tan(c.FOV / 2)
	tanH := tanV * aspect

	through := func(normal, point geometry.Vector3) Plane {
		n := normal.Normalize()
		return Plane{Normal: n, D: -n.Dot(point)}
	}

	pos := c.Position
	return Frustum{Planes: [6]Plane{
		through(forward, pos.Add(forward.Mul(c.Near))),
		through(forward.Mul(-1), pos.Add(forward.Mul(c.Far))),
		through(right.Mul(-1).Add(forward.Mul(tanH)), pos),
		through(right.Add(forward.Mul(tanH)), pos),
		through(up.Mul(-1).Add(forward.Mul(tanV)), pos),
		through(up.Add(forward.Mul(tanV)), pos),
	}}
}

// ContainsBox reports whether any part of the box may be visible. It can
// report true for a box just outside a corner of the frustum but never
// false for a visible one.
func (f Frustum) ContainsBox(bbox geometry.BoundingBox) bool {
	if bbox.IsEmpty() {
		return false
	}
	for _, p := range f.Planes {
		// the corner furthest along the plane normal
		corner := geometry.Vector3{
			X: pick(p.Normal.X >= 0, bbox.Max.X, bbox.Min.X),
			Y: pick(p.Normal.Y >= 0, bbox.Max.Y, bbox.Min.Y),
			Z: pick(p.Normal.Z >= 0, bbox.Max.Z, bbox.Min.Z),
		}
		if p.Distance(corner) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether a point is inside the frustum
func (f Frustum) ContainsPoint(point geometry.Vector3) bool {
	for _, p := range f.Planes {
		if p.Distance(point) < 0 {
			return false
		}
	}
	return true
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
