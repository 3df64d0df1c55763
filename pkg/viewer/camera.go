package viewer

import (
	"math"

	"github.com/philipparndt/gcodeview/pkg/geometry"
)

const (
	minDistance = 0.1
	maxDistance = 1e6
)

// Camera represents a 3D camera orbiting a target. With both rotations at
// zero it looks down the Z axis at the XY plane, which is the plan view of
// a toolpath.
type Camera struct {
	Position  geometry.Vector3
	Target    geometry.Vector3
	Up        geometry.Vector3
	FOV       float64 // Field of view in radians
	Distance  float64
	RotationX float64 // Rotation around X axis (vertical)
	RotationY float64 // Rotation around Y axis (horizontal)
	Near      float64
	Far       float64
}

// NewCamera creates a new camera positioned to view a bounding box
func NewCamera(bbox geometry.BoundingBox) *Camera {
	c := &Camera{
		Up:  geometry.NewVector3(0, 1, 0),
		FOV: math.Pi / 4, // 45 degrees
	}
	c.Fit(bbox)
	return c
}

// Fit retargets the camera on a bounding box, keeping the current angles.
// The distance is twice the largest dimension, at least 1.
func (c *Camera) Fit(bbox geometry.BoundingBox) {
	c.Target = bbox.Center()
	c.Distance = math.Max(1, bbox.MaxDimension()*2.0)
	c.UpdatePosition()
}

// UpdatePosition updates camera position based on rotation angles
func (c *Camera) UpdatePosition() {
	// Calculate position based on spherical coordinates
	x := c.Distance * math.Cos(c.RotationX) * math.Sin(c.RotationY)
	y := c.Distance * math.Sin(c.RotationX)
	z := c.Distance * math.Cos(c.RotationX) * math.Cos(c.RotationY)

	c.Position = c.Target.Add(geometry.NewVector3(x, y, z))
	c.Near = math.Max(0.01, c.Distance/1000)
	c.Far = c.Distance * 100
}

// Rotate rotates the camera by the given angles
func (c *Camera) Rotate(deltaX, deltaY float64) {
	c.RotationX += deltaX
	c.RotationY += deltaY

	// Clamp X rotation to prevent gimbal lock
	maxAngle := math.Pi/2 - 0.1
	if c.RotationX > maxAngle {
		c.RotationX = maxAngle
	}
	if c.RotationX < -maxAngle {
		c.RotationX = -maxAngle
	}

	c.UpdatePosition()
}

// Zoom changes the camera distance
func (c *Camera) Zoom(delta float64) {
	c.Distance *= (1.0 + delta)
	if c.Distance < minDistance {
		c.Distance = minDistance
	}
	if c.Distance > maxDistance {
		c.Distance = maxDistance
	}
	c.UpdatePosition()
}

// Basis returns the camera's forward, right and up unit vectors
func (c *Camera) Basis() (forward, right, up geometry.Vector3) {
	forward = c.Target.Sub(c.Position).Normalize()
	right = forward.Cross(c.Up).Normalize()
	up = right.Cross(forward).Normalize()
	return forward, right, up
}

// Project projects a 3D point to 2D screen coordinates. The third value is
// the depth along the view direction; points with a depth below Near are
// behind the camera.
func (c *Camera) Project(point geometry.Vector3, width, height float64) (float64, float64, float64) {
	forward, right, up := c.Basis()

	// Transform to camera space
	relative := point.Sub(c.Position)
	x := relative.Dot(right)
	y := relative.Dot(up)
	z := relative.Dot(forward)
	depth := z

	// Perspective projection
	if z <= 0.01 {
		z = 0.01 // Prevent division by zero
	}

	aspect := width / height
	fovScale := math.Tan(c.FOV / 2)

	screenX := (x/(z*fovScale*aspect))*(width/2) + (width / 2)
	screenY := (-y/(z*fovScale))*(height/2) + (height / 2)

	return screenX, screenY, depth
}

// Unproject converts 2D screen coordinates back to 3D ray
func (c *Camera) Unproject(screenX, screenY, width, height float64) (origin, direction geometry.Vector3) {
	// Convert screen coordinates to normalized device coordinates (-1 to 1)
	ndcX := (2.0 * screenX / width) - 1.0
	ndcY := 1.0 - (2.0 * screenY / height)

	aspect := width / height
	fovScale := math.Tan(c.FOV / 2)
	forward, right, up := c.Basis()

	// Calculate direction in world space
	rayDir := forward.Add(right.Mul(ndcX * fovScale * aspect)).Add(up.Mul(ndcY * fovScale))
	rayDir = rayDir.Normalize()

	return c.Position, rayDir
}
