package viewer

import (
	"testing"

	"github.com/philipparndt/gcodeview/pkg/geometry"
	"github.com/stretchr/testify/assert"
)

func TestFrustum_ContainsBox(t *testing.T) {
	c := NewCamera(box(-10, -10, 0, 10, 10, 0))
	f := NewFrustum(c, 1)

	assert.True(t, f.ContainsBox(box(-1, -1, 0, 1, 1, 0)))
	// partially visible boxes are kept
	assert.True(t, f.ContainsBox(box(5, 5, 0, 500, 500, 0)))
	// far off to the side
	assert.False(t, f.ContainsBox(box(1000, 0, 0, 1001, 1, 0)))
	// behind the camera
	assert.False(t, f.ContainsBox(box(-1, -1, 100, 1, 1, 101)))
	// beyond the far plane
	assert.False(t, f.ContainsBox(box(-1, -1, -1e5, 1, 1, -1e5+1)))
	assert.False(t, f.ContainsBox(geometry.NewBoundingBox()))
}

func TestFrustum_ContainsProjectedPoints(t *testing.T) {
	c := NewCamera(box(-10, -10, -10, 10, 10, 10))
	c.Rotate(0.5, 1.2)
	f := NewFrustum(c, 4.0/3.0)

	for _, p := range []geometry.Vector3{
		{X: 0, Y: 0, Z: 0},
		{X: 8, Y: -3, Z: 2},
		{X: -5, Y: 5, Z: -5},
	} {
		x, y, _ := c.Project(p, 800, 600)
		inside := x >= 0 && x <= 800 && y >= 0 && y <= 600
		assert.Equal(t, inside, f.ContainsPoint(p), "point %v at %.1f,%.1f", p, x, y)
	}
}
