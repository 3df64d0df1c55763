package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVectorNear(t *testing.T, expected, actual Vector3, eps float64) {
	t.Helper()
	assert.True(t, expected.ApproxEqual(actual, eps), "expected %v, got %v", expected, actual)
}

func TestInterpolateArc_Endpoints(t *testing.T) {
	start := NewVector3(0, 0, 0)
	end := NewVector3(10, 0, 0)
	center := NewVector3(5, 0, 0)

	points := InterpolateArc(start, end, center, true, 32)
	require.Len(t, points, 33)
	assert.Equal(t, start, points[0])
	assert.Equal(t, end, points[32])

	// clockwise from the left side of the circle passes over the top
	assertVectorNear(t, NewVector3(5, 5, 0), points[16], 1e-9)
}

func TestInterpolateArc_CounterClockwise(t *testing.T) {
	points := InterpolateArc(NewVector3(0, 0, 0), NewVector3(10, 0, 0), NewVector3(5, 0, 0), false, 4)
	require.Len(t, points, 5)
	assertVectorNear(t, NewVector3(5, -5, 0), points[2], 1e-9)
}

func TestInterpolateArc_Helix(t *testing.T) {
	points := InterpolateArc(NewVector3(10, 0, 0), NewVector3(0, 10, 4), NewVector3(0, 0, 0), false, 8)
	for i, p := range points {
		assert.InDelta(t, 10.0, p.DistanceXY(Vector3{}), 1e-9)
		assert.InDelta(t, 4*float64(i)/8, p.Z, 1e-9)
	}
}

func TestInterpolateArc_DefaultSegments(t *testing.T) {
	points := InterpolateArc(NewVector3(1, 0, 0), NewVector3(0, 1, 0), Vector3{}, false, 0)
	assert.Len(t, points, DefaultArcSegments+1)
}

func TestInterpolateArc_FullCircle(t *testing.T) {
	start := NewVector3(0, 0, 0)
	center := NewVector3(5, 0, 0)

	points := InterpolateArc(start, start, center, true, 32)
	require.Len(t, points, 33)
	assert.Equal(t, start, points[0])
	assert.Equal(t, start, points[32])
	assertVectorNear(t, NewVector3(10, 0, 0), points[16], 1e-9)
	assertVectorNear(t, NewVector3(5, 5, 0), points[8], 1e-9)
}

func TestArcSweep_Direction(t *testing.T) {
	center := Vector3{}
	a := NewVector3(1, 0, 0)
	b := NewVector3(0, 1, 0)

	assert.InDelta(t, math.Pi/2, ArcSweep(a, b, center, false), 1e-12)
	assert.InDelta(t, -3*math.Pi/2, ArcSweep(a, b, center, true), 1e-12)
	assert.InDelta(t, -math.Pi/2, ArcSweep(b, a, center, true), 1e-12)
	assert.InDelta(t, 3*math.Pi/2, ArcSweep(b, a, center, false), 1e-12)
}

func TestRadiusArcCenter(t *testing.T) {
	start := NewVector3(0, 0, 0)
	end := NewVector3(10, 0, 0)
	h := math.Sqrt(100 - 25)

	tests := []struct {
		name      string
		r         float64
		clockwise bool
		center    Vector3
		sweep     float64
	}{
		{"G2 positive R takes the short arc", 10, true, NewVector3(5, -h, 0), -math.Pi / 3},
		{"G3 positive R takes the short arc", 10, false, NewVector3(5, h, 0), math.Pi / 3},
		{"G2 negative R takes the long arc", -10, true, NewVector3(5, h, 0), -5 * math.Pi / 3},
		{"G3 negative R takes the long arc", -10, false, NewVector3(5, -h, 0), 5 * math.Pi / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			center, ok := RadiusArcCenter(start, end, tt.r, tt.clockwise)
			require.True(t, ok)
			assertVectorNear(t, tt.center, center, 1e-9)
			assert.InDelta(t, tt.sweep, ArcSweep(start, end, center, tt.clockwise), 1e-9)
		})
	}
}

func TestRadiusArcCenter_Degenerate(t *testing.T) {
	_, ok := RadiusArcCenter(NewVector3(1, 1, 0), NewVector3(1, 1, 5), 3, true)
	assert.False(t, ok, "coincident start and end in XY")

	_, ok = RadiusArcCenter(NewVector3(0, 0, 0), NewVector3(1, 0, 0), 0, true)
	assert.False(t, ok, "zero radius")

	_, ok = RadiusArcCenter(NewVector3(0, 0, 0), NewVector3(1, 0, 0), math.NaN(), true)
	assert.False(t, ok, "NaN radius")
}

func TestRadiusArcCenter_RadiusTooSmall(t *testing.T) {
	// chord of 10 with radius 2 clamps onto the midpoint
	center, ok := RadiusArcCenter(NewVector3(0, 0, 0), NewVector3(10, 0, 0), 2, false)
	require.True(t, ok)
	assertVectorNear(t, NewVector3(5, 0, 0), center, 1e-12)
}
