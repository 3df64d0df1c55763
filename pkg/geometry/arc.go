package geometry

import "math"

// DefaultArcSegments is the number of straight pieces used to approximate an arc
const DefaultArcSegments = 32

const (
	// sweepEpsilon is the angular tolerance below which an arc is treated as a full turn
	sweepEpsilon = 1e-9
	// lengthEpsilon is the distance below which two points are considered coincident
	lengthEpsilon = 1e-9
)

// ArcSweep returns the signed angular sweep (counter-clockwise positive) of
// an arc in the XY plane from start to end around center.
//
// atan2 alone cannot tell which way round the circle to travel, so the raw
// difference is corrected by a full turn when it points the wrong way for
// the requested direction. Coincident start and end angles describe a full
// circle.
func ArcSweep(start, end, center Vector3, clockwise bool) float64 {
	startAngle := math.Atan2(start.Y-center.Y, start.X-center.X)
	endAngle := math.Atan2(end.Y-center.Y, end.X-center.X)

	delta := endAngle - startAngle
	if clockwise && delta > 0 {
		delta -= 2 * math.Pi
	} else if !clockwise && delta < 0 {
		delta += 2 * math.Pi
	}

	if math.Abs(delta) < sweepEpsilon {
		if clockwise {
			return -2 * math.Pi
		}
		return 2 * math.Pi
	}
	return delta
}

// InterpolateArc approximates a circular arc in the XY plane with a
// polyline of segments+1 points. Z is interpolated linearly from start to
// end, which turns the arc into a helix when they differ.
//
// The first and last points are exactly start and end. Degenerate input
// (start on the center) produces degenerate output; callers validate.
func InterpolateArc(start, end, center Vector3, clockwise bool, segments int) []Vector3 {
	if segments < 1 {
		segments = DefaultArcSegments
	}

	radius := start.DistanceXY(center)
	startAngle := math.Atan2(start.Y-center.Y, start.X-center.X)
	sweep := ArcSweep(start, end, center, clockwise)

	points := make([]Vector3, segments+1)
	points[0] = start
	for i := 1; i < segments; i++ {
		t := float64(i) / float64(segments)
		angle := startAngle + sweep*t
		points[i] = Vector3{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
			Z: start.Z + (end.Z-start.Z)*t,
		}
	}
	points[segments] = end

	return points
}

// RadiusArcCenter finds the center of the circle of radius |r| passing
// through start and end in the XY plane.
//
// Two circles satisfy that constraint, one on each side of the chord. For
// a positive r the center is chosen so the arc travelled in the requested
// direction is the short one (at most half a turn); a negative r selects
// the other circle. Travelling clockwise with the center on the right of
// the chord direction gives the short arc, counter-clockwise needs it on
// the left.
//
// ok is false when start and end coincide, r is zero, or the result is not
// finite. When the chord is longer than the diameter the center is clamped
// onto the chord midpoint.
func RadiusArcCenter(start, end Vector3, r float64, clockwise bool) (center Vector3, ok bool) {
	radius := math.Abs(r)
	chord := end.Sub(start)
	chord.Z = 0
	d := chord.Length()
	if d < lengthEpsilon || radius < lengthEpsilon || math.IsNaN(r) {
		return Vector3{}, false
	}

	half := d / 2
	h := math.Sqrt(math.Max(0, radius*radius-half*half))

	mid := Vector3{
		X: (start.X + end.X) / 2,
		Y: (start.Y + end.Y) / 2,
		Z: start.Z,
	}
	// unit normal pointing to the left of the chord direction
	left := Vector3{X: -chord.Y / d, Y: chord.X / d}

	side := 1.0
	if clockwise {
		side = -1.0
	}
	if r < 0 {
		side = -side
	}

	center = mid.Add(left.Mul(side * h))
	if !center.IsFinite() {
		return Vector3{}, false
	}
	return center, true
}
