package mesh

import (
	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/geometry"
)

// DefaultRadius is the default tube radius of instanced segments
const DefaultRadius = 0.1

// collapsedScale hides zero-length segments without removing their instance
const collapsedScale = 1e-6

var up = geometry.NewVector3(0, 1, 0)

// InstanceBatch holds one cylinder transform per segment of a mode.
// Transforms may grow in place up to Capacity.
type InstanceBatch struct {
	Mode       gcode.Mode
	Transforms []geometry.Matrix4
	Count      int
	Capacity   int
	Radius     float64
	Style      Style
	Bounds     geometry.BoundingBox
	// DrawCount is the number of instances to draw, from the start
	DrawCount int

	segments []gcode.Segment
	// extent is Bounds before the radius is added
	extent geometry.BoundingBox
}

// InstanceTransform places the unit cylinder on a segment: centered on its
// midpoint, +Y turned onto its direction, scaled to (radius, length,
// radius). Zero-length segments collapse to a near-zero scale.
func InstanceTransform(seg gcode.Segment, radius float64) geometry.Matrix4 {
	length := seg.Length()
	if length == 0 {
		scale := geometry.NewVector3(collapsedScale, collapsedScale, collapsedScale)
		return geometry.Compose(seg.Midpoint(), geometry.IdentityQuaternion(), scale)
	}

	rotation := geometry.QuaternionFromUnitVectors(up, seg.Direction())
	return geometry.Compose(seg.Midpoint(), rotation, geometry.NewVector3(radius, length, radius))
}

// BuildInstances creates a batch sized exactly to the mode's segments. It
// returns nil when the mode has no segments.
func BuildInstances(tp *gcode.Toolpath, mode gcode.Mode, radius float64, style Style) *InstanceBatch {
	return buildInstances(tp, mode, radius, style, 0)
}

func buildInstances(tp *gcode.Toolpath, mode gcode.Mode, radius float64, style Style, capacity int) *InstanceBatch {
	indices := tp.IndicesByMode(mode)
	if len(indices) == 0 {
		return nil
	}
	if radius <= 0 {
		radius = DefaultRadius
	}
	if capacity < len(indices) {
		capacity = len(indices)
	}

	batch := &InstanceBatch{
		Mode:       mode,
		Transforms: make([]geometry.Matrix4, 0, capacity),
		Capacity:   capacity,
		Radius:     radius,
		Style:      style,
		segments:   make([]gcode.Segment, 0, capacity),
		extent:     geometry.NewBoundingBox(),
	}
	batch.appendSegments(tp, indices)
	return batch
}

func (b *InstanceBatch) appendSegments(tp *gcode.Toolpath, indices []int) {
	for _, i := range indices {
		seg := tp.Segments[i]
		b.segments = append(b.segments, seg)
		b.Transforms = append(b.Transforms, InstanceTransform(seg, b.Radius))
		b.extent.Extend(seg.Start)
		b.extent.Extend(seg.End)
	}
	b.Count = len(b.Transforms)
	b.DrawCount = b.Count
	b.Bounds = b.extent.Expand(b.Radius)
}

// Update brings the batch up to date with a grown toolpath. It returns
// false, leaving the batch untouched, when the segments no longer fit and
// the caller has to build a new batch.
func (b *InstanceBatch) Update(tp *gcode.Toolpath) bool {
	indices := tp.IndicesByMode(b.Mode)
	if len(indices) > b.Capacity {
		return false
	}
	if len(indices) < b.Count {
		b.Transforms = b.Transforms[:0]
		b.segments = b.segments[:0]
		b.extent = geometry.NewBoundingBox()
		b.Count = 0
	}

	b.appendSegments(tp, indices[b.Count:])
	return true
}

// ComputeBounds recomputes Bounds from every segment, expanded by the
// tube radius
func (b *InstanceBatch) ComputeBounds() {
	b.extent = geometry.NewBoundingBox()
	for _, seg := range b.segments {
		b.extent.Extend(seg.Start)
		b.extent.Extend(seg.End)
	}
	b.Bounds = b.extent.Expand(b.Radius)
}
