package mesh

import (
	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/geometry"
)

// LineBatch is a line list holding every segment of one mode. Vertices are
// x,y,z triples with each segment's start followed by its end. Vertices
// may grow in place up to Capacity segments.
type LineBatch struct {
	Mode     gcode.Mode
	Vertices []float32
	Capacity int
	Style    Style
	Bounds   geometry.BoundingBox
	// DrawCount is the number of segments to draw, from the start
	DrawCount int
}

// BuildLines collects the segments of one mode into a line batch. It
// returns nil when the mode has no segments.
func BuildLines(tp *gcode.Toolpath, mode gcode.Mode, style Style) *LineBatch {
	return buildLines(tp, mode, style, 0)
}

func buildLines(tp *gcode.Toolpath, mode gcode.Mode, style Style, capacity int) *LineBatch {
	indices := tp.IndicesByMode(mode)
	if len(indices) == 0 {
		return nil
	}
	if capacity < len(indices) {
		capacity = len(indices)
	}

	batch := &LineBatch{
		Mode:     mode,
		Vertices: make([]float32, 0, capacity*6),
		Capacity: capacity,
		Style:    style,
		Bounds:   geometry.NewBoundingBox(),
	}
	batch.appendSegments(tp, indices)
	return batch
}

func (b *LineBatch) appendSegments(tp *gcode.Toolpath, indices []int) {
	for _, i := range indices {
		seg := tp.Segments[i]
		b.Vertices = append(b.Vertices,
			float32(seg.Start.X), float32(seg.Start.Y), float32(seg.Start.Z),
			float32(seg.End.X), float32(seg.End.Y), float32(seg.End.Z),
		)
		b.Bounds.Extend(seg.Start)
		b.Bounds.Extend(seg.End)
	}
	b.DrawCount = b.SegmentCount()
}

// Update appends the segments added to tp since the batch was built. It
// returns false, leaving the batch untouched, when they no longer fit and
// the caller has to build a new batch.
func (b *LineBatch) Update(tp *gcode.Toolpath) bool {
	indices := tp.IndicesByMode(b.Mode)
	if len(indices) > b.Capacity {
		return false
	}
	if len(indices) < b.SegmentCount() {
		b.Vertices = b.Vertices[:0]
		b.Bounds = geometry.NewBoundingBox()
	}

	b.appendSegments(tp, indices[b.SegmentCount():])
	return true
}

// SegmentCount returns the number of segments in the batch
func (b *LineBatch) SegmentCount() int {
	return len(b.Vertices) / 6
}

// Segment returns the endpoints of segment i of the batch
func (b *LineBatch) Segment(i int) (start, end geometry.Vector3) {
	v := b.Vertices[i*6 : i*6+6]
	start = geometry.NewVector3(float64(v[0]), float64(v[1]), float64(v[2]))
	end = geometry.NewVector3(float64(v[3]), float64(v[4]), float64(v[5]))
	return start, end
}
