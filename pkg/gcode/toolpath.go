package gcode

import (
	"sort"

	"github.com/philipparndt/gcodeview/pkg/geometry"
)

// Toolpath accumulates chunk results into the parallel arrays shared by
// the mesh builder, the renderer and the playback controller. It is
// appended to while loading and read-only afterwards.
type Toolpath struct {
	Segments  []Segment
	Modes     []Mode
	Points    []geometry.Vector3
	LineMap   []int
	Skipped   []int
	Counts    Counts
	LineCount int
	AnyDrawn  bool
	Final     State

	byMode map[Mode][]int
	bounds geometry.BoundingBox
}

// NewToolpath creates an empty toolpath
func NewToolpath() *Toolpath {
	return &Toolpath{
		Counts: NewCounts(),
		byMode: make(map[Mode][]int),
		bounds: geometry.NewBoundingBox(),
	}
}

// FromChunk wraps a single parse result in a toolpath
func FromChunk(result *ChunkResult) *Toolpath {
	tp := NewToolpath()
	tp.Append(result)
	return tp
}

// Append adds a chunk's segments to the end of the toolpath
func (t *Toolpath) Append(result *ChunkResult) {
	if t.byMode == nil {
		t.byMode = make(map[Mode][]int)
		t.bounds = geometry.BoundsOf(t.Points...)
	}
	if t.Counts == nil {
		t.Counts = NewCounts()
	}

	base := len(t.Segments)
	t.Segments = append(t.Segments, result.Segments...)
	t.Modes = append(t.Modes, result.Modes...)
	t.Points = append(t.Points, result.Points...)
	t.LineMap = append(t.LineMap, result.LineMap...)
	t.Skipped = append(t.Skipped, result.Skipped...)
	t.Counts.Add(result.Counts)
	t.AnyDrawn = t.AnyDrawn || result.AnyDrawn
	t.Final = result.Final

	for i, m := range result.Modes {
		t.byMode[m] = append(t.byMode[m], base+i)
	}
	for _, p := range result.Points {
		t.bounds.Extend(p)
	}
}

// Len returns the number of segments
func (t *Toolpath) Len() int {
	return len(t.Segments)
}

// Bounds returns the bounding box of every visited point
func (t *Toolpath) Bounds() geometry.BoundingBox {
	if t.byMode == nil {
		return geometry.BoundsOf(t.Points...)
	}
	return t.bounds
}

// IndicesByMode returns the segment indices drawn with the given mode, in
// toolpath order
func (t *Toolpath) IndicesByMode(mode Mode) []int {
	return t.byMode[mode]
}

// CountsBefore returns, per mode, how many segments with an index below
// index were drawn in that mode
func (t *Toolpath) CountsBefore(index int) Counts {
	counts := NewCounts()
	for _, m := range Modes {
		counts[m] = sort.SearchInts(t.byMode[m], index)
	}
	return counts
}

// LineAt returns the file line that produced segment index, or -1
func (t *Toolpath) LineAt(index int) int {
	if index < 0 || index >= len(t.LineMap) {
		return -1
	}
	return t.LineMap[index]
}

// Clone returns a deep copy safe to hand to another goroutine
func (t *Toolpath) Clone() *Toolpath {
	c := &Toolpath{
		Segments:  append([]Segment(nil), t.Segments...),
		Modes:     append([]Mode(nil), t.Modes...),
		Points:    append([]geometry.Vector3(nil), t.Points...),
		LineMap:   append([]int(nil), t.LineMap...),
		Skipped:   append([]int(nil), t.Skipped...),
		Counts:    t.Counts.Clone(),
		LineCount: t.LineCount,
		AnyDrawn:  t.AnyDrawn,
		Final:     t.Final,
		byMode:    make(map[Mode][]int, len(t.byMode)),
		bounds:    t.Bounds(),
	}
	for m, idx := range t.byMode {
		c.byMode[m] = append([]int(nil), idx...)
	}
	return c
}
