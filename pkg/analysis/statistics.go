// Package analysis computes summary statistics for parsed toolpaths
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/geometry"
)

// SegmentInfo describes one segment of the toolpath
type SegmentInfo struct {
	Index  int
	Mode   gcode.Mode
	Line   int
	Start  geometry.Vector3
	End    geometry.Vector3
	Length float64
}

// Stats summarizes a toolpath
type Stats struct {
	BoundingBox  geometry.BoundingBox
	Dimensions   geometry.Vector3
	LineCount    int
	SkippedLines int
	SegmentCount int
	Counts       gcode.Counts
	// ArcCount is the number of G2/G3 lines, not arc segments
	ArcCount         int
	LengthByMode     map[gcode.Mode]float64
	RapidDistance    float64
	CuttingDistance  float64
	ZeroLength       int
	MinSegmentLength float64
	MaxSegmentLength float64
	AvgSegmentLength float64
}

// Analyze computes the statistics of a toolpath
func Analyze(tp *gcode.Toolpath) *Stats {
	stats := &Stats{
		BoundingBox:  tp.Bounds(),
		LineCount:    tp.LineCount,
		SkippedLines: len(tp.Skipped),
		SegmentCount: tp.Len(),
		Counts:       tp.Counts.Clone(),
		LengthByMode: make(map[gcode.Mode]float64, len(gcode.Modes)),
	}
	stats.Dimensions = stats.BoundingBox.Size()

	minLength := math.MaxFloat64
	maxLength := 0.0
	totalLength := 0.0
	lastArcLine := -1

	for i, seg := range tp.Segments {
		mode := tp.Modes[i]
		length := seg.Length()

		stats.LengthByMode[mode] += length
		if mode == gcode.ModeG0 {
			stats.RapidDistance += length
		} else {
			stats.CuttingDistance += length
		}
		if mode.IsArc() && tp.LineAt(i) != lastArcLine {
			stats.ArcCount++
			lastArcLine = tp.LineAt(i)
		}

		if length == 0 {
			stats.ZeroLength++
		}
		totalLength += length
		if length < minLength {
			minLength = length
		}
		if length > maxLength {
			maxLength = length
		}
	}

	if stats.SegmentCount > 0 {
		stats.MinSegmentLength = minLength
		stats.MaxSegmentLength = maxLength
		stats.AvgSegmentLength = totalLength / float64(stats.SegmentCount)
	}

	return stats
}

// TotalDistance returns the distance travelled by the tool
func (s *Stats) TotalDistance() float64 {
	return s.RapidDistance + s.CuttingDistance
}

// Segments lists every segment with its length
func Segments(tp *gcode.Toolpath) []SegmentInfo {
	infos := make([]SegmentInfo, tp.Len())
	for i, seg := range tp.Segments {
		infos[i] = SegmentInfo{
			Index:  i,
			Mode:   tp.Modes[i],
			Line:   tp.LineAt(i),
			Start:  seg.Start,
			End:    seg.End,
			Length: seg.Length(),
		}
	}
	return infos
}

// FindLongestSegments returns the N longest segments
func FindLongestSegments(tp *gcode.Toolpath, count int) []SegmentInfo {
	segments := Segments(tp)
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Length > segments[j].Length
	})

	if count > len(segments) {
		count = len(segments)
	}
	return segments[:count]
}

// FindSegmentsByLine returns the segments produced by a program line
func FindSegmentsByLine(tp *gcode.Toolpath, line int) []SegmentInfo {
	var segments []SegmentInfo
	for _, info := range Segments(tp) {
		if info.Line == line {
			segments = append(segments, info)
		}
	}
	return segments
}

// FindNearestSegment finds the segment whose end point is nearest to point
func FindNearestSegment(tp *gcode.Toolpath, point geometry.Vector3) (int, float64) {
	nearest := -1
	minDistance := math.MaxFloat64

	for i, seg := range tp.Segments {
		distance := point.Distance(seg.End)
		if distance < minDistance {
			minDistance = distance
			nearest = i
		}
	}

	return nearest, minDistance
}

// FormatMeasurement formats a measurement with appropriate units
func FormatMeasurement(value float64, unit string) string {
	if unit == "" {
		unit = "mm"
	}
	return fmt.Sprintf("%.3f %s", value, unit)
}

// FormatVector formats a 3D vector
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
