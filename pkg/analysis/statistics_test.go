package analysis

import (
	"testing"

	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toolpath(text string) *gcode.Toolpath {
	tp := gcode.FromChunk(gcode.Parse(text))
	tp.LineCount = len(gcode.SplitLines(text))
	return tp
}

func TestAnalyze(t *testing.T) {
	tp := toolpath("G0 X3 Y4\n(cut)\nG1 X3 Y10\nG1\nG2 X13 Y10 I5 J0\nX23 Y10 I5")
	stats := Analyze(tp)

	assert.Equal(t, 6, stats.LineCount)
	assert.Equal(t, 1, stats.SkippedLines)
	assert.Equal(t, 3+2*geometry.DefaultArcSegments, stats.SegmentCount)
	assert.Equal(t, 2, stats.ArcCount)
	assert.Equal(t, 1, stats.ZeroLength)
	assert.Equal(t, 0.0, stats.MinSegmentLength)

	assert.InDelta(t, 5, stats.RapidDistance, 1e-9)
	assert.InDelta(t, 5, stats.LengthByMode[gcode.ModeG0], 1e-9)
	assert.InDelta(t, 6, stats.LengthByMode[gcode.ModeG1], 1e-9)
	// two half circles of radius 5, approximated by chords
	assert.InDelta(t, 10*3.14159, stats.LengthByMode[gcode.ModeG2], 0.05)
	assert.InDelta(t, stats.RapidDistance+stats.CuttingDistance, stats.TotalDistance(), 1e-12)
	assert.InDelta(t, 6, stats.MaxSegmentLength, 1e-9)

	assert.Equal(t, geometry.NewVector3(0, 0, 0), stats.BoundingBox.Min)
	assert.InDelta(t, 23, stats.Dimensions.X, 1e-9)
}

func TestAnalyze_Empty(t *testing.T) {
	stats := Analyze(gcode.NewToolpath())
	assert.Equal(t, 0, stats.SegmentCount)
	assert.Equal(t, 0.0, stats.MinSegmentLength)
	assert.Equal(t, geometry.Vector3{}, stats.Dimensions)
}

func TestFindLongestSegments(t *testing.T) {
	tp := toolpath("G1 X1\nX11\nX14")

	longest := FindLongestSegments(tp, 2)
	require.Len(t, longest, 2)
	assert.Equal(t, 1, longest[0].Index)
	assert.Equal(t, 10.0, longest[0].Length)
	assert.Equal(t, 2, longest[1].Index)

	assert.Len(t, FindLongestSegments(tp, 10), 3)
}

func TestFindSegmentsByLine(t *testing.T) {
	tp := toolpath("G1 X10\nG2 X20 I5")
	assert.Len(t, FindSegmentsByLine(tp, 1), geometry.DefaultArcSegments)
	assert.Len(t, FindSegmentsByLine(tp, 0), 1)
	assert.Empty(t, FindSegmentsByLine(tp, 7))
}

func TestFindNearestSegment(t *testing.T) {
	tp := toolpath("G1 X10\nY10\nX0")
	index, distance := FindNearestSegment(tp, geometry.NewVector3(9, 9, 0))
	assert.Equal(t, 1, index)
	assert.InDelta(t, 1.4142, distance, 1e-4)

	index, _ = FindNearestSegment(gcode.NewToolpath(), geometry.Vector3{})
	assert.Equal(t, -1, index)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1.500 mm", FormatMeasurement(1.5, ""))
	assert.Equal(t, "(1.000, -2.000, 0.500)", FormatVector(geometry.NewVector3(1, -2, 0.5)))
}
