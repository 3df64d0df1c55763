package gcode

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/philipparndt/gcodeview/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func v(x, y, z float64) geometry.Vector3 {
	return geometry.NewVector3(x, y, z)
}

func assertWellFormed(t *testing.T, r *ChunkResult) {
	t.Helper()
	assert.Len(t, r.Modes, len(r.Segments))
	assert.Len(t, r.LineMap, len(r.Segments))
	assert.Len(t, r.Points, 2*len(r.Segments))
	assert.Equal(t, len(r.Segments), r.Counts.Total())
}

func TestParse_StraightLine(t *testing.T) {
	r := Parse("G1 X10 Y0 Z0")
	assertWellFormed(t, r)

	require.Len(t, r.Segments, 1)
	assert.Equal(t, Segment{Start: v(0, 0, 0), End: v(10, 0, 0)}, r.Segments[0])
	assert.Equal(t, []Mode{ModeG1}, r.Modes)
	assert.Equal(t, []int{0}, r.LineMap)
	assert.True(t, r.AnyDrawn)
	assert.Equal(t, State{X: 10, Mode: ModeG1, AnyDrawn: true}, r.Final)
}

func TestParse_ModeInheritance(t *testing.T) {
	r := Parse("G0 X10 Y0\nX20 Y0")
	assertWellFormed(t, r)

	require.Len(t, r.Segments, 2)
	assert.Equal(t, []Mode{ModeG0, ModeG0}, r.Modes)
	assert.Equal(t, Segment{Start: v(10, 0, 0), End: v(20, 0, 0)}, r.Segments[1])
	assert.Equal(t, 2, r.Counts[ModeG0])
	assert.Equal(t, []int{0, 1}, r.LineMap)
}

func TestParse_ModalPersistence(t *testing.T) {
	r := Parse("G1 X10 Z-1\nY20\nZ2\nX-3")
	require.Len(t, r.Segments, 4)

	assert.Equal(t, v(10, 20, -1), r.Segments[1].End)
	assert.Equal(t, v(10, 20, 2), r.Segments[2].End)
	assert.Equal(t, v(-3, 20, 2), r.Segments[3].End)
	for _, m := range r.Modes {
		assert.Equal(t, ModeG1, m)
	}
}

func TestParse_CommentImmunity(t *testing.T) {
	r := Parse("G0 X1\n(This is a G2 comment) G1 X5 Y5\n(G3 only a comment)\n; G2 X9\nX6")
	assertWellFormed(t, r)

	assert.Equal(t, []Mode{ModeG0, ModeG1, ModeG1}, r.Modes)
	assert.Equal(t, []int{0, 1, 4}, r.LineMap)
	assert.Equal(t, []int{2, 3}, r.Skipped)
	assert.Equal(t, 0, r.Counts[ModeG2])
	assert.Equal(t, 0, r.Counts[ModeG3])
}

func TestParse_CommentOnlyKeepsMode(t *testing.T) {
	r, err := NewParser().ParseChunk([]string{"(G2 X1 Y1 I1)"}, State{Mode: ModeG0}, 0)
	require.NoError(t, err)
	assert.Empty(t, r.Segments)
	assert.Equal(t, ModeG0, r.Final.Mode)
}

func TestParse_LineNumbers(t *testing.T) {
	r := Parse("N10 G1 X1\nN20 X2 ; done")
	require.Len(t, r.Segments, 2)
	assert.Equal(t, v(2, 0, 0), r.Segments[1].End)
}

func TestParse_NoModeWithoutCoordinates(t *testing.T) {
	r := Parse("G21\nG90\nM3 S1000\nX5")
	assertWellFormed(t, r)

	assert.Equal(t, []int{0, 1, 2}, r.Skipped)
	require.Len(t, r.Segments, 1)
	assert.Equal(t, ModeG1, r.Modes[0])
	assert.Equal(t, 3, r.LineMap[0])
}

func TestParse_ZeroLengthSegment(t *testing.T) {
	r := Parse("G1 X1\nG1")
	require.Len(t, r.Segments, 2)
	assert.Equal(t, 0.0, r.Segments[1].Length())
}

func TestParse_MalformedNumbers(t *testing.T) {
	r := Parse("G1 X5 Y5\nX1.2.3 Y7\nX- Y\nG1 X")
	assertWellFormed(t, r)

	require.Len(t, r.Segments, 4)
	assert.Equal(t, v(5, 7, 0), r.Segments[1].End)
	assert.Equal(t, v(5, 7, 0), r.Segments[2].End)
	assert.Equal(t, v(5, 7, 0), r.Final.Position())
}

func TestParse_G17DoesNotSetMode(t *testing.T) {
	r := Parse("G0 X1\nG17 X2")
	assert.Equal(t, []Mode{ModeG0, ModeG0}, r.Modes)
}

func TestParse_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n\t\n"} {
		r := Parse(text)
		assertWellFormed(t, r)
		assert.False(t, r.AnyDrawn)
		assert.Empty(t, r.Segments)
		assert.Empty(t, r.Err)
	}
}

func TestParse_ArcEndpoints(t *testing.T) {
	r := Parse("G0 X1 Y2 Z3\nG2 X11 Y2 Z1 I5 J0")
	assertWellFormed(t, r)

	arc := r.Segments[1:]
	require.Len(t, arc, geometry.DefaultArcSegments)
	assert.InDelta(t, 0, arc[0].Start.Distance(v(1, 2, 3)), 1e-3)
	assert.InDelta(t, 0, arc[len(arc)-1].End.Distance(v(11, 2, 1)), 1e-3)
	assert.Equal(t, geometry.DefaultArcSegments, r.Counts[ModeG2])
	for _, line := range r.LineMap[1:] {
		assert.Equal(t, 1, line)
	}

	// consecutive arc segments share endpoints
	for k := 1; k < len(arc); k++ {
		assert.Equal(t, arc[k-1].End, arc[k].Start)
	}
}

func TestParse_ArcDirection(t *testing.T) {
	tests := []struct {
		name      string
		program   string
		clockwise bool
	}{
		{"G2 quarter", "G0 X10 Y0\nG2 X0 Y-10 I-10 J0", true},
		{"G3 quarter", "G0 X10 Y0\nG3 X0 Y10 I-10 J0", false},
		{"G2 wrapping", "G0 X10 Y0\nG2 X0 Y10 I-10", true},
		{"G3 wrapping", "G0 X10 Y0\nG3 X0 Y-10 I-10", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Parse(tt.program)
			arc := r.Segments[1:]
			require.NotEmpty(t, arc)

			// the first step must turn in the commanded direction around (0,0)
			first := arc[0]
			cross := first.Start.X*first.End.Y - first.Start.Y*first.End.X
			if tt.clockwise {
				assert.Less(t, cross, 0.0)
			} else {
				assert.Greater(t, cross, 0.0)
			}

			sweep := geometry.ArcSweep(arc[0].Start, arc[len(arc)-1].End, geometry.Vector3{}, tt.clockwise)
			if tt.clockwise {
				assert.LessOrEqual(t, sweep, 0.0)
			} else {
				assert.GreaterOrEqual(t, sweep, 0.0)
			}
		})
	}
}

func TestParse_FullCircle(t *testing.T) {
	var r *ChunkResult
	require.NotPanics(t, func() {
		r = Parse("G2 X0 Y0 I5 J0")
	})
	assertWellFormed(t, r)
	require.Len(t, r.Segments, geometry.DefaultArcSegments)

	assert.Equal(t, v(0, 0, 0), r.Segments[0].Start)
	assert.Equal(t, v(0, 0, 0), r.Segments[len(r.Segments)-1].End)
	assert.InDelta(t, 0, r.Segments[15].End.Distance(v(10, 0, 0)), 1e-9)
	assert.Empty(t, r.Err)
}

func TestParse_RadiusArc(t *testing.T) {
	h := math.Sqrt(75)

	tests := []struct {
		program string
		center  geometry.Vector3
	}{
		{"G2 X10 Y0 R10", v(5, -h, 0)},
		{"G3 X10 Y0 R10", v(5, h, 0)},
		{"G2 X10 Y0 R-10", v(5, h, 0)},
		{"G2 X10 Y0 R5", v(5, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.program, func(t *testing.T) {
			r := Parse(tt.program)
			require.Len(t, r.Segments, geometry.DefaultArcSegments)
			for _, s := range r.Segments {
				assert.InDelta(t, tt.center.DistanceXY(v(0, 0, 0)), tt.center.DistanceXY(s.End), 1e-9)
			}
			assert.Equal(t, v(10, 0, 0), r.Final.Position())
		})
	}
}

func TestParse_RadiusArcSemicircleGoesOverTheTop(t *testing.T) {
	r := Parse("G2 X10 Y0 R5")
	mid := r.Segments[len(r.Segments)/2-1].End
	assert.InDelta(t, 0, mid.Distance(v(5, 5, 0)), 1e-9)
}

func TestParse_DegenerateArcSkipped(t *testing.T) {
	r := Parse("G0 X1 Y1\nG2 X5 Y5\nG3 X1 Y1 R3\nG2 X4 I0 J0\nG1 X2")
	assertWellFormed(t, r)

	assert.Equal(t, []int{1, 2, 3}, r.Skipped)
	require.Len(t, r.Segments, 2)
	// skipped arcs do not move the tool
	assert.Equal(t, v(1, 1, 0), r.Segments[1].Start)
	assert.Equal(t, ModeG1, r.Final.Mode)
}

func TestParse_SingleOffsetWord(t *testing.T) {
	r := Parse("G0 X10\nG3 X-10 J0")
	// J alone with I missing: I counts as zero, center on the start point
	assert.Equal(t, []int{1}, r.Skipped)

	r = Parse("G0 X10\nG3 X-10 I-10")
	require.Len(t, r.Segments, 1+geometry.DefaultArcSegments)
	assert.InDelta(t, 10, r.Segments[16].End.Y, 1e-9)
}

func TestParseChunk_ThreadsState(t *testing.T) {
	p := NewParser()
	first, err := p.ParseChunk([]string{"G0 X1", "G2 X3 Y0 I1"}, DefaultState(), 0)
	require.NoError(t, err)

	second, err := p.ParseChunk([]string{"X5 Y0 I1", "G1 Z2"}, first.Final, 2)
	require.NoError(t, err)

	assert.Equal(t, first.Final, second.Initial)
	assert.Equal(t, ModeG2, second.Modes[0])
	assert.Equal(t, v(3, 0, 0), second.Segments[0].Start)
	assert.Equal(t, 2, second.LineMap[0])
	assert.Equal(t, 3, second.LineMap[len(second.LineMap)-1])
	assert.Equal(t, State{X: 5, Z: 2, Mode: ModeG1, AnyDrawn: true}, second.Final)
}

func TestParseChunk_AnyDrawnCarriesOver(t *testing.T) {
	r, err := NewParser().ParseChunk([]string{"(nothing)"}, State{AnyDrawn: true}, 0)
	require.NoError(t, err)
	assert.True(t, r.AnyDrawn)
	assert.True(t, r.Final.AnyDrawn)
}

func TestParseChunk_ChunkBoundaryEquivalence(t *testing.T) {
	program := strings.Join([]string{
		"(header) G21 G90",
		"G0 X0 Y0 Z5",
		"G1 Z-1",
		"X10",
		"Y10",
		"G2 X20 Y10 I5 J0",
		"G3 X20 Y0 R5",
		"X10 Y0 R-5",
		"N100 G1 X0 ; back home",
		"G2 X0 Y0 I5",
		"G0 Z5",
	}, "\n")
	lines := SplitLines(program)

	whole, err := NewParser().ParseChunk(lines, DefaultState(), 0)
	require.NoError(t, err)

	for _, size := range []int{1, 2, 3, 5, 100} {
		tp := NewToolpath()
		state := DefaultState()
		for start := 0; start < len(lines); start += size {
			end := start + size
			if end > len(lines) {
				end = len(lines)
			}
			r, err := NewParser().ParseChunk(lines[start:end], state, start)
			require.NoError(t, err)
			tp.Append(r)
			state = r.Final
		}

		require.Len(t, tp.Segments, len(whole.Segments), "chunk size %d", size)
		for i := range whole.Segments {
			assert.True(t, whole.Segments[i].Start.ApproxEqual(tp.Segments[i].Start, 1e-9))
			assert.True(t, whole.Segments[i].End.ApproxEqual(tp.Segments[i].End, 1e-9))
		}
		assert.Equal(t, whole.Modes, tp.Modes)
		assert.Equal(t, whole.LineMap, tp.LineMap)
		assert.Equal(t, whole.Skipped, tp.Skipped)
		assert.Equal(t, whole.Final, state)
	}
}

func TestParseChunk_RecoversFromPanic(t *testing.T) {
	p := NewParser()
	p.interpolate = func(start, end, center geometry.Vector3, clockwise bool, segments int) []geometry.Vector3 {
		panic("boom")
	}

	initial := State{X: 1, Mode: ModeG1}
	r, err := p.ParseChunk([]string{"G1 X2", "G2 X4 I1"}, initial, 40)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))
	assert.Contains(t, err.Error(), "line 42")

	require.NotNil(t, r)
	assertWellFormed(t, r)
	assert.Empty(t, r.Segments)
	assert.Equal(t, initial, r.Final)
	assert.Equal(t, err.Error(), r.Err)
	assert.Equal(t, 40, r.FirstLine)
}

func TestChunkResult_JSON(t *testing.T) {
	data, err := json.Marshal(Parse("G0 X1\nG1 Y1"))
	require.NoError(t, err)

	var decoded struct {
		Modes  []string       `json:"modes"`
		Counts map[string]int `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []string{"G0", "G1"}, decoded.Modes)
	assert.Equal(t, 1, decoded.Counts["G0"])
	assert.Equal(t, 0, decoded.Counts["G3"])
}
