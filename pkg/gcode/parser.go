package gcode

import (
	"errors"
	"fmt"

	"github.com/philipparndt/gcodeview/pkg/geometry"
)

// ErrParse is wrapped by errors returned for unexpected failures while
// scanning. Malformed input never produces it.
var ErrParse = errors.New("parse failed")

// radiusEpsilon is the smallest arc radius that still produces geometry
const radiusEpsilon = 1e-9

// ChunkResult is the output of parsing one chunk of lines
type ChunkResult struct {
	// FirstLine is the zero-based file line of the chunk's first line
	FirstLine int `json:"firstLine"`
	// Points holds both endpoints of every segment, in order
	Points   []geometry.Vector3 `json:"-"`
	Segments []Segment          `json:"segments"`
	Modes    []Mode             `json:"modes"`
	// LineMap has one zero-based file line per segment
	LineMap []int `json:"lineMap"`
	// Skipped lists lines that produced no segment
	Skipped  []int  `json:"skipped"`
	Counts   Counts `json:"counts"`
	AnyDrawn bool   `json:"anyDrawn"`
	Initial  State  `json:"initial"`
	Final    State  `json:"final"`
	Err      string `json:"error,omitempty"`
}

func newChunkResult(initial State, firstLine int) *ChunkResult {
	return &ChunkResult{
		FirstLine: firstLine,
		Counts:    NewCounts(),
		AnyDrawn:  initial.AnyDrawn,
		Initial:   initial,
		Final:     initial,
	}
}

// emit appends one segment with its bookkeeping
func (r *ChunkResult) emit(start, end geometry.Vector3, mode Mode, line int) {
	r.Segments = append(r.Segments, Segment{Start: start, End: end})
	r.Points = append(r.Points, start, end)
	r.Modes = append(r.Modes, mode)
	r.LineMap = append(r.LineMap, line)
	r.Counts[mode]++
	r.AnyDrawn = true
}

// Parser turns G-code lines into toolpath segments
type Parser struct {
	// ArcSegments is the number of straight pieces per arc
	ArcSegments int

	// interpolate is swapped out by tests
	interpolate func(start, end, center geometry.Vector3, clockwise bool, segments int) []geometry.Vector3
}

// NewParser creates a parser with the default arc resolution
func NewParser() *Parser {
	return &Parser{ArcSegments: geometry.DefaultArcSegments}
}

// Parse parses a whole program as a single chunk from the zero state
func Parse(text string) *ChunkResult {
	result, _ := NewParser().ParseChunk(SplitLines(text), State{}, 0)
	return result
}

// ParseChunk interprets lines against the initial state. firstLine is the
// file line of lines[0] and is used for the line map.
//
// Malformed words are treated as absent and degenerate arcs are skipped;
// neither is reported as an error. An error is only returned when scanning
// fails unexpectedly, in which case the result is empty, carries the
// initial state as its final state and has Err set.
func (p *Parser) ParseChunk(lines []string, initial State, firstLine int) (result *ChunkResult, err error) {
	current := firstLine
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w at line %d: %v", ErrParse, current+1, r)
			result = newChunkResult(initial, firstLine)
			result.Err = err.Error()
		}
	}()

	result = newChunkResult(initial, firstLine)
	state := initial
	for i, raw := range lines {
		current = firstLine + i
		state = p.parseLine(result, state, raw, current)
	}

	state.AnyDrawn = result.AnyDrawn
	result.Final = state
	return result, nil
}

// parseLine interprets a single line and returns the updated state
func (p *Parser) parseLine(result *ChunkResult, state State, raw string, line int) State {
	text := StripComments(raw)
	if text == "" {
		result.Skipped = append(result.Skipped, line)
		return state
	}

	words := Tokenize(text)
	if mode, ok := words.MotionMode(); ok {
		state.Mode = mode
	}

	if !state.Mode.IsSet() {
		if !words.HasCoordinates() {
			result.Skipped = append(result.Skipped, line)
			return state
		}
		state.Mode = ModeG1
	}

	start := state.Position()
	target := start
	if v, ok := words.Get('X'); ok {
		target.X = v
	}
	if v, ok := words.Get('Y'); ok {
		target.Y = v
	}
	if v, ok := words.Get('Z'); ok {
		target.Z = v
	}

	if !state.Mode.IsArc() {
		result.emit(start, target, state.Mode, line)
		return state.moveTo(target)
	}

	clockwise := state.Mode == ModeG2
	center, ok := arcCenter(words, start, target, clockwise)
	if !ok {
		result.Skipped = append(result.Skipped, line)
		return state
	}

	points := p.arc(start, target, center, clockwise)
	for k := 1; k < len(points); k++ {
		result.emit(points[k-1], points[k], state.Mode, line)
	}
	return state.moveTo(target)
}

// arcCenter derives the arc center from I/J offsets or from R. A missing
// I or J counts as zero when the other is given.
func arcCenter(words Line, start, target geometry.Vector3, clockwise bool) (geometry.Vector3, bool) {
	i, hasI := words.Get('I')
	j, hasJ := words.Get('J')

	var center geometry.Vector3
	switch {
	case hasI || hasJ:
		center = geometry.NewVector3(start.X+i, start.Y+j, start.Z)
	case words.Has('R'):
		r, _ := words.Get('R')
		c, ok := geometry.RadiusArcCenter(start, target, r, clockwise)
		if !ok {
			return geometry.Vector3{}, false
		}
		center = c
	default:
		return geometry.Vector3{}, false
	}

	if !center.IsFinite() || start.DistanceXY(center) < radiusEpsilon {
		return geometry.Vector3{}, false
	}
	return center, true
}

func (p *Parser) arc(start, end, center geometry.Vector3, clockwise bool) []geometry.Vector3 {
	interpolate := p.interpolate
	if interpolate == nil {
		interpolate = geometry.InterpolateArc
	}
	segments := p.ArcSegments
	if segments < 1 {
		segments = geometry.DefaultArcSegments
	}
	return interpolate(start, end, center, clockwise, segments)
}
