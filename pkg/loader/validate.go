package loader

import (
	"fmt"
	"math"

	"github.com/philipparndt/gcodeview/pkg/gcode"
)

// ContinuityEpsilon is the largest position difference tolerated between a
// chunk's final state and the next chunk's initial state
const ContinuityEpsilon = 0.001

// IssueKind classifies a continuity problem
type IssueKind string

const (
	// PositionMismatch means the tool position jumped across a chunk boundary
	PositionMismatch IssueKind = "position_mismatch"
	// ModeMismatch means the motion mode changed across a chunk boundary
	ModeMismatch IssueKind = "mode_mismatch"
)

// Issue is one continuity problem at the start of Chunk
type Issue struct {
	Kind     IssueKind   `json:"kind"`
	Chunk    int         `json:"chunk"`
	Expected gcode.State `json:"expected"`
	Actual   gcode.State `json:"actual"`
}

func (i Issue) String() string {
	return fmt.Sprintf("chunk %d: %s: expected %s, got %s", i.Chunk, i.Kind, i.Expected, i.Actual)
}

// Validate checks that every chunk started where the previous one ended.
// It only reports; it never fails.
func Validate(chunks []Chunk) []Issue {
	var issues []Issue
	for k := 1; k < len(chunks); k++ {
		prev, cur := chunks[k-1], chunks[k]
		if prev.ChunkResult == nil || cur.ChunkResult == nil {
			continue
		}

		expected, actual := prev.Final, cur.Initial
		if !samePosition(expected, actual) {
			issues = append(issues, Issue{Kind: PositionMismatch, Chunk: cur.Index, Expected: expected, Actual: actual})
		}
		if expected.Mode != actual.Mode {
			issues = append(issues, Issue{Kind: ModeMismatch, Chunk: cur.Index, Expected: expected, Actual: actual})
		}
	}
	return issues
}

func samePosition(a, b gcode.State) bool {
	return math.Abs(a.X-b.X) <= ContinuityEpsilon &&
		math.Abs(a.Y-b.Y) <= ContinuityEpsilon &&
		math.Abs(a.Z-b.Z) <= ContinuityEpsilon
}
