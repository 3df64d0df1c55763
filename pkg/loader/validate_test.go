package loader

import (
	"testing"

	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunk(index int, initial, final gcode.State) Chunk {
	return Chunk{Index: index, ChunkResult: &gcode.ChunkResult{Initial: initial, Final: final}}
}

func TestValidate_Continuous(t *testing.T) {
	a := gcode.State{X: 1, Y: 2, Z: 3, Mode: gcode.ModeG1}
	b := gcode.State{X: 4, Mode: gcode.ModeG2}
	nearA := gcode.State{X: 1.0005, Y: 2, Z: 3, Mode: gcode.ModeG1}

	issues := Validate([]Chunk{
		chunk(0, gcode.DefaultState(), a),
		chunk(1, nearA, b),
		chunk(2, b, b),
	})
	assert.Empty(t, issues)
}

func TestValidate_Mismatches(t *testing.T) {
	a := gcode.State{X: 1, Mode: gcode.ModeG1}
	moved := gcode.State{X: 1.01, Mode: gcode.ModeG1}
	both := gcode.State{Y: 5, Mode: gcode.ModeG0}

	issues := Validate([]Chunk{
		chunk(0, gcode.DefaultState(), a),
		chunk(1, moved, a),
		chunk(2, both, a),
	})

	require.Len(t, issues, 3)
	assert.Equal(t, PositionMismatch, issues[0].Kind)
	assert.Equal(t, 1, issues[0].Chunk)
	assert.Equal(t, a, issues[0].Expected)
	assert.Equal(t, moved, issues[0].Actual)

	assert.Equal(t, PositionMismatch, issues[1].Kind)
	assert.Equal(t, ModeMismatch, issues[2].Kind)
	assert.Equal(t, 2, issues[2].Chunk)
	assert.Contains(t, issues[2].String(), "mode_mismatch")
}

func TestValidate_Degenerate(t *testing.T) {
	assert.Empty(t, Validate(nil))
	assert.Empty(t, Validate([]Chunk{chunk(0, gcode.State{}, gcode.State{})}))
	assert.NotPanics(t, func() {
		Validate([]Chunk{{Index: 0}, {Index: 1}})
	})
}
