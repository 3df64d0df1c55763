package gcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripComments(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"G1 X5", "G1 X5"},
		{"(This is a G2 comment) G1 X5 Y5", "G1 X5 Y5"},
		{"G1 X5 ; move G2", "G1 X5"},
		{"G1(inline)X5", "G1 X5"},
		{"(unclosed G2 X1", ""},
		{"N100 G0 X1", "G0 X1"},
		{"n7G1X2", "G1X2"},
		{"   (only a comment)   ", ""},
		{"; G3", ""},
		{"N", "N"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.out, StripComments(tt.in), "input %q", tt.in)
	}
}

func TestTokenize(t *testing.T) {
	words := Tokenize("G01x10.5 Y-2 z+.5 F1200")
	assert.Equal(t, Line{
		{Letter: 'G', Value: 1, Valid: true},
		{Letter: 'X', Value: 10.5, Valid: true},
		{Letter: 'Y', Value: -2, Valid: true},
		{Letter: 'Z', Value: 0.5, Valid: true},
		{Letter: 'F', Value: 1200, Valid: true},
	}, words)
}

func TestTokenize_Malformed(t *testing.T) {
	words := Tokenize("X1.2.3 Y- Z R")
	for _, w := range words {
		assert.False(t, w.Valid, "word %c", w.Letter)
	}
	assert.False(t, words.HasCoordinates())

	_, ok := words.Get('X')
	assert.False(t, ok)
}

func TestLine_MotionMode(t *testing.T) {
	tests := []struct {
		line string
		mode Mode
		ok   bool
	}{
		{"G0 X1", ModeG0, true},
		{"G01 X1", ModeG1, true},
		{"G1 G2 G3", ModeG3, true},
		{"G3 G17", ModeG3, true},
		{"G17 G21 G90", ModeNone, false},
		{"G38.2 Z-5", ModeNone, false},
		{"G2.5", ModeNone, false},
		{"M3 S1000", ModeNone, false},
		{"g2 x1", ModeG2, true},
	}
	for _, tt := range tests {
		mode, ok := Tokenize(tt.line).MotionMode()
		assert.Equal(t, tt.mode, mode, tt.line)
		assert.Equal(t, tt.ok, ok, tt.line)
	}
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{"G1 X1", "G1 X2"}, SplitLines("G1 X1\r\nG1 X2\r\n"))
	assert.Equal(t, []string{"a", "", "b"}, SplitLines("a\n\nb"))
	assert.Equal(t, []string{""}, SplitLines("\n"))
}

func TestMode_Text(t *testing.T) {
	for _, m := range Modes {
		text, err := m.MarshalText()
		assert.NoError(t, err)

		parsed, err := ParseMode(string(text))
		assert.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	_, err := ParseMode("G5")
	assert.Error(t, err)
	assert.True(t, ModeG2.IsArc())
	assert.False(t, ModeG1.IsArc())
}
