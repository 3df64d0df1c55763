package gcode

import (
	"strconv"
	"strings"
)

// Word is one letter/number pair on a line, e.g. "X10.5". Valid is false
// when the letter was followed by something that is not a number.
type Word struct {
	Letter byte
	Value  float64
	Valid  bool
}

// Line is the ordered list of words on a single line
type Line []Word

// StripComments removes a leading N line number, parenthesized comments
// and everything after a semicolon. An unclosed parenthesis runs to the end
// of the line.
func StripComments(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	depth := 0
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '(':
			depth++
		case c == ')' && depth > 0:
			depth--
			// keep words on either side of the comment apart
			b.WriteByte(' ')
		case depth > 0:
		case c == ';':
			i = len(raw)
		default:
			b.WriteByte(c)
		}
	}

	return stripLineNumber(strings.TrimSpace(b.String()))
}

// stripLineNumber drops a leading N<digits> block number
func stripLineNumber(line string) string {
	if len(line) < 2 || (line[0] != 'N' && line[0] != 'n') {
		return line
	}
	i := 1
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 1 {
		return line
	}
	return strings.TrimSpace(line[i:])
}

// Tokenize splits a comment-free line into words. Letters are upper-cased;
// characters that are neither letters nor part of a number are ignored.
func Tokenize(line string) Line {
	var words Line

	i := 0
	for i < len(line) {
		c := line[i]
		if !isLetter(c) {
			i++
			continue
		}

		j := i + 1
		for j < len(line) && isNumberChar(line[j]) {
			j++
		}

		w := Word{Letter: upper(c)}
		if v, err := strconv.ParseFloat(line[i+1:j], 64); err == nil {
			w.Value = v
			w.Valid = true
		}
		words = append(words, w)
		i = j
	}

	return words
}

// Get returns the value of the first valid word with the given letter
func (l Line) Get(letter byte) (float64, bool) {
	for _, w := range l {
		if w.Letter == letter && w.Valid {
			return w.Value, true
		}
	}
	return 0, false
}

// Has reports whether a valid word with the given letter is present
func (l Line) Has(letter byte) bool {
	_, ok := l.Get(letter)
	return ok
}

// MotionMode returns the last G0-G3 word on the line. G words with other
// numbers (G17, G21, G38.2, ...) are ignored.
func (l Line) MotionMode() (Mode, bool) {
	mode := ModeNone
	for _, w := range l {
		if w.Letter != 'G' || !w.Valid {
			continue
		}
		if w.Value != float64(int(w.Value)) {
			continue
		}
		if m := modeFromNumber(int(w.Value)); m != ModeNone {
			mode = m
		}
	}
	return mode, mode != ModeNone
}

// HasCoordinates reports whether any of X, Y, Z, I, J or R is present
func (l Line) HasCoordinates() bool {
	for _, w := range l {
		if !w.Valid {
			continue
		}
		switch w.Letter {
		case 'X', 'Y', 'Z', 'I', 'J', 'R':
			return true
		}
	}
	return false
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isNumberChar(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+'
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

// SplitLines splits program text into lines, accepting both \n and \r\n.
// A trailing newline does not produce an extra empty line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
