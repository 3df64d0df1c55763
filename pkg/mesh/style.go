// Package mesh turns toolpath segments into drawable batches: one line
// list or one instanced cylinder batch per motion mode.
package mesh

import (
	"image/color"

	"github.com/philipparndt/gcodeview/pkg/gcode"
)

// Style is the color and opacity used to draw one mode
type Style struct {
	Color   color.RGBA
	Opacity float32
}

// Styles maps each mode to its style
type Styles map[gcode.Mode]Style

// DefaultStyles returns the standard palette: rapids in faint orange, linear
// moves in green, clockwise arcs in blue, counter-clockwise arcs in magenta
func DefaultStyles() Styles {
	return Styles{
		gcode.ModeG0: {Color: color.RGBA{R: 255, G: 165, A: 255}, Opacity: 0.35},
		gcode.ModeG1: {Color: color.RGBA{G: 200, B: 80, A: 255}, Opacity: 1},
		gcode.ModeG2: {Color: color.RGBA{R: 40, G: 120, B: 255, A: 255}, Opacity: 1},
		gcode.ModeG3: {Color: color.RGBA{R: 230, G: 40, B: 230, A: 255}, Opacity: 1},
	}
}

// Get returns the style for mode, falling back to the default palette
func (s Styles) Get(mode gcode.Mode) Style {
	if style, ok := s[mode]; ok {
		return style
	}
	if style, ok := DefaultStyles()[mode]; ok {
		return style
	}
	return Style{Color: color.RGBA{R: 200, G: 200, B: 200, A: 255}, Opacity: 1}
}

// Transparent reports whether the style needs blending
func (s Style) Transparent() bool {
	return s.Opacity < 1
}

// RGBA returns the color with the opacity folded into the alpha channel
func (s Style) RGBA() color.RGBA {
	c := s.Color
	opacity := s.Opacity
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	c.A = uint8(float32(c.A) * opacity)
	return c
}
