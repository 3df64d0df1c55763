package gcode

import (
	"fmt"

	"github.com/philipparndt/gcodeview/pkg/geometry"
)

// State is the modal machine state threaded from line to line and from
// chunk to chunk. The zero value is the "nothing set" state: origin, no
// motion mode.
type State struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	Mode     Mode    `json:"mode"`
	AnyDrawn bool    `json:"anyDrawn"`
}

// DefaultState returns the state a program starts in: origin, linear motion
func DefaultState() State {
	return State{Mode: ModeG1}
}

// Position returns the tool position
func (s State) Position() geometry.Vector3 {
	return geometry.NewVector3(s.X, s.Y, s.Z)
}

// moveTo returns a copy positioned at p
func (s State) moveTo(p geometry.Vector3) State {
	s.X, s.Y, s.Z = p.X, p.Y, p.Z
	return s
}

func (s State) String() string {
	return fmt.Sprintf("%s (%.3f, %.3f, %.3f)", s.Mode, s.X, s.Y, s.Z)
}

// Segment is one straight piece of the toolpath
type Segment struct {
	Start geometry.Vector3 `json:"start"`
	End   geometry.Vector3 `json:"end"`
}

// Length returns the Euclidean length of the segment
func (s Segment) Length() float64 {
	return s.Start.Distance(s.End)
}

// Midpoint returns the point halfway between start and end
func (s Segment) Midpoint() geometry.Vector3 {
	return s.Start.Lerp(s.End, 0.5)
}

// Direction returns the unit vector from start to end, or zero for a
// zero-length segment
func (s Segment) Direction() geometry.Vector3 {
	return s.End.Sub(s.Start).Normalize()
}

// Counts holds the number of segments per mode
type Counts map[Mode]int

// NewCounts returns counts with every drawable mode at zero
func NewCounts() Counts {
	c := make(Counts, len(Modes))
	for _, m := range Modes {
		c[m] = 0
	}
	return c
}

// Add accumulates other into c
func (c Counts) Add(other Counts) {
	for m, n := range other {
		c[m] += n
	}
}

// Total returns the number of segments across all modes
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Clone returns an independent copy
func (c Counts) Clone() Counts {
	out := make(Counts, len(c))
	for m, n := range c {
		out[m] = n
	}
	return out
}
