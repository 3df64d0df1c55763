// Package sim steps through a parsed toolpath, revealing segments one at a
// time and reporting which program line produced the current one.
package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/geometry"
)

// State is the playback state
type State int

const (
	// Stopped is the initial state and the state after reaching either end
	Stopped State = iota
	// Playing advances the index on every tick
	Playing
	// Paused keeps the index without ticking
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "stopped"
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "stopped":
		*s = Stopped
	case "playing":
		*s = Playing
	case "paused":
		*s = Paused
	default:
		return fmt.Errorf("unknown playback state %q", text)
	}
	return nil
}

// MinInterval is the shortest time between two ticks
const MinInterval = time.Millisecond

// Frame describes what to draw for the current index: the first Index
// segments are revealed.
type Frame struct {
	Index  int          `json:"index"`
	Total  int          `json:"total"`
	Counts gcode.Counts `json:"counts"`
	// Tool is the end of the last revealed segment
	Tool    geometry.Vector3 `json:"tool"`
	HasTool bool             `json:"hasTool"`
	// Line is the program line of the last revealed segment, -1 if none
	Line  int   `json:"line"`
	State State `json:"state"`
}

// Options configures a Controller
type Options struct {
	// Speed is the number of segments per second (default 1)
	Speed float64
	// Reverse plays backwards towards index 0
	Reverse bool
	// Scheduler defaults to RealScheduler
	Scheduler Scheduler
	// OnFrame is called after every change of index or state. It is called
	// without the controller lock held.
	OnFrame func(Frame)
}

// Controller plays a toolpath back segment by segment. It is safe for use
// from multiple goroutines.
type Controller struct {
	mu         sync.Mutex
	tp         *gcode.Toolpath
	index      int
	state      State
	speed      float64
	reverse    bool
	generation uint64
	timer      Timer
	scheduler  Scheduler
	onFrame    func(Frame)
}

// New creates a stopped controller at index 0
func New(tp *gcode.Toolpath, opts Options) *Controller {
	if tp == nil {
		tp = gcode.NewToolpath()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler{}
	}
	c := &Controller{
		tp:        tp,
		reverse:   opts.Reverse,
		scheduler: opts.Scheduler,
		onFrame:   opts.OnFrame,
	}
	c.speed = normalizeSpeed(opts.Speed)
	return c
}

func normalizeSpeed(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

// Play starts or resumes playback. Playing from the end restarts at the
// beginning (or from the start, when reversed, restarts at the end).
func (c *Controller) Play() {
	c.mu.Lock()
	n := c.tp.Len()
	if !c.reverse && c.index >= n {
		c.index = 0
	} else if c.reverse && c.index <= 0 {
		c.index = n
	}
	c.state = Playing
	c.invalidate()
	c.schedule()
	f := c.frame()
	c.mu.Unlock()
	c.emit(f)
}

// Pause halts playback, keeps the index and enters Paused from any state
func (c *Controller) Pause() {
	c.transition(func() {
		c.state = Paused
	})
}

// Stop halts playback and rewinds to index 0
func (c *Controller) Stop() {
	c.transition(func() {
		c.state = Stopped
		c.index = 0
	})
}

// Rewind is an alias for Stop
func (c *Controller) Rewind() {
	c.Stop()
}

// FastForward reveals everything and stops
func (c *Controller) FastForward() {
	c.transition(func() {
		c.state = Stopped
		c.index = c.tp.Len()
	})
}

// Seek jumps to index, clamped to [0, Len], without animating. A running
// playback continues from the new index.
func (c *Controller) Seek(index int) {
	c.mu.Lock()
	c.index = clamp(index, c.tp.Len())
	c.invalidate()
	if c.state == Playing {
		c.schedule()
	}
	f := c.frame()
	c.mu.Unlock()
	c.emit(f)
}

// StepForward pauses and reveals one more segment
func (c *Controller) StepForward() {
	c.step(1)
}

// StepBackward pauses and hides the last revealed segment
func (c *Controller) StepBackward() {
	c.step(-1)
}

func (c *Controller) step(delta int) {
	c.transition(func() {
		if c.state == Playing {
			c.state = Paused
		}
		c.index = clamp(c.index+delta, c.tp.Len())
	})
}

// SetSpeed changes the playback speed in segments per second. Values <= 0
// select 1.
func (c *Controller) SetSpeed(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.speed = normalizeSpeed(v)
	if c.state == Playing {
		c.invalidate()
		c.schedule()
	}
}

// SetReverse selects the playback direction
func (c *Controller) SetReverse(reverse bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reverse = reverse
	if c.state == Playing {
		c.invalidate()
		c.schedule()
	}
}

// SetToolpath replaces the toolpath and stops playback
func (c *Controller) SetToolpath(tp *gcode.Toolpath) {
	if tp == nil {
		tp = gcode.NewToolpath()
	}
	c.transition(func() {
		c.tp = tp
		c.state = Stopped
		c.index = 0
	})
}

// Frame returns a snapshot of the current position
func (c *Controller) Frame() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame()
}

// State returns the playback state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Index returns the number of revealed segments
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Speed returns the playback speed
func (c *Controller) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// Reverse reports whether playback runs backwards
func (c *Controller) Reverse() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reverse
}

// Interval returns the time between ticks
func (c *Controller) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval()
}

func (c *Controller) interval() time.Duration {
	d := time.Duration(float64(time.Second) / c.speed)
	if d < MinInterval {
		return MinInterval
	}
	return d
}

// transition applies a state change under the lock, cancels any pending
// tick and reports the new frame
func (c *Controller) transition(apply func()) {
	c.mu.Lock()
	apply()
	c.invalidate()
	if c.state == Playing {
		c.schedule()
	}
	f := c.frame()
	c.mu.Unlock()
	c.emit(f)
}

// invalidate makes every scheduled tick stale
func (c *Controller) invalidate() {
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) schedule() {
	gen := c.generation
	c.timer = c.scheduler.AfterFunc(c.interval(), func() {
		c.tick(gen)
	})
}

// tick advances one segment if gen is still current
func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.state != Playing {
		c.mu.Unlock()
		return
	}

	n := c.tp.Len()
	if c.reverse {
		c.index--
	} else {
		c.index++
	}
	c.index = clamp(c.index, n)

	c.timer = nil
	if (!c.reverse && c.index >= n) || (c.reverse && c.index <= 0) {
		c.state = Stopped
		c.generation++
	} else {
		c.schedule()
	}
	f := c.frame()
	c.mu.Unlock()
	c.emit(f)
}

func (c *Controller) frame() Frame {
	f := Frame{
		Index:  c.index,
		Total:  c.tp.Len(),
		Counts: c.tp.CountsBefore(c.index),
		Line:   -1,
		State:  c.state,
	}
	if c.index > 0 {
		f.Tool = c.tp.Segments[c.index-1].End
		f.HasTool = true
		f.Line = c.tp.LineAt(c.index - 1)
	}
	return f
}

func (c *Controller) emit(f Frame) {
	if c.onFrame != nil {
		c.onFrame(f)
	}
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
