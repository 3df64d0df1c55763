package viewer

import "time"

// Throttle lowers the frame rate when nothing has happened for a while.
// Input and progressive loading call Touch; the render loop asks Changed
// once per frame and applies the new rate when it differs.
type Throttle struct {
	ActiveFPS int32
	IdleFPS   int32
	IdleAfter time.Duration

	last    time.Time
	applied int32
}

// NewThrottle creates a throttle that starts active
func NewThrottle(activeFPS, idleFPS int32, idleAfter time.Duration) *Throttle {
	return &Throttle{
		ActiveFPS: activeFPS,
		IdleFPS:   idleFPS,
		IdleAfter: idleAfter,
		last:      time.Now(),
	}
}

// Touch records activity
func (t *Throttle) Touch(now time.Time) {
	t.last = now
}

// Idle reports whether no activity happened within IdleAfter
func (t *Throttle) Idle(now time.Time) bool {
	return now.Sub(t.last) >= t.IdleAfter
}

// Target returns the frame rate that should be in effect
func (t *Throttle) Target(now time.Time) int32 {
	if t.Idle(now) {
		return t.IdleFPS
	}
	return t.ActiveFPS
}

// Changed returns the target rate and whether it differs from the rate
// last returned with true
func (t *Throttle) Changed(now time.Time) (int32, bool) {
	target := t.Target(now)
	if target == t.applied {
		return target, false
	}
	t.applied = target
	return target, true
}
