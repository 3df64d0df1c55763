package sim

import "time"

// Timer is a pending tick that can be stopped
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d. The controller never assumes f runs on a
// particular goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules ticks with time.AfterFunc
type RealScheduler struct{}

// AfterFunc implements Scheduler
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
