package session

import "time"

// Timer is a cancellable countdown handle. Stop reports whether the call
// prevented the timer from firing.
type Timer interface {
	Stop() bool
}

// Clock abstracts time for the state machine so tests can drive the
// verification countdown deterministically.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

type realClock struct{}

// NewRealClock returns a Clock backed by the time package.
func NewRealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
