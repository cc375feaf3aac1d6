package service

import "time"

// Clock abstracts wall-clock reads so commit and audit timestamps are
// testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }
