package services

import "time"

// Clock returns the current time in the billing timezone.
type Clock func() time.Time

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return func() time.Time { return time.Now().In(loc) }
}
