package services

import "time"

// Clock supplies the current time. Tests pin it to a fixed instant.
type Clock func() time.Time

func SystemClock() time.Time { return time.Now().UTC() }

func (c Clock) now() time.Time {
	if c == nil {
		return SystemClock()
	}
	return c()
}
