package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Clock is a time of day with minute precision
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "9:00" or "09:00"
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 {
		return Clock{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}

	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return Clock{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}

	return Clock{Hour: hour, Minute: minute}, nil
}

// MustParseClock is ParseClock for constants; it panics on bad input
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns HH:MM
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ReminderSettings holds the two daily anchor times of a user
type ReminderSettings struct {
	UserID  int64
	Morning Clock
	Evening Clock
}

// DefaultMorning and DefaultEvening are used when a user never set their times
var (
	DefaultMorning = Clock{Hour: 9}
	DefaultEvening = Clock{Hour: 21}
)
