package domain

import (
	"fmt"
	"time"
)

// StageCount is the number of quizzes in one reminder chain
const StageCount = 5

// SchedulePolicy controls the spacing of the last two reminders.
// Both offsets are counted in days from the third reminder.
type SchedulePolicy struct {
	FourthAfterDays int
	FifthAfterDays  int
}

// DefaultSchedulePolicy reminds one and five days after the third quiz
func DefaultSchedulePolicy() SchedulePolicy {
	return SchedulePolicy{FourthAfterDays: 1, FifthAfterDays: 5}
}

// Validate makes sure the resulting timeline is strictly increasing
func (p SchedulePolicy) Validate() error {
	if p.FourthAfterDays < 1 {
		return fmt.Errorf("fourth reminder offset must be at least 1 day, got %d", p.FourthAfterDays)
	}
	if p.FifthAfterDays <= p.FourthAfterDays {
		return fmt.Errorf("fifth reminder offset (%d) must be greater than fourth (%d)",
			p.FifthAfterDays, p.FourthAfterDays)
	}
	return nil
}

// Timeline is the ordered list of delivery instants of one chain
type Timeline []time.Time

// BuildTimeline computes the reminder instants for a chain started at now.
//
//  1. this evening, or tomorrow evening when this evening already passed
//  2. the next morning after (1)
//  3. the evening of the same day as (2), pushed a day if it is not after (2)
//  4. (3) + FourthAfterDays
//  5. (3) + FifthAfterDays
//
// Instants are computed in now's location and truncated to whole seconds.
func BuildTimeline(now time.Time, settings ReminderSettings, policy SchedulePolicy) Timeline {
	now = now.Truncate(time.Second)

	first := at(now, settings.Evening)
	if first.Before(now) {
		first = first.AddDate(0, 0, 1)
	}

	second := at(first.AddDate(0, 0, 1), settings.Morning)

	third := at(second, settings.Evening)
	if !third.After(second) {
		third = third.AddDate(0, 0, 1)
	}

	fourth := third.AddDate(0, 0, policy.FourthAfterDays)
	fifth := third.AddDate(0, 0, policy.FifthAfterDays)

	return Timeline{first, second, third, fourth, fifth}
}

// at returns day's date at the given clock time
func at(day time.Time, c Clock) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

// Next returns the index of the first instant after now, or len(t) if none
func (t Timeline) Next(now time.Time) int {
	for i, instant := range t {
		if instant.After(now) {
			return i
		}
	}
	return len(t)
}
