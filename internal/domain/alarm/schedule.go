package alarm

import "time"

// daysPerWeek bounds the recurrence scan; a normalized alarm always matches
// within one full week.
const daysPerWeek = 7

// NextOccurrence computes the earliest instant strictly after now at which the
// alarm should fire.
//
// The comparison is strictly greater-than: an alarm whose time equals now is
// not due and rolls to the next valid occurrence, avoiding a double fire at
// the exact boundary. With an empty day set the next calendar occurrence of
// the alarm's hour:minute is used, rolling to tomorrow when today's instance
// has passed. With a non-empty set the candidate advances day by day until it
// lands on a matching weekday.
func (a *Alarm) NextOccurrence(now time.Time) time.Time {
	candidate := time.Date(
		now.Year(), now.Month(), now.Day(),
		a.Time.Hour(), a.Time.Minute(), 0, 0,
		now.Location(),
	)

	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}

	if !a.Recurring() {
		return candidate
	}

	for i := 0; i < daysPerWeek; i++ {
		if a.firesOn(candidate.Weekday()) {
			return candidate
		}

		candidate = candidate.AddDate(0, 0, 1)
	}

	// Unreachable for a normalized alarm: a non-empty day set matches within
	// seven steps.
	return candidate
}

// firesOn reports whether the alarm's day set contains the given weekday.
func (a *Alarm) firesOn(day time.Weekday) bool {
	for _, d := range a.Days {
		if mapped, ok := d.Time(); ok && mapped == day {
			return true
		}
	}

	return false
}
