package alarm

import "time"

// Weekday is a recurrence day tag, one of mon..sun.
type Weekday string

// The seven canonical weekday tags, as stored and exchanged with clients.
const (
	Monday    Weekday = "mon"
	Tuesday   Weekday = "tue"
	Wednesday Weekday = "wed"
	Thursday  Weekday = "thu"
	Friday    Weekday = "fri"
	Saturday  Weekday = "sat"
	Sunday    Weekday = "sun"
)

// weekdayToTime maps canonical tags to the standard library weekday.
//
//nolint:gochecknoglobals // Immutable lookup table.
var weekdayToTime = map[Weekday]time.Weekday{
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
	Sunday:    time.Sunday,
}

// Valid reports whether w is one of the seven canonical tags.
func (w Weekday) Valid() bool {
	_, ok := weekdayToTime[w]

	return ok
}

// Time converts the tag to the standard library weekday.
// The second return value is false for unknown tags.
func (w Weekday) Time() (time.Weekday, bool) {
	d, ok := weekdayToTime[w]

	return d, ok
}

// Alarm is a persistent wake-up alarm record.
type Alarm struct {
	// ID uniquely identifies the alarm across the collection. Assigned at
	// creation and never changed afterwards.
	ID int64 `json:"id"`
	// Time carries the wall-clock time of day; only hour and minute are
	// significant for recurring alarms.
	Time time.Time `json:"time"`
	// Label is an optional free-text name shown when the alarm rings.
	Label string `json:"label"`
	// Enabled suspends scheduling without deleting the record when false.
	Enabled bool `json:"enabled"`
	// Days is the set of weekdays on which a repeating alarm re-fires.
	// An empty set means the alarm fires on the next occurrence of Time only.
	Days []Weekday `json:"days"`
	// Sound selects an audio asset; empty means the configured default.
	Sound string `json:"sound"`
	// Vibrate triggers haptic feedback when the alarm fires.
	Vibrate bool `json:"vibrate"`
}

// Clone returns a deep copy of the alarm to avoid leaking internal references.
func (a *Alarm) Clone() *Alarm {
	if a == nil {
		return nil
	}

	cloned := *a

	if a.Days != nil {
		cloned.Days = make([]Weekday, len(a.Days))
		copy(cloned.Days, a.Days)
	}

	return &cloned
}

// Recurring reports whether the alarm repeats on at least one weekday.
func (a *Alarm) Recurring() bool {
	return len(a.Days) > 0
}

// Normalize canonicalizes the record in place: unknown weekday tags are
// dropped, duplicates removed, and a nil day slice becomes the empty set.
// Every alarm entering the engine goes through this exactly once, so the
// state machine never branches on malformed variants.
func (a *Alarm) Normalize() {
	days := make([]Weekday, 0, len(a.Days))
	seen := make(map[Weekday]struct{}, len(a.Days))

	for _, d := range a.Days {
		if !d.Valid() {
			continue
		}

		if _, ok := seen[d]; ok {
			continue
		}

		seen[d] = struct{}{}
		days = append(days, d)
	}

	a.Days = days
}
