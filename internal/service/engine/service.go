package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/timursak/alarm-clock/internal/config"
	domain "github.com/timursak/alarm-clock/internal/domain/alarm"
	"github.com/timursak/alarm-clock/internal/logger"
	repo "github.com/timursak/alarm-clock/internal/repository/alarms"
	"github.com/timursak/alarm-clock/internal/scheduler"
)

// Ringer abstracts the session operations the engine triggers on fire events.
type Ringer interface {
	Begin(ctx context.Context, a *domain.Alarm)
	Resume(ctx context.Context, alarmID int64)
}

// Options tunes occurrence presentation. Zero values fall back to config defaults.
type Options struct {
	// Channel is the notification channel for base occurrences.
	Channel string
	// DefaultSound is used when an alarm does not name a sound.
	DefaultSound string
}

// Service is the alarm state machine: it owns all mutations of the alarm
// collection and issues scheduling commands to the notification service.
type Service struct {
	// mu serializes store mutations; the store itself assumes a single writer.
	mu sync.Mutex

	repo   repo.Repository
	sched  scheduler.Scheduler
	ringer Ringer
	opts   Options

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// SaveOutcome reports the result of a save or toggle. ScheduleWarning is
// non-nil when the alarm was persisted but could not be scheduled; the record
// stays enabled so the user can retry by toggling.
type SaveOutcome struct {
	Alarm           *domain.Alarm
	ScheduleWarning error
}

var (
	// ErrAlarmNotFound is returned when the requested alarm id is not in the store.
	ErrAlarmNotFound = errors.New("alarm not found")
	// ErrTimeRequired is returned when a saved alarm carries no time.
	ErrTimeRequired = errors.New("alarm time is required")
)

// defaultBody is shown when an alarm has no label.
const defaultBody = "Time to wake up!"

// NewService wires the engine with its collaborators.
func NewService(repository repo.Repository, sched scheduler.Scheduler, ringer Ringer, opts Options) *Service {
	if opts.Channel == "" {
		opts.Channel = config.DefaultChannel
	}

	if opts.DefaultSound == "" {
		opts.DefaultSound = config.DefaultSound
	}

	return &Service{
		repo:   repository,
		sched:  sched,
		ringer: ringer,
		opts:   opts,
		now:    time.Now,
	}
}

// List returns the persisted alarm collection.
func (s *Service) List(ctx context.Context) ([]*domain.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.repo.Load(ctx)
}

// Save creates or fully replaces an alarm. A zero ID means create; editing
// keeps the id and replaces every field. The record is persisted first; when
// enabled, the next occurrence is computed and scheduled afterwards. A
// scheduling failure never rolls back the store write.
func (s *Service) Save(ctx context.Context, a *domain.Alarm) (*SaveOutcome, error) {
	if a == nil || a.Time.IsZero() {
		return nil, ErrTimeRequired
	}

	a = a.Clone()
	a.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	collection, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load alarms: %w", err)
	}

	if a.ID == 0 {
		a.ID = nextID(collection)
		collection = append(collection, a)
	} else {
		replaced := false

		for i, existing := range collection {
			if existing.ID == a.ID {
				collection[i] = a
				replaced = true

				break
			}
		}

		if !replaced {
			return nil, fmt.Errorf("%w: %d", ErrAlarmNotFound, a.ID)
		}
	}

	if err = s.repo.Save(ctx, collection); err != nil {
		return nil, fmt.Errorf("persist alarms: %w", err)
	}

	outcome := &SaveOutcome{Alarm: a.Clone()}

	if a.Enabled {
		outcome.ScheduleWarning = s.arm(ctx, a)
	} else {
		// Editing an alarm into the disabled state drops its pending occurrence.
		if err = s.sched.Cancel(ctx, a.ID); err != nil {
			logger.WarnKV(ctx, "Failed to cancel occurrence", "alarm_id", a.ID, "error", err)
		}
	}

	logger.InfoKV(ctx, "Alarm saved", "alarm_id", a.ID, "enabled", a.Enabled)

	return outcome, nil
}

// Toggle flips the enabled flag: Armed becomes Disabled (occurrence
// canceled), Disabled becomes Armed (next fire recomputed and scheduled).
func (s *Service) Toggle(ctx context.Context, id int64) (*SaveOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	collection, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load alarms: %w", err)
	}

	a := findByID(collection, id)
	if a == nil {
		return nil, fmt.Errorf("%w: %d", ErrAlarmNotFound, id)
	}

	a.Enabled = !a.Enabled

	if err = s.repo.Save(ctx, collection); err != nil {
		return nil, fmt.Errorf("persist alarms: %w", err)
	}

	outcome := &SaveOutcome{Alarm: a.Clone()}

	if a.Enabled {
		outcome.ScheduleWarning = s.arm(ctx, a)
	} else {
		if err = s.sched.Cancel(ctx, id); err != nil {
			logger.WarnKV(ctx, "Failed to cancel occurrence", "alarm_id", id, "error", err)
		}
	}

	logger.InfoKV(ctx, "Alarm toggled", "alarm_id", id, "enabled", a.Enabled)

	return outcome, nil
}

// Delete removes the alarm record and cancels any pending occurrence,
// regardless of the alarm's current state. Deleting an unknown id only
// cancels, keeping the operation idempotent.
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	collection, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load alarms: %w", err)
	}

	remaining := make([]*domain.Alarm, 0, len(collection))
	for _, a := range collection {
		if a.ID != id {
			remaining = append(remaining, a)
		}
	}

	if len(remaining) != len(collection) {
		if err = s.repo.Save(ctx, remaining); err != nil {
			return fmt.Errorf("persist alarms: %w", err)
		}
	}

	if err = s.sched.Cancel(ctx, id); err != nil {
		logger.WarnKV(ctx, "Failed to cancel occurrence", "alarm_id", id, "error", err)
	}

	logger.InfoKV(ctx, "Alarm deleted", "alarm_id", id)

	return nil
}

// Rearm schedules every enabled alarm. Called once at startup so a process
// restart does not lose pending occurrences. Individual failures are logged
// and do not stop the pass.
func (s *Service) Rearm(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	collection, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load alarms: %w", err)
	}

	armed := 0

	for _, a := range collection {
		if !a.Enabled {
			continue
		}

		if warn := s.arm(ctx, a); warn == nil {
			armed++
		}
	}

	logger.InfoKV(ctx, "Alarms re-armed", "armed", armed, "total", len(collection))

	return nil
}

// HandleFire processes an inbound delivery from the scheduler. Base fires
// begin a ringing session; snooze fires resume the retained one; test fires
// are already ringing and are ignored.
//
// Recurrence policy: a repeating alarm is self-perpetuating. The next
// matching occurrence is computed and scheduled here, before the session
// starts, so the weekly schedule survives without user interaction. One-off
// alarms are not re-armed.
func (s *Service) HandleFire(ctx context.Context, ev scheduler.FireEvent) {
	alarmID := ev.ID
	if raw, ok := ev.Metadata[scheduler.MetaAlarmID]; ok {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			alarmID = parsed
		}
	}

	switch ev.Metadata[scheduler.MetaKind] {
	case scheduler.KindTest:
		// The test session began when the user pressed the button; the
		// notification is presentation parity only.
		logger.DebugKV(ctx, "Test occurrence delivered", "alarm_id", alarmID)

		return
	case scheduler.KindSnooze:
		s.ringer.Resume(ctx, alarmID)

		return
	}

	s.mu.Lock()

	collection, err := s.repo.Load(ctx)
	if err != nil {
		s.mu.Unlock()
		logger.ErrorKV(ctx, "Fire for unreadable store", "alarm_id", alarmID, "error", err)

		return
	}

	a := findByID(collection, alarmID)
	if a == nil {
		s.mu.Unlock()
		logger.WarnKV(ctx, "Fire for unknown alarm", "alarm_id", alarmID)

		return
	}

	if a.Recurring() {
		if warn := s.arm(ctx, a); warn != nil {
			logger.WarnKV(ctx, "Failed to re-arm recurring alarm", "alarm_id", a.ID, "error", warn)
		}
	}

	fired := a.Clone()
	s.mu.Unlock()

	logger.InfoKV(ctx, "Alarm fired", "alarm_id", fired.ID, "label", fired.Label)

	s.ringer.Begin(ctx, fired)
}

// arm computes the next occurrence and schedules it.
// The returned error is the caller's scheduling warning.
func (s *Service) arm(ctx context.Context, a *domain.Alarm) error {
	at := a.NextOccurrence(s.now())

	occ := scheduler.Occurrence{
		ID:      a.ID,
		At:      at,
		Title:   "Alarm",
		Body:    bodyFor(a),
		Sound:   s.resolveSound(a.Sound),
		Channel: s.opts.Channel,
		Metadata: map[string]string{
			scheduler.MetaAlarmID: strconv.FormatInt(a.ID, 10),
			scheduler.MetaKind:    scheduler.KindBase,
		},
	}

	if err := s.sched.Schedule(ctx, occ); err != nil {
		logger.ErrorKV(ctx, "Failed to schedule occurrence", "alarm_id", a.ID, "at", at, "error", err)

		return fmt.Errorf("schedule alarm %d: %w", a.ID, err)
	}

	logger.InfoKV(ctx, "Alarm armed", "alarm_id", a.ID, "at", at)

	return nil
}

// resolveSound maps empty or "default" selections to the configured default asset.
func (s *Service) resolveSound(sound string) string {
	if sound == "" || sound == "default" {
		return s.opts.DefaultSound
	}

	return sound
}

// bodyFor returns the display body for the alarm.
func bodyFor(a *domain.Alarm) string {
	if a.Label != "" {
		return a.Label
	}

	return defaultBody
}

// nextID assigns the smallest id above every existing one, starting at 1.
func nextID(collection []*domain.Alarm) int64 {
	var maxID int64

	for _, a := range collection {
		if a.ID > maxID {
			maxID = a.ID
		}
	}

	return maxID + 1
}

// findByID returns the alarm with the id, or nil.
func findByID(collection []*domain.Alarm, id int64) *domain.Alarm {
	for _, a := range collection {
		if a.ID == id {
			return a
		}
	}

	return nil
}
