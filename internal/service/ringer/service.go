package ringer

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/timursak/alarm-clock/internal/config"
	domain "github.com/timursak/alarm-clock/internal/domain/alarm"
	"github.com/timursak/alarm-clock/internal/logger"
	"github.com/timursak/alarm-clock/internal/scheduler"
	"github.com/timursak/alarm-clock/internal/sideeffect"
)

const (
	// TestAlarmID is the reserved sentinel id for "try it" sessions. It lives
	// far outside the id-space the engine hands out, so a test never collides
	// with a stored alarm.
	TestAlarmID int64 = 999999

	// SnoozeIDOffset shifts snooze occurrences into their own id-space.
	// Successive snoozes add the snooze count on top, so every snooze of a
	// session gets a distinct occurrence id.
	SnoozeIDOffset int64 = 10000

	// testRingDelay is how soon the parity notification for a test session fires.
	testRingDelay = time.Second

	// defaultBody is shown when an alarm has no label.
	defaultBody = "Time to wake up!"

	// testLabel names the synthetic test alarm.
	testLabel = "Test alarm"
)

// Session is a read-only snapshot of the current ringing session.
type Session struct {
	// Alarm is the alarm (or synthetic test alarm) this session rings for.
	Alarm *domain.Alarm
	// SnoozeCount is how many times this session has been snoozed.
	SnoozeCount int
	// StartedAt is when the session began ringing first.
	StartedAt time.Time
	// Ringing is false between a snooze and the re-fire.
	Ringing bool
}

// Options tunes session behaviour. Zero values fall back to config defaults.
type Options struct {
	// SnoozeDelay is how far a snooze pushes the next ring.
	SnoozeDelay time.Duration
	// Channel is the notification channel for snooze and test occurrences.
	Channel string
	// DefaultSound is used when the alarm does not name a sound.
	DefaultSound string
	// PaymentAddress enables the snooze payment side effect when non-empty.
	PaymentAddress string
	// PaymentAmount is the amount transferred per snooze.
	PaymentAmount uint64
}

// Service owns the single ringing session. At most one session exists at a
// time: a fresh Begin replaces whatever was ringing before, mirroring how a
// newly fired alarm takes over the screen.
type Service struct {
	// mu protects current.
	mu sync.Mutex
	// current is the active session, nil when nothing rings.
	current *Session

	// sched receives snooze and test occurrences.
	sched scheduler.Scheduler
	// haptics fires on ring when the alarm asks for vibration.
	haptics sideeffect.Haptics
	// payer is invoked best-effort on every snooze.
	payer sideeffect.Payer

	opts Options

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewService wires a session service. Nil haptics or payer disable the
// respective side effect.
func NewService(sched scheduler.Scheduler, haptics sideeffect.Haptics, payer sideeffect.Payer, opts Options) *Service {
	if haptics == nil {
		haptics = sideeffect.NopHaptics{}
	}

	if payer == nil {
		payer = sideeffect.NopPayer{}
	}

	if opts.SnoozeDelay <= 0 {
		opts.SnoozeDelay = config.DefaultSnoozeDelay
	}

	if opts.Channel == "" {
		opts.Channel = config.DefaultChannel
	}

	if opts.DefaultSound == "" {
		opts.DefaultSound = config.DefaultSound
	}

	return &Service{
		sched:   sched,
		haptics: haptics,
		payer:   payer,
		opts:    opts,
		now:     time.Now,
	}
}

// Begin starts a fresh session for the alarm, replacing any existing one.
// The snooze counter starts at zero.
func (s *Service) Begin(ctx context.Context, a *domain.Alarm) {
	s.mu.Lock()

	if s.current != nil {
		logger.WarnKV(ctx, "Replacing active ringing session",
			"old_alarm_id", s.current.Alarm.ID, "new_alarm_id", a.ID)
	}

	s.current = &Session{
		Alarm:     a.Clone(),
		StartedAt: s.now(),
		Ringing:   true,
	}
	s.mu.Unlock()

	logger.InfoKV(ctx, "Ringing session started", "alarm_id", a.ID, "label", a.Label)

	s.impact(ctx, a)
}

// Resume re-rings the retained session after a snooze occurrence fires,
// preserving the snooze counter. A fire that matches no snoozed session is
// ignored: the user dismissed (or never had) the session in the meantime.
func (s *Service) Resume(ctx context.Context, alarmID int64) {
	s.mu.Lock()

	cur := s.current
	if cur == nil || cur.Alarm.ID != alarmID || cur.Ringing {
		s.mu.Unlock()
		logger.DebugKV(ctx, "No snoozed session to resume", "alarm_id", alarmID)

		return
	}

	cur.Ringing = true
	a := cur.Alarm
	s.mu.Unlock()

	logger.InfoKV(ctx, "Ringing session resumed", "alarm_id", alarmID, "snooze_count", cur.SnoozeCount)

	s.impact(ctx, a)
}

// Snooze defers the current session by scheduling a one-shot occurrence at
// now plus the snooze delay and stops the ringing. The session object is
// retained so the counter accumulates across re-fires; only Dismiss or a
// fresh Begin resets it.
//
// Without an active ringing session Snooze is a no-op. A scheduling failure
// is returned as a non-fatal warning; the session stops ringing either way.
// The payment side effect, when configured, is strictly best-effort.
func (s *Service) Snooze(ctx context.Context) error {
	s.mu.Lock()

	cur := s.current
	if cur == nil || !cur.Ringing {
		s.mu.Unlock()
		logger.Debug(ctx, "Snooze without active session, ignoring")

		return nil
	}

	cur.SnoozeCount++
	cur.Ringing = false

	var (
		a     = cur.Alarm
		count = cur.SnoozeCount
		at    = s.now().Add(s.opts.SnoozeDelay)
	)
	s.mu.Unlock()

	s.pay(ctx)

	occ := scheduler.Occurrence{
		ID:      a.ID + SnoozeIDOffset + int64(count),
		At:      at,
		Title:   fmt.Sprintf("Alarm (snoozed x%d)", count),
		Body:    bodyFor(a),
		Sound:   s.resolveSound(a.Sound),
		Channel: s.opts.Channel,
		Metadata: map[string]string{
			scheduler.MetaAlarmID: strconv.FormatInt(a.ID, 10),
			scheduler.MetaKind:    scheduler.KindSnooze,
		},
	}

	if err := s.sched.Schedule(ctx, occ); err != nil {
		logger.ErrorKV(ctx, "Failed to schedule snooze occurrence",
			"alarm_id", a.ID, "occurrence_id", occ.ID, "error", err)

		return fmt.Errorf("schedule snooze: %w", err)
	}

	logger.InfoKV(ctx, "Alarm snoozed",
		"alarm_id", a.ID, "snooze_count", count, "next_ring", at)

	return nil
}

// Dismiss ends the session and resets the snooze counter.
// Without a session it is a no-op.
func (s *Service) Dismiss(ctx context.Context) {
	s.mu.Lock()

	cur := s.current
	s.current = nil
	s.mu.Unlock()

	if cur == nil {
		logger.Debug(ctx, "Dismiss without active session, ignoring")

		return
	}

	logger.InfoKV(ctx, "Ringing session dismissed",
		"alarm_id", cur.Alarm.ID, "snooze_count", cur.SnoozeCount)
}

// Test begins a session for a synthetic alarm with the reserved sentinel id.
// The ring starts immediately; a near-immediate notification is also
// scheduled for parity with a real fire. The alarm store is never touched.
func (s *Service) Test(ctx context.Context, sound string, vibrate bool) {
	a := &domain.Alarm{
		ID:      TestAlarmID,
		Time:    s.now(),
		Label:   testLabel,
		Enabled: true,
		Days:    []domain.Weekday{},
		Sound:   sound,
		Vibrate: vibrate,
	}

	s.Begin(ctx, a)

	occ := scheduler.Occurrence{
		ID:      TestAlarmID,
		At:      s.now().Add(testRingDelay),
		Title:   testLabel,
		Body:    "This is a test. Dismiss to stop.",
		Sound:   s.resolveSound(sound),
		Channel: s.opts.Channel,
		Metadata: map[string]string{
			scheduler.MetaAlarmID: strconv.FormatInt(TestAlarmID, 10),
			scheduler.MetaKind:    scheduler.KindTest,
		},
	}

	if err := s.sched.Schedule(ctx, occ); err != nil {
		logger.WarnKV(ctx, "Failed to schedule test notification", "error", err)
	}
}

// Current returns a snapshot of the active session, or nil when idle.
func (s *Service) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}

	snapshot := *s.current
	snapshot.Alarm = s.current.Alarm.Clone()

	return &snapshot
}

// impact triggers haptics for the alarm, swallowing failures.
func (s *Service) impact(ctx context.Context, a *domain.Alarm) {
	if !a.Vibrate {
		return
	}

	if err := s.haptics.Impact(ctx, sideeffect.IntensityHeavy); err != nil {
		logger.WarnKV(ctx, "Haptic impact failed", "alarm_id", a.ID, "error", err)
	}
}

// pay invokes the configured payment side effect, swallowing failures.
func (s *Service) pay(ctx context.Context) {
	if s.opts.PaymentAddress == "" {
		return
	}

	receipt, err := s.payer.Pay(ctx, s.opts.PaymentAddress, s.opts.PaymentAmount)
	if err != nil {
		logger.WarnKV(ctx, "Snooze payment failed", "destination", s.opts.PaymentAddress, "error", err)

		return
	}

	if receipt != nil {
		logger.InfoKV(ctx, "Snooze payment completed", "receipt_id", receipt.ID)
	}
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
