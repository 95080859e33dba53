package scheduler

import (
	"context"
	"errors"
	"time"
)

// Metadata keys carried on occurrences and echoed back on fire events.
const (
	// MetaAlarmID is the base alarm identifier, as a decimal string.
	MetaAlarmID = "alarm_id"
	// MetaKind distinguishes what produced the occurrence.
	MetaKind = "kind"
)

// Occurrence kinds.
const (
	KindBase   = "base"
	KindSnooze = "snooze"
	KindTest   = "test"
)

// ErrNotInFuture is returned when an occurrence's target instant is not
// strictly in the future. Callers are expected to roll the instant forward
// before scheduling.
var ErrNotInFuture = errors.New("occurrence is not in the future")

// Occurrence is one pending fire event as the external scheduler sees it.
type Occurrence struct {
	// ID addresses the occurrence for cancellation. Snooze occurrences use an
	// offset id-space so they never collide with their base alarm.
	ID int64
	// At is the target delivery instant.
	At time.Time
	// Title and Body are the display payload shown on delivery.
	Title string
	Body  string
	// Sound is the audio asset identifier to play.
	Sound string
	// Channel is the notification channel identifier.
	Channel string
	// Metadata identifies the originating alarm and occurrence kind.
	Metadata map[string]string
}

// FireEvent is the inbound notification that a scheduled occurrence was
// delivered. Delivery is asynchronous and out of order with respect to the
// Schedule call that produced it.
type FireEvent struct {
	ID       int64
	Metadata map[string]string
}

// Scheduler abstracts the platform notification/alarm service the engine
// issues commands to. Implementations own pending occurrence state.
type Scheduler interface {
	// Schedule requests a one-shot, point-in-time delivery. Scheduling for an
	// id that already has a pending occurrence replaces it.
	Schedule(ctx context.Context, occ Occurrence) error
	// Cancel removes the pending occurrence for the id.
	// Canceling a non-existent occurrence is not an error.
	Cancel(ctx context.Context, id int64) error
	// IsScheduled reports whether an occurrence is pending for the id.
	IsScheduled(ctx context.Context, id int64) (bool, error)
}
