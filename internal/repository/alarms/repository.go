package alarms

import (
	"context"

	domain "github.com/timursak/alarm-clock/internal/domain/alarm"
)

// Repository defines persistence operations for the alarm collection.
// Save replaces the whole collection atomically; there is a single writer
// per process, so no optimistic concurrency is needed.
type Repository interface {
	Load(ctx context.Context) ([]*domain.Alarm, error)
	Save(ctx context.Context, alarms []*domain.Alarm) error
}
