package local

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/timursak/alarm-clock/internal/logger"
	"github.com/timursak/alarm-clock/internal/scheduler"
)

// defaultBuffer is the fire channel capacity. Alarms come due at human pace,
// so a small buffer absorbs any consumer lag.
const defaultBuffer = 16

// Scheduler is an in-process scheduler.Scheduler backed by time.Timer.
// Fire events are delivered on a buffered channel; the consumer drains
// Fires in its own goroutine.
type Scheduler struct {
	// mu protects pending and closed.
	mu sync.Mutex
	// pending maps occurrence id to its armed timer and payload.
	pending map[int64]*pendingOccurrence
	// fires carries delivered occurrences to the consumer.
	fires chan scheduler.FireEvent
	// closed blocks further scheduling and firing after Close.
	closed bool
}

type pendingOccurrence struct {
	timer *time.Timer
	occ   scheduler.Occurrence
}

// New creates a scheduler ready to accept occurrences.
func New() *Scheduler {
	return &Scheduler{
		pending: make(map[int64]*pendingOccurrence),
		fires:   make(chan scheduler.FireEvent, defaultBuffer),
	}
}

// Fires returns the delivery channel. It is closed by Close.
func (s *Scheduler) Fires() <-chan scheduler.FireEvent {
	return s.fires
}

// Schedule arms a timer for the occurrence, replacing any pending occurrence
// with the same id.
func (s *Scheduler) Schedule(ctx context.Context, occ scheduler.Occurrence) error {
	delay := time.Until(occ.At)
	if delay <= 0 {
		return fmt.Errorf("schedule occurrence %d: %w", occ.ID, scheduler.ErrNotInFuture)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("schedule occurrence %d: scheduler is closed", occ.ID)
	}

	if existing, ok := s.pending[occ.ID]; ok {
		existing.timer.Stop()
	}

	id := occ.ID
	s.pending[id] = &pendingOccurrence{
		occ: occ,
		timer: time.AfterFunc(delay, func() {
			s.fire(id)
		}),
	}

	logger.DebugKV(ctx, "Occurrence armed", "occurrence_id", id, "at", occ.At)

	return nil
}

// Cancel disarms the pending occurrence for the id. Unknown ids are ignored.
func (s *Scheduler) Cancel(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.pending[id]; ok {
		existing.timer.Stop()
		delete(s.pending, id)
		logger.DebugKV(ctx, "Occurrence canceled", "occurrence_id", id)
	}

	return nil
}

// IsScheduled reports whether an occurrence is pending for the id.
func (s *Scheduler) IsScheduled(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.pending[id]

	return ok, nil
}

// Close disarms every pending occurrence and closes the fire channel.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.closed = true

	for id, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, id)
	}

	close(s.fires)
}

// fire moves a due occurrence from pending to the delivery channel.
func (s *Scheduler) fire(id int64) {
	s.mu.Lock()

	p, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}

	closed := s.closed
	s.mu.Unlock()

	if !ok || closed {
		return
	}

	event := scheduler.FireEvent{
		ID:       p.occ.ID,
		Metadata: p.occ.Metadata,
	}

	select {
	case s.fires <- event:
	default:
		// The consumer is wedged; dropping beats blocking a timer goroutine.
		logger.WarnKV(context.Background(), "Fire channel full, dropping event", "occurrence_id", id)
	}
}
