package alarmclock

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/timursak/alarm-clock/internal/domain/alarm"
	"github.com/timursak/alarm-clock/internal/service/engine"
	"github.com/timursak/alarm-clock/internal/service/ringer"
)

// Engine abstracts the alarm operations the transport layer depends on.
type Engine interface {
	List(ctx context.Context) ([]*domain.Alarm, error)
	Save(ctx context.Context, a *domain.Alarm) (*engine.SaveOutcome, error)
	Toggle(ctx context.Context, id int64) (*engine.SaveOutcome, error)
	Delete(ctx context.Context, id int64) error
}

// Sessions abstracts the ringing-session operations exposed over the API.
type Sessions interface {
	Snooze(ctx context.Context) error
	Dismiss(ctx context.Context)
	Test(ctx context.Context, sound string, vibrate bool)
	Current() *ringer.Session
}

// Handler adapts HTTP requests to the engine and session services.
type Handler struct {
	engine   Engine
	sessions Sessions
}

// NewHandler wires the provided services into an HTTP handler.
func NewHandler(eng Engine, sessions Sessions) *Handler {
	return &Handler{
		engine:   eng,
		sessions: sessions,
	}
}

// sessionPayload is the wire shape of a ringing session snapshot.
type sessionPayload struct {
	Alarm       *domain.Alarm `json:"alarm"`
	SnoozeCount int           `json:"snoozeCount"`
	StartedAt   time.Time     `json:"startedAt"`
	Ringing     bool          `json:"ringing"`
}

// testRequest selects sound and vibration for a test ring.
type testRequest struct {
	Sound   string `json:"sound"`
	Vibrate bool   `json:"vibrate"`
}

// ListAlarms returns the persisted collection.
func (h *Handler) ListAlarms(c *gin.Context) {
	alarms, err := h.engine.List(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "store_unavailable", "unable to load alarms")

		return
	}

	c.JSON(http.StatusOK, gin.H{"alarms": alarms})
}

// SaveAlarm creates or fully replaces an alarm.
func (h *Handler) SaveAlarm(c *gin.Context) {
	var a domain.Alarm
	if err := c.ShouldBindJSON(&a); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_json", "invalid request body")

		return
	}

	outcome, err := h.engine.Save(c.Request.Context(), &a)
	if err != nil {
		writeEngineError(c, err)

		return
	}

	c.JSON(http.StatusOK, outcomeBody(outcome))
}

// ToggleAlarm flips the enabled flag of one alarm.
func (h *Handler) ToggleAlarm(c *gin.Context) {
	id, ok := alarmID(c)
	if !ok {
		return
	}

	outcome, err := h.engine.Toggle(c.Request.Context(), id)
	if err != nil {
		writeEngineError(c, err)

		return
	}

	c.JSON(http.StatusOK, outcomeBody(outcome))
}

// DeleteAlarm removes an alarm and its pending occurrence.
func (h *Handler) DeleteAlarm(c *gin.Context) {
	id, ok := alarmID(c)
	if !ok {
		return
	}

	if err := h.engine.Delete(c.Request.Context(), id); err != nil {
		writeEngineError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

// TestAlarm rings a synthetic alarm immediately.
func (h *Handler) TestAlarm(c *gin.Context) {
	var req testRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_json", "invalid request body")

		return
	}

	h.sessions.Test(c.Request.Context(), req.Sound, req.Vibrate)

	c.JSON(http.StatusOK, gin.H{"session": sessionBody(h.sessions.Current())})
}

// CurrentSession reports the active ringing session, if any.
func (h *Handler) CurrentSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"session": sessionBody(h.sessions.Current())})
}

// Snooze defers the current session. Without an active session this is a
// no-op by design, reported as success.
func (h *Handler) Snooze(c *gin.Context) {
	body := gin.H{}

	if err := h.sessions.Snooze(c.Request.Context()); err != nil {
		// Saved state already moved on; the client only gets a warning.
		body["warning"] = err.Error()
	}

	body["session"] = sessionBody(h.sessions.Current())

	c.JSON(http.StatusOK, body)
}

// Dismiss ends the current session.
func (h *Handler) Dismiss(c *gin.Context) {
	h.sessions.Dismiss(c.Request.Context())

	c.Status(http.StatusNoContent)
}

// alarmID parses the :id path parameter, writing a 400 on failure.
func alarmID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_id", "alarm id must be an integer")

		return 0, false
	}

	return id, true
}

// outcomeBody renders a save/toggle outcome, attaching the scheduling
// warning when the alarm was stored but not armed.
func outcomeBody(outcome *engine.SaveOutcome) gin.H {
	body := gin.H{"alarm": outcome.Alarm}
	if outcome.ScheduleWarning != nil {
		body["warning"] = outcome.ScheduleWarning.Error()
	}

	return body
}

// sessionBody renders a session snapshot, nil-safe.
func sessionBody(s *ringer.Session) *sessionPayload {
	if s == nil {
		return nil
	}

	return &sessionPayload{
		Alarm:       s.Alarm,
		SnoozeCount: s.SnoozeCount,
		StartedAt:   s.StartedAt,
		Ringing:     s.Ringing,
	}
}

// writeEngineError maps engine errors to HTTP statuses.
func writeEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrAlarmNotFound):
		writeError(c, http.StatusNotFound, "alarm_not_found", "alarm not found")
	case errors.Is(err, engine.ErrTimeRequired):
		writeError(c, http.StatusBadRequest, "time_required", "alarm time is required")
	default:
		writeError(c, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
