package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/timursak/alarm-clock/internal/domain/alarm"
	"github.com/timursak/alarm-clock/internal/scheduler"
)

var errTestSchedule = errors.New("test schedule error")

// memoryRepository is a minimal in-memory Repository implementation for tests.
type memoryRepository struct {
	// alarms is the stored collection returned by Load.
	alarms []*domain.Alarm
	// saveErr is the error to return from Save operations.
	saveErr error
	// saves counts Save operations.
	saves int
}

func (m *memoryRepository) Load(context.Context) ([]*domain.Alarm, error) {
	result := make([]*domain.Alarm, 0, len(m.alarms))
	for _, a := range m.alarms {
		result = append(result, a.Clone())
	}

	return result, nil
}

func (m *memoryRepository) Save(_ context.Context, collection []*domain.Alarm) error {
	if m.saveErr != nil {
		return m.saveErr
	}

	m.alarms = collection
	m.saves++

	return nil
}

// fakeScheduler records scheduling commands for assertions.
type fakeScheduler struct {
	scheduled   []scheduler.Occurrence
	canceled    []int64
	scheduleErr error
}

func (f *fakeScheduler) Schedule(_ context.Context, occ scheduler.Occurrence) error {
	if f.scheduleErr != nil {
		return f.scheduleErr
	}

	f.scheduled = append(f.scheduled, occ)

	return nil
}

func (f *fakeScheduler) Cancel(_ context.Context, id int64) error {
	f.canceled = append(f.canceled, id)

	return nil
}

func (f *fakeScheduler) IsScheduled(context.Context, int64) (bool, error) {
	return false, nil
}

// fakeRinger records session commands.
type fakeRinger struct {
	began   []int64
	resumed []int64
}

func (f *fakeRinger) Begin(_ context.Context, a *domain.Alarm) {
	f.began = append(f.began, a.ID)
}

func (f *fakeRinger) Resume(_ context.Context, alarmID int64) {
	f.resumed = append(f.resumed, alarmID)
}

// tuesdayMorning is the reference clock: 2024-04-02 07:30 UTC, a Tuesday.
var tuesdayMorning = time.Date(2024, 4, 2, 7, 30, 0, 0, time.UTC)

func newTestService(repo *memoryRepository, sched *fakeScheduler, rng *fakeRinger) *Service {
	s := NewService(repo, sched, rng, Options{})
	s.now = func() time.Time { return tuesdayMorning }

	return s
}

// TestSave_CreateAssignsIDAndArms verifies creation, persistence and scheduling.
func TestSave_CreateAssignsIDAndArms(t *testing.T) {
	t.Parallel()

	repo := new(memoryRepository)
	sched := new(fakeScheduler)
	s := newTestService(repo, sched, new(fakeRinger))

	outcome, err := s.Save(context.Background(), &domain.Alarm{
		Time:    time.Date(2024, 4, 2, 7, 0, 0, 0, time.UTC),
		Label:   "Morning run",
		Enabled: true,
	})

	require.NoError(t, err)
	require.Nil(t, outcome.ScheduleWarning)
	require.Equal(t, int64(1), outcome.Alarm.ID)
	require.Len(t, repo.alarms, 1)

	// 07:00 has passed at 07:30, so the occurrence lands on tomorrow 07:00.
	require.Len(t, sched.scheduled, 1)
	require.Equal(t, time.Date(2024, 4, 3, 7, 0, 0, 0, time.UTC), sched.scheduled[0].At)
	require.Equal(t, scheduler.KindBase, sched.scheduled[0].Metadata[scheduler.MetaKind])
}

// TestSave_SchedulingFailureKeepsAlarm verifies the alarm survives a
// scheduler refusal, enabled, with a warning on the outcome.
func TestSave_SchedulingFailureKeepsAlarm(t *testing.T) {
	t.Parallel()

	repo := new(memoryRepository)
	sched := &fakeScheduler{scheduleErr: errTestSchedule}
	s := newTestService(repo, sched, new(fakeRinger))

	outcome, err := s.Save(context.Background(), &domain.Alarm{
		Time:    tuesdayMorning.Add(time.Hour),
		Enabled: true,
	})

	require.NoError(t, err)
	require.ErrorIs(t, outcome.ScheduleWarning, errTestSchedule)
	require.Len(t, repo.alarms, 1)
	require.True(t, repo.alarms[0].Enabled)
}

// TestSave_EditReplacesRecord checks full-replace semantics and id stability.
func TestSave_EditReplacesRecord(t *testing.T) {
	t.Parallel()

	repo := new(memoryRepository)
	s := newTestService(repo, new(fakeScheduler), new(fakeRinger))
	ctx := context.Background()

	outcome, err := s.Save(ctx, &domain.Alarm{
		Time:    tuesdayMorning.Add(time.Hour),
		Label:   "Old",
		Enabled: true,
		Days:    []domain.Weekday{domain.Monday},
	})
	require.NoError(t, err)

	edited := outcome.Alarm.Clone()
	edited.Label = "New"
	edited.Days = []domain.Weekday{}

	outcome, err = s.Save(ctx, edited)
	require.NoError(t, err)
	require.Equal(t, edited.ID, outcome.Alarm.ID)
	require.Len(t, repo.alarms, 1)
	require.Equal(t, "New", repo.alarms[0].Label)
	require.Empty(t, repo.alarms[0].Days)
}

// TestSave_UnknownEditID rejects edits of deleted alarms.
func TestSave_UnknownEditID(t *testing.T) {
	t.Parallel()

	s := newTestService(new(memoryRepository), new(fakeScheduler), new(fakeRinger))

	_, err := s.Save(context.Background(), &domain.Alarm{
		ID:   42,
		Time: tuesdayMorning.Add(time.Hour),
	})
	require.ErrorIs(t, err, ErrAlarmNotFound)
}

// TestSave_RequiresTime rejects alarms without a time.
func TestSave_RequiresTime(t *testing.T) {
	t.Parallel()

	s := newTestService(new(memoryRepository), new(fakeScheduler), new(fakeRinger))

	_, err := s.Save(context.Background(), &domain.Alarm{})
	require.ErrorIs(t, err, ErrTimeRequired)

	_, err = s.Save(context.Background(), nil)
	require.ErrorIs(t, err, ErrTimeRequired)
}

// TestToggle_TwiceRestoresScheduledState verifies toggle idempotence up to
// the re-picked next-fire instant.
func TestToggle_TwiceRestoresScheduledState(t *testing.T) {
	t.Parallel()

	repo := new(memoryRepository)
	sched := new(fakeScheduler)
	s := newTestService(repo, sched, new(fakeRinger))
	ctx := context.Background()

	outcome, err := s.Save(ctx, &domain.Alarm{
		Time:    time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC),
		Enabled: true,
	})
	require.NoError(t, err)

	id := outcome.Alarm.ID
	firstAt := sched.scheduled[0].At

	// Off: canceled and persisted disabled.
	outcome, err = s.Toggle(ctx, id)
	require.NoError(t, err)
	require.False(t, outcome.Alarm.Enabled)
	require.Equal(t, []int64{id}, sched.canceled)
	require.False(t, repo.alarms[0].Enabled)

	// On: re-armed at an equivalent instant.
	outcome, err = s.Toggle(ctx, id)
	require.NoError(t, err)
	require.True(t, outcome.Alarm.Enabled)
	require.True(t, repo.alarms[0].Enabled)
	require.Len(t, sched.scheduled, 2)
	require.Equal(t, firstAt, sched.scheduled[1].At)
}

// TestToggle_UnknownID rejects toggles of missing alarms.
func TestToggle_UnknownID(t *testing.T) {
	t.Parallel()

	s := newTestService(new(memoryRepository), new(fakeScheduler), new(fakeRinger))

	_, err := s.Toggle(context.Background(), 42)
	require.ErrorIs(t, err, ErrAlarmNotFound)
}

// TestDelete_RemovesAndCancels verifies deletion for enabled and disabled
// alarms and idempotence for unknown ids.
func TestDelete_RemovesAndCancels(t *testing.T) {
	t.Parallel()

	repo := new(memoryRepository)
	sched := new(fakeScheduler)
	s := newTestService(repo, sched, new(fakeRinger))
	ctx := context.Background()

	enabled, err := s.Save(ctx, &domain.Alarm{Time: tuesdayMorning.Add(time.Hour), Enabled: true})
	require.NoError(t, err)

	disabled, err := s.Save(ctx, &domain.Alarm{Time: tuesdayMorning.Add(2 * time.Hour)})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, enabled.Alarm.ID))
	require.NoError(t, s.Delete(ctx, disabled.Alarm.ID))
	require.Empty(t, repo.alarms)
	require.Contains(t, sched.canceled, enabled.Alarm.ID)
	require.Contains(t, sched.canceled, disabled.Alarm.ID)

	// Unknown id still cancels and succeeds.
	require.NoError(t, s.Delete(ctx, 404))
	require.Contains(t, sched.canceled, int64(404))
}

// TestHandleFire_OneOff begins a session without re-arming.
func TestHandleFire_OneOff(t *testing.T) {
	t.Parallel()

	repo := new(memoryRepository)
	sched := new(fakeScheduler)
	rng := new(fakeRinger)
	s := newTestService(repo, sched, rng)
	ctx := context.Background()

	outcome, err := s.Save(ctx, &domain.Alarm{Time: tuesdayMorning.Add(time.Hour), Enabled: true})
	require.NoError(t, err)

	before := len(sched.scheduled)

	s.HandleFire(ctx, scheduler.FireEvent{
		ID: outcome.Alarm.ID,
		Metadata: map[string]string{
			scheduler.MetaAlarmID: "1",
			scheduler.MetaKind:    scheduler.KindBase,
		},
	})

	require.Equal(t, []int64{outcome.Alarm.ID}, rng.began)
	require.Len(t, sched.scheduled, before)
}

// TestHandleFire_RecurringSelfPerpetuates re-arms the next matching weekday
// before the session starts.
func TestHandleFire_RecurringSelfPerpetuates(t *testing.T) {
	t.Parallel()

	repo := new(memoryRepository)
	sched := new(fakeScheduler)
	rng := new(fakeRinger)
	s := newTestService(repo, sched, rng)
	ctx := context.Background()

	outcome, err := s.Save(ctx, &domain.Alarm{
		Time:    time.Date(2024, 4, 2, 7, 0, 0, 0, time.UTC),
		Enabled: true,
		Days:    []domain.Weekday{domain.Monday, domain.Wednesday},
	})
	require.NoError(t, err)

	before := len(sched.scheduled)

	s.HandleFire(ctx, scheduler.FireEvent{
		ID: outcome.Alarm.ID,
		Metadata: map[string]string{
			scheduler.MetaAlarmID: "1",
			scheduler.MetaKind:    scheduler.KindBase,
		},
	})

	require.Len(t, sched.scheduled, before+1)
	// Tuesday 07:30 with {mon, wed} lands on Wednesday 07:00.
	require.Equal(t, time.Date(2024, 4, 3, 7, 0, 0, 0, time.UTC), sched.scheduled[before].At)
	require.Equal(t, []int64{outcome.Alarm.ID}, rng.began)
}

// TestHandleFire_SnoozeResumes routes snooze occurrences to the session.
func TestHandleFire_SnoozeResumes(t *testing.T) {
	t.Parallel()

	rng := new(fakeRinger)
	s := newTestService(new(memoryRepository), new(fakeScheduler), rng)

	s.HandleFire(context.Background(), scheduler.FireEvent{
		ID: 10008,
		Metadata: map[string]string{
			scheduler.MetaAlarmID: "7",
			scheduler.MetaKind:    scheduler.KindSnooze,
		},
	})

	require.Equal(t, []int64{7}, rng.resumed)
	require.Empty(t, rng.began)
}

// TestHandleFire_TestAndUnknownIgnored drops test fires and unknown alarm ids.
func TestHandleFire_TestAndUnknownIgnored(t *testing.T) {
	t.Parallel()

	rng := new(fakeRinger)
	s := newTestService(new(memoryRepository), new(fakeScheduler), rng)
	ctx := context.Background()

	s.HandleFire(ctx, scheduler.FireEvent{
		ID:       999999,
		Metadata: map[string]string{scheduler.MetaKind: scheduler.KindTest},
	})
	s.HandleFire(ctx, scheduler.FireEvent{
		ID:       42,
		Metadata: map[string]string{scheduler.MetaKind: scheduler.KindBase},
	})

	require.Empty(t, rng.began)
	require.Empty(t, rng.resumed)
}

// TestRearm_SchedulesEnabledOnly verifies the startup pass.
func TestRearm_SchedulesEnabledOnly(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{alarms: []*domain.Alarm{
		{ID: 1, Time: tuesdayMorning.Add(time.Hour), Enabled: true, Days: []domain.Weekday{}},
		{ID: 2, Time: tuesdayMorning.Add(time.Hour), Enabled: false, Days: []domain.Weekday{}},
		{ID: 3, Time: tuesdayMorning.Add(2 * time.Hour), Enabled: true, Days: []domain.Weekday{}},
	}}
	sched := new(fakeScheduler)
	s := newTestService(repo, sched, new(fakeRinger))

	require.NoError(t, s.Rearm(context.Background()))
	require.Len(t, sched.scheduled, 2)
	require.Equal(t, int64(1), sched.scheduled[0].ID)
	require.Equal(t, int64(3), sched.scheduled[1].ID)
}
