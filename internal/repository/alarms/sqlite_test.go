package alarms

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/timursak/alarm-clock/internal/domain/alarm"
)

// newTestSQLRepository opens a repository on a throwaway database file.
func newTestSQLRepository(t *testing.T) *SQLRepository {
	t.Helper()

	repo, err := NewSQLRepository(filepath.Join(t.TempDir(), "alarms.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = repo.Close()
	})

	return repo
}

// TestSQLRepository_EmptyDatabase verifies Load on a fresh database.
func TestSQLRepository_EmptyDatabase(t *testing.T) {
	t.Parallel()

	repo := newTestSQLRepository(t)

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, got)
}

// TestSQLRepository_SaveLoad_Roundtrip ensures the SQL backend honours the
// same contract as the file backend.
func TestSQLRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	repo := newTestSQLRepository(t)
	ctx := context.Background()

	want := []*domain.Alarm{
		{
			ID:      1,
			Time:    time.Date(2024, 4, 2, 7, 0, 0, 0, time.UTC),
			Label:   "Gym",
			Enabled: true,
			Days:    []domain.Weekday{domain.Friday},
			Sound:   "alarm_bells",
			Vibrate: false,
		},
	}

	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, want[0].ID, got[0].ID)
	require.Equal(t, want[0].Label, got[0].Label)
	require.Equal(t, want[0].Days, got[0].Days)
	require.False(t, got[0].Vibrate)
	require.True(t, got[0].Time.Equal(want[0].Time))
}

// TestSQLRepository_SaveReplacesCollection ensures replace-not-merge semantics.
func TestSQLRepository_SaveReplacesCollection(t *testing.T) {
	t.Parallel()

	repo := newTestSQLRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, []*domain.Alarm{
		{ID: 1, Time: time.Now(), Enabled: true, Days: []domain.Weekday{}},
		{ID: 2, Time: time.Now(), Enabled: true, Days: []domain.Weekday{}},
	}))

	require.NoError(t, repo.Save(ctx, []*domain.Alarm{
		{ID: 3, Time: time.Now(), Enabled: false, Days: []domain.Weekday{}},
	}))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int64(3), got[0].ID)
}
