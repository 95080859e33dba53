package alarms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/timursak/alarm-clock/internal/config"
	domain "github.com/timursak/alarm-clock/internal/domain/alarm"
	"github.com/timursak/alarm-clock/internal/logger"
)

// FileRepository persists the alarm collection as a single JSON blob on disk.
//
// Load fails soft: a missing or corrupt file yields an empty collection, not
// an error, so the alarm list degrades to "start over" instead of wedging the
// application. Save replaces the whole file through a temp-file rename, so a
// reader never observes a partial write.
type FileRepository struct {
	// path is the filesystem location of the JSON collection file.
	path string
	// mu protects concurrent access to the collection file.
	mu sync.Mutex
}

// storedAlarm is the persisted shape of a single alarm record. Optional
// fields are pointers so records written by older versions (or trimmed by
// hand) can be told apart from explicit false values and normalized on load.
type storedAlarm struct {
	ID      int64            `json:"id"`
	Time    time.Time        `json:"time"`
	Label   string           `json:"label,omitempty"`
	Enabled *bool            `json:"enabled,omitempty"`
	Days    []domain.Weekday `json:"days,omitempty"`
	Sound   string           `json:"sound,omitempty"`
	Vibrate *bool            `json:"vibrate,omitempty"`
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the collection from disk and normalizes every record.
func (r *FileRepository) Load(ctx context.Context) ([]*domain.Alarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.WarnKV(ctx, "Alarm store unreadable, starting empty", "path", r.path, "error", err)
		}

		return []*domain.Alarm{}, nil
	}

	var stored []*storedAlarm
	if err = json.Unmarshal(contents, &stored); err != nil {
		logger.WarnKV(ctx, "Alarm store corrupt, starting empty", "path", r.path, "error", err)

		return []*domain.Alarm{}, nil
	}

	result := make([]*domain.Alarm, 0, len(stored))
	for _, s := range stored {
		if s == nil {
			continue
		}

		result = append(result, fromStored(s))
	}

	return result, nil
}

// Save atomically replaces the persisted collection.
func (r *FileRepository) Save(_ context.Context, collection []*domain.Alarm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]*storedAlarm, 0, len(collection))
	for _, a := range collection {
		stored = append(stored, toStored(a))
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("encode alarms: %w", err)
	}

	// Write-then-rename keeps readers away from partial content.
	tmp := r.path + ".tmp"
	if err = os.WriteFile(tmp, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write alarm store: %w", err)
	}

	if err = os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace alarm store: %w", err)
	}

	return nil
}

// fromStored converts a persisted record into a fully-populated domain alarm.
// Missing booleans default to true, matching the behaviour expected from
// records written before those fields existed.
func fromStored(s *storedAlarm) *domain.Alarm {
	a := &domain.Alarm{
		ID:      s.ID,
		Time:    s.Time,
		Label:   s.Label,
		Enabled: true,
		Days:    s.Days,
		Sound:   s.Sound,
		Vibrate: true,
	}

	if s.Enabled != nil {
		a.Enabled = *s.Enabled
	}

	if s.Vibrate != nil {
		a.Vibrate = *s.Vibrate
	}

	a.Normalize()

	return a
}

// toStored converts a domain alarm into its persisted shape.
func toStored(a *domain.Alarm) *storedAlarm {
	enabled := a.Enabled
	vibrate := a.Vibrate

	return &storedAlarm{
		ID:      a.ID,
		Time:    a.Time,
		Label:   a.Label,
		Enabled: &enabled,
		Days:    a.Days,
		Sound:   a.Sound,
		Vibrate: &vibrate,
	}
}
