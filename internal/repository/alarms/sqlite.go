package alarms

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	// SQLite driver registration.
	_ "github.com/mattn/go-sqlite3"

	domain "github.com/timursak/alarm-clock/internal/domain/alarm"
	"github.com/timursak/alarm-clock/internal/logger"
)

// SQLRepository persists the alarm collection in a SQLite database.
// The contract matches FileRepository: Load fails soft and normalizes,
// Save replaces the whole collection in one transaction.
type SQLRepository struct {
	db *sql.DB
}

const alarmsSchema = `
CREATE TABLE IF NOT EXISTS alarms (
	id      INTEGER PRIMARY KEY,
	time    TEXT    NOT NULL,
	label   TEXT    NOT NULL DEFAULT '',
	enabled INTEGER NOT NULL DEFAULT 1,
	days    TEXT    NOT NULL DEFAULT '',
	sound   TEXT    NOT NULL DEFAULT '',
	vibrate INTEGER NOT NULL DEFAULT 1
)`

// NewSQLRepository opens (or creates) the database at path and ensures the schema exists.
func NewSQLRepository(path string) (*SQLRepository, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=8000", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err = db.Ping(); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err = db.Exec(alarmsSchema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("create alarms table: %w", err)
	}

	return &SQLRepository{db: db}, nil
}

// Close releases the underlying database handle.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// Load reads the collection, skipping rows it cannot interpret.
func (r *SQLRepository) Load(ctx context.Context) ([]*domain.Alarm, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, time, label, enabled, days, sound, vibrate FROM alarms ORDER BY id`,
	)
	if err != nil {
		logger.WarnKV(ctx, "Alarm table unreadable, starting empty", "error", err)

		return []*domain.Alarm{}, nil
	}

	defer func() {
		_ = rows.Close()
	}()

	result := make([]*domain.Alarm, 0, 8)

	for rows.Next() {
		var (
			a       domain.Alarm
			rawTime string
			rawDays string
			enabled int
			vibrate int
		)

		if err = rows.Scan(&a.ID, &rawTime, &a.Label, &enabled, &rawDays, &a.Sound, &vibrate); err != nil {
			logger.WarnKV(ctx, "Skipping unreadable alarm row", "error", err)

			continue
		}

		a.Time, err = time.Parse(time.RFC3339Nano, rawTime)
		if err != nil {
			logger.WarnKV(ctx, "Skipping alarm row with bad time", "alarm_id", a.ID, "error", err)

			continue
		}

		a.Enabled = enabled != 0
		a.Vibrate = vibrate != 0
		a.Days = splitDays(rawDays)
		a.Normalize()

		result = append(result, &a)
	}

	if err = rows.Err(); err != nil {
		logger.WarnKV(ctx, "Alarm row iteration failed", "error", err)
	}

	return result, nil
}

// Save replaces the persisted collection in a single transaction.
func (r *SQLRepository) Save(ctx context.Context, collection []*domain.Alarm) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM alarms`); err != nil {
		_ = tx.Rollback()

		return fmt.Errorf("clear alarms: %w", err)
	}

	for _, a := range collection {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO alarms (id, time, label, enabled, days, sound, vibrate)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID,
			a.Time.Format(time.RFC3339Nano),
			a.Label,
			boolToInt(a.Enabled),
			joinDays(a.Days),
			a.Sound,
			boolToInt(a.Vibrate),
		)
		if err != nil {
			_ = tx.Rollback()

			return fmt.Errorf("insert alarm %d: %w", a.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit alarms: %w", err)
	}

	return nil
}

// joinDays encodes the day set as a comma-separated list of tags.
func joinDays(days []domain.Weekday) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, string(d))
	}

	return strings.Join(parts, ",")
}

// splitDays decodes a comma-separated list of tags.
func splitDays(raw string) []domain.Weekday {
	if raw == "" {
		return []domain.Weekday{}
	}

	parts := strings.Split(raw, ",")
	days := make([]domain.Weekday, 0, len(parts))

	for _, p := range parts {
		days = append(days, domain.Weekday(p))
	}

	return days
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
