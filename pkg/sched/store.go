package sched

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/linusw/asipanel/pkg/camera"
)

// Store persists schedules in SQLite. All times are stored as RFC 3339
// UTC strings; settings as a JSON blob.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and if needed creates) the schedule database.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open schedule db: %w", err)
	}
	// SQLite serializes writers; one connection avoids lock contention.
	db.SetMaxOpenConns(1)

	const schema = `
		CREATE TABLE IF NOT EXISTS schedules (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			start_time  TEXT NOT NULL,
			end_time    TEXT NOT NULL,
			settings    TEXT NOT NULL,
			status      TEXT NOT NULL,
			error       TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_schedules_status ON schedules(status);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (st *Store) Close() error {
	return st.db.Close()
}

// Insert stores a new schedule, assigning it an id and creation time.
func (st *Store) Insert(s *Schedule) error {
	s.ID = uuid.New().String()
	s.CreatedAt = time.Now().UTC()
	if s.Status == "" {
		s.Status = StatusPending
	}

	settings, err := json.Marshal(s.Settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	_, err = st.db.Exec(
		`INSERT INTO schedules (id, name, description, start_time, end_time, settings, status, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Description,
		s.StartTime.UTC().Format(time.RFC3339Nano),
		s.EndTime.UTC().Format(time.RFC3339Nano),
		string(settings), s.Status, s.Error,
		s.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

// Get fetches one schedule by id.
func (st *Store) Get(id string) (Schedule, error) {
	row := st.db.QueryRow(
		`SELECT id, name, description, start_time, end_time, settings, status, error, created_at
		 FROM schedules WHERE id = ?`, id)
	s, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return Schedule{}, fmt.Errorf("schedule %s not found", id)
	}
	return s, err
}

// List returns all schedules, newest start time first.
func (st *Store) List() ([]Schedule, error) {
	rows, err := st.db.Query(
		`SELECT id, name, description, start_time, end_time, settings, status, error, created_at
		 FROM schedules ORDER BY start_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var out []Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListByStatus returns schedules in the given status.
func (st *Store) ListByStatus(status string) ([]Schedule, error) {
	rows, err := st.db.Query(
		`SELECT id, name, description, start_time, end_time, settings, status, error, created_at
		 FROM schedules WHERE status = ? ORDER BY start_time`, status)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var out []Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SetStatus transitions a schedule, recording an error message for
// failed transitions.
func (st *Store) SetStatus(id, status, errMsg string) error {
	res, err := st.db.Exec(`UPDATE schedules SET status = ?, error = ? WHERE id = ?`, status, errMsg, id)
	if err != nil {
		return fmt.Errorf("update schedule %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("schedule %s not found", id)
	}
	return nil
}

// scanner covers sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row scanner) (Schedule, error) {
	var s Schedule
	var start, end, created, settings string
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &start, &end, &settings, &s.Status, &s.Error, &created); err != nil {
		return Schedule{}, err
	}

	var err error
	if s.StartTime, err = time.Parse(time.RFC3339Nano, start); err != nil {
		return Schedule{}, fmt.Errorf("schedule %s: bad start time: %w", s.ID, err)
	}
	if s.EndTime, err = time.Parse(time.RFC3339Nano, end); err != nil {
		return Schedule{}, fmt.Errorf("schedule %s: bad end time: %w", s.ID, err)
	}
	if s.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Schedule{}, fmt.Errorf("schedule %s: bad creation time: %w", s.ID, err)
	}
	s.Settings = camera.DefaultSettings()
	if err := json.Unmarshal([]byte(settings), &s.Settings); err != nil {
		return Schedule{}, fmt.Errorf("schedule %s: bad settings: %w", s.ID, err)
	}
	return s, nil
}
