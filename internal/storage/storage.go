package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"pet-medication-reminder/internal/models"
)

//go:embed schema.sql
var ddl embed.FS

// DB is the default SQLite backend.
type DB struct{ *sql.DB }

var _ Store = (*DB)(nil)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func New(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// one writer; this also serializes UpdateSchedule transactions
	db.SetMaxOpenConns(1)

	if err = migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &DB{db}, nil
}

func migrate(db *sql.DB) error {
	b, err := ddl.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(string(b))
	return err
}

// ---------- schedules -------------------------------------------------------

func ensureSchedule(ctx context.Context, q querier, key string) error {
	_, err := q.ExecContext(ctx, `
        INSERT INTO schedules (medication_key, status) VALUES (?, ?)
        ON CONFLICT(medication_key) DO NOTHING`, key, models.StatusPending)
	return err
}

func loadSchedule(ctx context.Context, q querier, key string) (models.Schedule, error) {
	if err := ensureSchedule(ctx, q, key); err != nil {
		return models.Schedule{}, err
	}

	s := models.Schedule{Key: key}
	var due sql.NullString
	var status string
	err := q.QueryRowContext(ctx, `
        SELECT next_due_date, status FROM schedules WHERE medication_key = ?`, key,
	).Scan(&due, &status)
	if err != nil {
		return models.Schedule{}, err
	}

	s.Status = models.Status(status)
	if due.Valid {
		t, err := time.Parse(DateLayout, due.String)
		if err != nil {
			return models.Schedule{}, fmt.Errorf("schedule %s: bad due date %q: %w", key, due.String, err)
		}
		s.NextDueDate = &t
	}
	return s, nil
}

func (d *DB) Schedule(ctx context.Context, key string) (models.Schedule, error) {
	return loadSchedule(ctx, d.DB, key)
}

func (d *DB) Schedules(ctx context.Context, keys []string) ([]models.Schedule, error) {
	res := make([]models.Schedule, 0, len(keys))
	for _, k := range keys {
		s, err := d.Schedule(ctx, k)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, nil
}

func (d *DB) UpdateSchedule(ctx context.Context, key string, fn func(*models.Schedule) error) (models.Schedule, error) {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return models.Schedule{}, err
	}
	defer tx.Rollback()

	s, err := loadSchedule(ctx, tx, key)
	if err != nil {
		return models.Schedule{}, err
	}
	if err := fn(&s); err != nil {
		return models.Schedule{}, err
	}
	s.Key = key

	var due any
	if s.NextDueDate != nil {
		due = s.NextDueDate.Format(DateLayout)
	}
	if _, err := tx.ExecContext(ctx, `
        UPDATE schedules SET next_due_date = ?, status = ?, updated_at = ?
        WHERE medication_key = ?`, due, s.Status, time.Now().Unix(), key); err != nil {
		return models.Schedule{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Schedule{}, err
	}
	return s, nil
}

// ---------- subscribers -----------------------------------------------------

func (d *DB) AddSubscriber(ctx context.Context, id string) (bool, error) {
	res, err := d.ExecContext(ctx, `
        INSERT INTO subscribers (id, created_at) VALUES (?, ?)
        ON CONFLICT(id) DO NOTHING`, id, time.Now().Unix())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (d *DB) ListSubscribers(ctx context.Context) ([]models.Subscriber, error) {
	rows, err := d.QueryContext(ctx, `SELECT id, created_at FROM subscribers ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []models.Subscriber
	for rows.Next() {
		var s models.Subscriber
		var created int64
		if err := rows.Scan(&s.ID, &created); err != nil {
			return nil, err
		}
		s.CreatedAt = time.Unix(created, 0).UTC()
		res = append(res, s)
	}
	return res, rows.Err()
}

// ---------- conversation state (fsm) ----------------------------------------

func (d *DB) SetConversationState(ctx context.Context, subscriberID string, st models.ConversationState) error {
	var key any
	if st.MedicationKey != "" {
		key = st.MedicationKey
	}
	_, err := d.ExecContext(ctx, `
        INSERT INTO conversation_states (subscriber_id, mode, medication_key) VALUES (?,?,?)
        ON CONFLICT(subscriber_id) DO UPDATE SET mode=excluded.mode,
            medication_key=excluded.medication_key`, subscriberID, st.Mode, key)
	return err
}

func (d *DB) ConversationState(ctx context.Context, subscriberID string) (models.ConversationState, error) {
	var mode string
	var key sql.NullString
	err := d.QueryRowContext(ctx, `
        SELECT mode, medication_key FROM conversation_states WHERE subscriber_id = ?`, subscriberID,
	).Scan(&mode, &key)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NormalState(), nil
	}
	if err != nil {
		return models.ConversationState{}, err
	}
	return models.ConversationState{Mode: models.Mode(mode), MedicationKey: key.String}, nil
}
