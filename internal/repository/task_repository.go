package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pa-assistant/backend/internal/model"
)

// TaskRepo encapsulates all database queries related to tasks. Every method
// filters by owner so records can never leak across accounts.
type TaskRepo struct{ db *sql.DB }

func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{db: db} }

const taskCols = "id, owner_id, description, date, time, priority, completed, created_at"

// Create inserts a new task and populates the model with generated fields.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO tasks (owner_id, description, date, time, priority, completed) VALUES (?,?,?,?,?,?)",
		t.OwnerID, t.Description, t.Date, t.Time, t.Priority, t.Completed)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT created_at FROM tasks WHERE id = ?", t.ID).Scan(&t.CreatedAt)
}

// GetByIDAndOwner fetches a task by id if it belongs to the owner.
func (r *TaskRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Task, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+taskCols+" FROM tasks WHERE id = ? AND owner_id = ?", id, ownerID)
	return scanTask(row)
}

// ListByOwner returns the owner's tasks, newest first.
func (r *TaskRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+taskCols+" FROM tasks WHERE owner_id = ? ORDER BY created_at DESC, id DESC", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites the mutable fields of an owned task. Returns ErrNotFound
// when no row is affected (missing or not owned).
func (r *TaskRepo) Update(ctx context.Context, t *model.Task) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE tasks SET description = ?, date = ?, time = ?, priority = ?, completed = ? WHERE id = ? AND owner_id = ?",
		t.Description, t.Date, t.Time, t.Priority, t.Completed, t.ID, t.OwnerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByIDAndOwner removes an owned task. Returns ErrNotFound when no row
// is affected.
func (r *TaskRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM tasks WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for the shared scan helper.
type scanner interface{ Scan(dest ...any) error }

func scanTask(s scanner) (*model.Task, error) {
	var (
		t    model.Task
		date nullDate
		tm   nullClock
	)
	if err := s.Scan(&t.ID, &t.OwnerID, &t.Description, &date, &tm, &t.Priority, &t.Completed, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t.Date = date.ptr()
	t.Time = tm.ptr()
	return &t, nil
}

// nullDate scans a nullable DATE column into "YYYY-MM-DD". With
// parseTime=true the driver hands DATE values over as time.Time, which a
// plain string scan would render as an RFC3339 timestamp.
type nullDate struct {
	s     string
	valid bool
}

func (d *nullDate) Scan(v any) error {
	switch t := v.(type) {
	case nil:
		d.s, d.valid = "", false
	case time.Time:
		d.s, d.valid = t.Format("2006-01-02"), true
	case []byte:
		d.s, d.valid = clipDate(string(t)), true
	case string:
		d.s, d.valid = clipDate(t), true
	default:
		return fmt.Errorf("unsupported date value %T", v)
	}
	return nil
}

func (d nullDate) ptr() *string {
	if !d.valid {
		return nil
	}
	return &d.s
}

// clipDate drops any time-of-day suffix a stringly source may carry.
func clipDate(s string) string {
	if day, _, found := strings.Cut(s, "T"); found {
		return day
	}
	if day, _, found := strings.Cut(s, " "); found {
		return day
	}
	return s
}

// nullClock scans a nullable TIME column into "HH:MM". MySQL returns TIME
// as "HH:MM:SS" text; the seconds are noise for the scheduling fields here.
type nullClock struct {
	s     string
	valid bool
}

func (c *nullClock) Scan(v any) error {
	switch t := v.(type) {
	case nil:
		c.s, c.valid = "", false
	case time.Time:
		c.s, c.valid = t.Format("15:04"), true
	case []byte:
		c.s, c.valid = clipClock(string(t)), true
	case string:
		c.s, c.valid = clipClock(t), true
	default:
		return fmt.Errorf("unsupported time value %T", v)
	}
	return nil
}

func (c nullClock) ptr() *string {
	if !c.valid {
		return nil
	}
	return &c.s
}

func clipClock(s string) string {
	if len(s) == len("15:04:05") && strings.Count(s, ":") == 2 {
		return s[:len("15:04")]
	}
	return s
}
