package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pa-assistant/backend/internal/model"
)

// AppointmentRepo encapsulates all database queries related to appointments,
// including the appointment_attendees join to the owner's contacts.
type AppointmentRepo struct{ db *sql.DB }

func NewAppointmentRepo(db *sql.DB) *AppointmentRepo { return &AppointmentRepo{db: db} }

const appointmentCols = "id, owner_id, title, date, time, location, notes, created_at"

// Create inserts a new appointment together with its attendee rows and
// populates the model with generated fields.
func (r *AppointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO appointments (owner_id, title, date, time, location, notes) VALUES (?,?,?,?,?,?)",
		a.OwnerID, a.Title, a.Date, a.Time, a.Location, a.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)

	for _, cid := range a.Attendees {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO appointment_attendees (appointment_id, contact_id) VALUES (?,?)",
			a.ID, cid); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx,
		"SELECT created_at FROM appointments WHERE id = ?", a.ID).Scan(&a.CreatedAt)
}

// GetByIDAndOwner fetches an appointment by id if it belongs to the owner.
func (r *AppointmentRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Appointment, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+appointmentCols+" FROM appointments WHERE id = ? AND owner_id = ?", id, ownerID)
	a, err := scanAppointment(row)
	if err != nil {
		return nil, err
	}
	if a.Attendees, err = r.attendeesOf(ctx, a.ID); err != nil {
		return nil, err
	}
	return a, nil
}

// ListByOwner returns the owner's appointments in calendar order, attendees
// included.
func (r *AppointmentRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Appointment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+appointmentCols+" FROM appointments WHERE owner_id = ? ORDER BY date, time, id", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Appointment
	byID := map[uint64]*model.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
		byID[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	// One grouped query instead of one per appointment.
	att, err := r.db.QueryContext(ctx,
		"SELECT aa.appointment_id, aa.contact_id FROM appointment_attendees aa JOIN appointments a ON a.id = aa.appointment_id WHERE a.owner_id = ? ORDER BY aa.contact_id", ownerID)
	if err != nil {
		return nil, err
	}
	defer att.Close()
	for att.Next() {
		var aid, cid uint64
		if err := att.Scan(&aid, &cid); err != nil {
			return nil, err
		}
		if a, ok := byID[aid]; ok {
			a.Attendees = append(a.Attendees, cid)
		}
	}
	if err := att.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites the mutable fields of an owned appointment and replaces
// its attendee set.
func (r *AppointmentRepo) Update(ctx context.Context, a *model.Appointment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE appointments SET title = ?, date = ?, time = ?, location = ?, notes = ? WHERE id = ? AND owner_id = ?",
		a.Title, a.Date, a.Time, a.Location, a.Notes, a.ID, a.OwnerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM appointment_attendees WHERE appointment_id = ?", a.ID); err != nil {
		return err
	}
	for _, cid := range a.Attendees {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO appointment_attendees (appointment_id, contact_id) VALUES (?,?)",
			a.ID, cid); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteByIDAndOwner removes an owned appointment and its attendee rows.
func (r *AppointmentRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM appointment_attendees WHERE appointment_id = ? AND appointment_id IN (SELECT id FROM appointments WHERE id = ? AND owner_id = ?)",
		id, id, ownerID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"DELETE FROM appointments WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (r *AppointmentRepo) attendeesOf(ctx context.Context, appointmentID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT contact_id FROM appointment_attendees WHERE appointment_id = ? ORDER BY contact_id", appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var cid uint64
		if err := rows.Scan(&cid); err != nil {
			return nil, err
		}
		ids = append(ids, cid)
	}
	return ids, rows.Err()
}

func scanAppointment(s scanner) (*model.Appointment, error) {
	var (
		a               model.Appointment
		date            nullDate
		tm              nullClock
		location, notes sql.NullString
	)
	if err := s.Scan(&a.ID, &a.OwnerID, &a.Title, &date, &tm, &location, &notes, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	a.Date = date.ptr()
	a.Time = tm.ptr()
	if location.Valid {
		a.Location = &location.String
	}
	if notes.Valid {
		a.Notes = &notes.String
	}
	return &a, nil
}
