package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pa-assistant/backend/internal/model"
)

func strp(s string) *string { return &s }

func TestAppointmentRepoCreate_WithAttendees(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := NewAppointmentRepo(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO appointments (owner_id, title, date, time, location, notes) VALUES (?,?,?,?,?,?)").
		WithArgs(uint64(7), "dentist", strp("2026-09-01"), strp("10:30"), nil, nil).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec("INSERT INTO appointment_attendees (appointment_id, contact_id) VALUES (?,?)").
		WithArgs(uint64(5), uint64(3)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO appointment_attendees (appointment_id, contact_id) VALUES (?,?)").
		WithArgs(uint64(5), uint64(4)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT created_at FROM appointments WHERE id = ?").
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	a := &model.Appointment{
		OwnerID:   7,
		Title:     "dentist",
		Date:      strp("2026-09-01"),
		Time:      strp("10:30"),
		Attendees: []uint64{3, 4},
	}
	require.NoError(t, repo.Create(context.Background(), a))
	assert.Equal(t, uint64(5), a.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepoGet_DateAndAttendees(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := NewAppointmentRepo(db)

	// The driver hands DATE columns over as time.Time; the repo must expose
	// plain YYYY-MM-DD and HH:MM strings.
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT "+appointmentCols+" FROM appointments WHERE id = ? AND owner_id = ?").
		WithArgs(uint64(5), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_id", "title", "date", "time", "location", "notes", "created_at",
		}).AddRow(5, 7, "dentist", day, "10:30:00", nil, nil, time.Now()))
	mock.ExpectQuery("SELECT contact_id FROM appointment_attendees WHERE appointment_id = ? ORDER BY contact_id").
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"contact_id"}).AddRow(3).AddRow(4))

	a, err := repo.GetByIDAndOwner(context.Background(), 5, 7)
	require.NoError(t, err)
	require.NotNil(t, a.Date)
	assert.Equal(t, "2026-09-01", *a.Date)
	require.NotNil(t, a.Time)
	assert.Equal(t, "10:30", *a.Time)
	assert.Equal(t, []uint64{3, 4}, a.Attendees)
}

func TestAppointmentRepoUpdate_ReplacesAttendees(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := NewAppointmentRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE appointments SET title = ?, date = ?, time = ?, location = ?, notes = ? WHERE id = ? AND owner_id = ?").
		WithArgs("dentist", nil, nil, nil, nil, uint64(5), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM appointment_attendees WHERE appointment_id = ?").
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO appointment_attendees (appointment_id, contact_id) VALUES (?,?)").
		WithArgs(uint64(5), uint64(9)).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), &model.Appointment{
		ID: 5, OwnerID: 7, Title: "dentist", Attendees: []uint64{9},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepoUpdate_NotOwned(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := NewAppointmentRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE appointments SET title = ?, date = ?, time = ?, location = ?, notes = ? WHERE id = ? AND owner_id = ?").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &model.Appointment{ID: 5, OwnerID: 8, Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}
