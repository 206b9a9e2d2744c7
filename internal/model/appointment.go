package model

import "time"

// Appointment is a calendar entry owned by a single user. Location may be a
// physical address or a video-call link; Notes is free text. Attendees are
// ids of the owner's contacts, kept in the appointment_attendees join table.
type Appointment struct {
	ID        uint64    // appointments.id
	OwnerID   uint64    // appointments.owner_id
	Title     string    // appointments.title
	Date      *string   // appointments.date (nullable, YYYY-MM-DD)
	Time      *string   // appointments.time (nullable, HH:MM)
	Location  *string   // appointments.location (nullable)
	Notes     *string   // appointments.notes (nullable)
	Attendees []uint64  // contact ids via appointment_attendees
	CreatedAt time.Time // appointments.created_at
}
