// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types published on the assistant.events queue.
const (
	EventUserRegistered     = "user.registered"
	EventUserActivated      = "user.activated"
	EventPasswordReset      = "password.reset"
	EventAppointmentCreated = "appointment.created"
)

// AccountEvent is published when an account transitions through the
// lifecycle (registered, activated, password reset). It carries enough for
// downstream consumers to audit-log or notify without querying the primary
// database. No secrets or token material ever goes on the wire.
type AccountEvent struct {
	Type       string `json:"type"`
	UserID     uint64 `json:"user_id"`
	Email      string `json:"email"`
	OccurredAt string `json:"occurred_at"`
}

// AppointmentCreatedEvent is published when a user schedules an appointment.
type AppointmentCreatedEvent struct {
	Type          string `json:"type"`
	AppointmentID uint64 `json:"appointment_id"`
	UserID        uint64 `json:"user_id"`
	Title         string `json:"title"`
	Date          string `json:"date,omitempty"`
	Time          string `json:"time,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}
