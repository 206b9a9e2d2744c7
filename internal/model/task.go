package model

import "time"

// Task priorities accepted by the API.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Task is a to-do item owned by a single user. Date and Time are optional;
// an undated task simply shows up in the backlog.
type Task struct {
	ID          uint64    // tasks.id
	OwnerID     uint64    // tasks.owner_id
	Description string    // tasks.description
	Date        *string   // tasks.date (nullable, YYYY-MM-DD)
	Time        *string   // tasks.time (nullable, HH:MM)
	Priority    string    // tasks.priority (High|Medium|Low)
	Completed   bool      // tasks.completed
	CreatedAt   time.Time // tasks.created_at
}
