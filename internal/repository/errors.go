// Package repository contains data access logic separated from HTTP handlers.
// This file defines sentinel errors shared across repositories so that
// handlers can map failure scenarios to HTTP responses without inspecting
// driver-specific errors.
package repository

import "errors"

// ErrEmailExists is returned when registering with an email that is already
// taken. Handlers surface it as a field-level validation error.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user matches the given id or email.
var ErrUserNotFound = errors.New("user not found")

// ErrNotFound is returned by resource repositories when a record does not
// exist or is owned by someone else. Handlers translate it to HTTP 404; not
// distinguishing the two cases avoids leaking other users' record ids.
var ErrNotFound = errors.New("not found")
