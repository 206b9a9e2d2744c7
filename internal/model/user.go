package model

import "time"

// User represents an application user record as stored in the `users` table.
// The username is set equal to the email at registration time and stays the
// login handle afterwards. Accounts are created inactive and become active
// exactly once, when an activation link is consumed.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique login handle (equals email at registration).
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	FirstName    – first word of the registration full name.
//	LastName     – remainder of the registration full name.
//	IsActive     – whether the account has been activated via email.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// FullName joins the stored name fragments; falls back to the username when
// both fragments are empty so the UI always has something to display.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Username
	}
}

// Profile is the one-to-one display record owned by a user. It is created in
// the same transaction as the user row and removed by cascade on delete.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – owning user.
//	FullName  – display name shown in the UI and in emails.
//	CreatedAt – timestamp of creation.
type Profile struct {
	ID        uint64    // profiles.id
	UserID    uint64    // profiles.user_id
	FullName  string    // profiles.full_name
	CreatedAt time.Time // profiles.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table. Each token
// belongs to a user session; only the SHA-256 hash of the token is stored.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – owner of the token.
//	TokenHash – SHA-256 hex digest of the token value.
//	ExpiresAt – expiration timestamp of the token.
//	RevokedAt – when the token was revoked (null if still active).
//	CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
