package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/pa-assistant/backend/internal/model"
)

// UserRepo encapsulates all queries against the users and profiles tables.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id,username,email,password_hash,first_name,last_name,is_active,created_at,updated_at"

// Create inserts an inactive user together with its profile row in a single
// transaction and returns the new user id. The username is set to the
// normalized email. A duplicate email yields ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash, firstName, lastName, fullName string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, first_name, last_name, is_active) VALUES (?,?,?,?,?,0)",
		email, email, passwordHash, firstName, lastName)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	// Profile is created up front rather than lazily on first read, so every
	// user has one from the moment registration commits.
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO profiles (user_id, full_name) VALUES (?,?)",
		id, fullName); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email. Returns ErrUserNotFound
// when no row matches.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, "SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id. Returns ErrUserNotFound when no row matches.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.getOne(ctx, "SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Activate flips is_active inside one transaction. The row is locked and
// re-checked so two concurrent activations cannot both report success; the
// loser sees the flag already set and gets ErrUserNotFound, which the handler
// reports as an invalid token.
func (r *UserRepo) Activate(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var active bool
	if err := tx.QueryRowContext(ctx,
		"SELECT is_active FROM users WHERE id=? FOR UPDATE", id).Scan(&active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if active {
		return ErrUserNotFound
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET is_active=1, updated_at=CURRENT_TIMESTAMP WHERE id=?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdatePassword replaces the stored password hash inside one transaction.
// Changing the hash is what invalidates outstanding reset tokens, so the
// write must not be reordered with the token validation the handler already
// performed; the row lock keeps concurrent resets serialized.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, newHash string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var dummy uint64
	if err := tx.QueryRowContext(ctx,
		"SELECT id FROM users WHERE id=? FOR UPDATE", id).Scan(&dummy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", newHash, id); err != nil {
		return err
	}
	return tx.Commit()
}

// GetProfile fetches the profile row for a user. Returns ErrNotFound when
// the user predates synchronous profile creation and has no row yet.
func (r *UserRepo) GetProfile(ctx context.Context, userID uint64) (*model.Profile, error) {
	var p model.Profile
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, full_name, created_at FROM profiles WHERE user_id=? LIMIT 1",
		userID).Scan(&p.ID, &p.UserID, &p.FullName, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
