package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pa-assistant/backend/internal/model"
)

// ContactRepo encapsulates all database queries related to contacts.
type ContactRepo struct{ db *sql.DB }

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

const contactCols = "id, owner_id, name, email, phone, company, title, created_at"

// Create inserts a new contact and populates the model with generated fields.
func (r *ContactRepo) Create(ctx context.Context, c *model.Contact) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO contacts (owner_id, name, email, phone, company, title) VALUES (?,?,?,?,?,?)",
		c.OwnerID, c.Name, c.Email, c.Phone, c.Company, c.Title)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT created_at FROM contacts WHERE id = ?", c.ID).Scan(&c.CreatedAt)
}

// GetByIDAndOwner fetches a contact by id if it belongs to the owner.
func (r *ContactRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Contact, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+contactCols+" FROM contacts WHERE id = ? AND owner_id = ?", id, ownerID)
	return scanContact(row)
}

// ListByOwner returns the owner's contacts ordered by name.
func (r *ContactRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Contact, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+contactCols+" FROM contacts WHERE owner_id = ? ORDER BY name, id", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites the mutable fields of an owned contact.
func (r *ContactRepo) Update(ctx context.Context, c *model.Contact) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE contacts SET name = ?, email = ?, phone = ?, company = ?, title = ? WHERE id = ? AND owner_id = ?",
		c.Name, c.Email, c.Phone, c.Company, c.Title, c.ID, c.OwnerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByIDAndOwner removes an owned contact.
func (r *ContactRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM contacts WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanContact(s scanner) (*model.Contact, error) {
	var (
		c                            model.Contact
		email, phone, company, title sql.NullString
	)
	if err := s.Scan(&c.ID, &c.OwnerID, &c.Name, &email, &phone, &company, &title, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if email.Valid {
		c.Email = &email.String
	}
	if phone.Valid {
		c.Phone = &phone.String
	}
	if company.Valid {
		c.Company = &company.String
	}
	if title.Valid {
		c.Title = &title.String
	}
	return &c, nil
}
