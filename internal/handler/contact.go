package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pa-assistant/backend/internal/middleware"
	"github.com/pa-assistant/backend/internal/model"
	"github.com/pa-assistant/backend/internal/repository"
)

// ContactStore is the repository surface the contact handler depends on.
type ContactStore interface {
	Create(ctx context.Context, ct *model.Contact) error
	GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Contact, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Contact, error)
	Update(ctx context.Context, ct *model.Contact) error
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error
}

// ContactHandler serves the owner-scoped address book under /v1/contacts.
type ContactHandler struct {
	Store ContactStore
}

func NewContactHandler(s ContactStore) *ContactHandler { return &ContactHandler{Store: s} }

type contactReq struct {
	Name    string  `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
	Title   *string `json:"title"`
}

type contactResp struct {
	ID        uint64  `json:"id"`
	Name      string  `json:"name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Company   *string `json:"company"`
	Title     *string `json:"title"`
	CreatedAt string  `json:"created_at"`
}

func toContactResp(ct *model.Contact) contactResp {
	return contactResp{
		ID:        ct.ID,
		Name:      ct.Name,
		Email:     ct.Email,
		Phone:     ct.Phone,
		Company:   ct.Company,
		Title:     ct.Title,
		CreatedAt: ct.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// List returns the caller's contacts sorted by name.
func (h *ContactHandler) List(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	contacts, err := h.Store.ListByOwner(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list contacts failed"})
	}
	out := make([]contactResp, 0, len(contacts))
	for _, ct := range contacts {
		out = append(out, toContactResp(ct))
	}
	return c.JSON(http.StatusOK, out)
}

// Create adds a contact for the caller.
func (h *ContactHandler) Create(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req contactReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"name": "name is required"})
	}

	ct := &model.Contact{
		OwnerID: uid,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Title:   req.Title,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Store.Create(ctx, ct); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create contact failed"})
	}
	return c.JSON(http.StatusCreated, toContactResp(ct))
}

// Get returns a single owned contact.
func (h *ContactHandler) Get(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ct, err := h.Store.GetByIDAndOwner(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "contact not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "get contact failed"})
	}
	return c.JSON(http.StatusOK, toContactResp(ct))
}

// Update replaces the mutable fields of an owned contact.
func (h *ContactHandler) Update(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req contactReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"name": "name is required"})
	}

	ct := &model.Contact{
		ID:      id,
		OwnerID: uid,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Title:   req.Title,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Store.Update(ctx, ct); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "contact not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update contact failed"})
	}
	updated, err := h.Store.GetByIDAndOwner(ctx, id, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update contact failed"})
	}
	return c.JSON(http.StatusOK, toContactResp(updated))
}

// Delete removes an owned contact.
func (h *ContactHandler) Delete(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Store.DeleteByIDAndOwner(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "contact not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete contact failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
