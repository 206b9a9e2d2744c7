package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pa-assistant/backend/internal/middleware"
	"github.com/pa-assistant/backend/internal/model"
	"github.com/pa-assistant/backend/internal/repository"
)

// TaskStore is the repository surface the task handler depends on.
type TaskStore interface {
	Create(ctx context.Context, t *model.Task) error
	GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Task, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Task, error)
	Update(ctx context.Context, t *model.Task) error
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error
}

// TaskHandler serves the owner-scoped to-do CRUD under /v1/tasks.
type TaskHandler struct {
	Store TaskStore
}

func NewTaskHandler(s TaskStore) *TaskHandler { return &TaskHandler{Store: s} }

type taskReq struct {
	Description string  `json:"description"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Priority    string  `json:"priority"`
	Completed   bool    `json:"completed"`
}

type taskResp struct {
	ID          uint64  `json:"id"`
	Description string  `json:"description"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Priority    string  `json:"priority"`
	Completed   bool    `json:"completed"`
	CreatedAt   string  `json:"created_at"`
}

func toTaskResp(t *model.Task) taskResp {
	return taskResp{
		ID:          t.ID,
		Description: t.Description,
		Date:        t.Date,
		Time:        t.Time,
		Priority:    t.Priority,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// validPriority normalizes the priority field; empty falls back to Medium.
func validPriority(p string) (string, bool) {
	switch p {
	case "":
		return model.PriorityMedium, true
	case model.PriorityHigh, model.PriorityMedium, model.PriorityLow:
		return p, true
	}
	return "", false
}

// List returns the caller's tasks, newest first.
func (h *TaskHandler) List(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tasks, err := h.Store.ListByOwner(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list tasks failed"})
	}
	out := make([]taskResp, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResp(t))
	}
	return c.JSON(http.StatusOK, out)
}

// Create adds a task for the caller.
func (h *TaskHandler) Create(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req taskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Description == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"description": "description is required"})
	}
	prio, ok := validPriority(req.Priority)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"priority": "priority must be High, Medium or Low"})
	}

	t := &model.Task{
		OwnerID:     uid,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Priority:    prio,
		Completed:   req.Completed,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Store.Create(ctx, t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create task failed"})
	}
	return c.JSON(http.StatusCreated, toTaskResp(t))
}

// Get returns a single owned task.
func (h *TaskHandler) Get(c echo.Context) error {
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

	t, err := h.Store.GetByIDAndOwner(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "get task failed"})
	}
	return c.JSON(http.StatusOK, toTaskResp(t))
}

// Update replaces the mutable fields of an owned task.
func (h *TaskHandler) Update(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req taskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Description == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"description": "description is required"})
	}
	prio, ok := validPriority(req.Priority)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"priority": "priority must be High, Medium or Low"})
	}

	t := &model.Task{
		ID:          id,
		OwnerID:     uid,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Priority:    prio,
		Completed:   req.Completed,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Store.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update task failed"})
	}
	// Re-read so the response carries created_at.
	updated, err := h.Store.GetByIDAndOwner(ctx, id, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update task failed"})
	}
	return c.JSON(http.StatusOK, toTaskResp(updated))
}

// Delete removes an owned task.
func (h *TaskHandler) Delete(c echo.Context) error {
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
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete task failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
