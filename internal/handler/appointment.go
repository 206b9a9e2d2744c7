package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pa-assistant/backend/internal/mailer"
	"github.com/pa-assistant/backend/internal/middleware"
	"github.com/pa-assistant/backend/internal/model"
	"github.com/pa-assistant/backend/internal/queue"
	"github.com/pa-assistant/backend/internal/repository"
	queue_publisher "github.com/pa-assistant/backend/internal/service"
)

// AppointmentStore is the repository surface the appointment handler depends on.
type AppointmentStore interface {
	Create(ctx context.Context, a *model.Appointment) error
	GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Appointment, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Appointment, error)
	Update(ctx context.Context, a *model.Appointment) error
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error
}

// AppointmentHandler serves the owner-scoped calendar under /v1/appointments.
// Creating an appointment also emails a confirmation to the owner and emits
// an event; neither can fail the create since the row is already committed.
type AppointmentHandler struct {
	Store    AppointmentStore
	Users    UserStore
	Contacts ContactStore
	Mail     mailer.Sender
}

func NewAppointmentHandler(s AppointmentStore, users UserStore, contacts ContactStore, mail mailer.Sender) *AppointmentHandler {
	return &AppointmentHandler{Store: s, Users: users, Contacts: contacts, Mail: mail}
}

type appointmentReq struct {
	Title     string   `json:"title"`
	Date      *string  `json:"date"`
	Time      *string  `json:"time"`
	Location  *string  `json:"location"`
	Notes     *string  `json:"notes"`
	Attendees []uint64 `json:"attendees"`
}

type appointmentResp struct {
	ID        uint64   `json:"id"`
	Title     string   `json:"title"`
	Date      *string  `json:"date"`
	Time      *string  `json:"time"`
	Location  *string  `json:"location"`
	Notes     *string  `json:"notes"`
	Attendees []uint64 `json:"attendees"`
	CreatedAt string   `json:"created_at"`
}

func toAppointmentResp(a *model.Appointment) appointmentResp {
	attendees := a.Attendees
	if attendees == nil {
		attendees = []uint64{}
	}
	return appointmentResp{
		ID:        a.ID,
		Title:     a.Title,
		Date:      a.Date,
		Time:      a.Time,
		Location:  a.Location,
		Notes:     a.Notes,
		Attendees: attendees,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// checkAttendees verifies every attendee id is one of the caller's own
// contacts and returns the deduplicated set. A foreign or unknown id gets
// the same answer, so the field cannot be used to probe other users' data.
func (h *AppointmentHandler) checkAttendees(ctx context.Context, ownerID uint64, ids []uint64) ([]uint64, error) {
	seen := make(map[uint64]bool, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, cid := range ids {
		if seen[cid] {
			continue
		}
		seen[cid] = true
		if _, err := h.Contacts.GetByIDAndOwner(ctx, cid, ownerID); err != nil {
			return nil, fmt.Errorf("unknown contact id %d", cid)
		}
		out = append(out, cid)
	}
	return out, nil
}

// List returns the caller's appointments in calendar order.
func (h *AppointmentHandler) List(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	appts, err := h.Store.ListByOwner(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list appointments failed"})
	}
	out := make([]appointmentResp, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentResp(a))
	}
	return c.JSON(http.StatusOK, out)
}

// Create adds an appointment, emails a confirmation to the owner and emits
// an appointment.created event.
func (h *AppointmentHandler) Create(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req appointmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"title": "title is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	attendees, err := h.checkAttendees(ctx, uid, req.Attendees)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"attendees": err.Error()})
	}

	a := &model.Appointment{
		OwnerID:   uid,
		Title:     req.Title,
		Date:      req.Date,
		Time:      req.Time,
		Location:  req.Location,
		Notes:     req.Notes,
		Attendees: attendees,
	}

	if err := h.Store.Create(ctx, a); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create appointment failed"})
	}

	// Confirmation mail is best effort here: the appointment exists either way.
	if u, err := h.Users.GetByID(ctx, uid); err == nil {
		if err := h.Mail.Send(u.Email, "Appointment Confirmation", appointmentBody(u.FirstName, a)); err != nil {
			c.Logger().Warnf("appointment confirmation mail failed for user %d: %v", uid, err)
		}
	}
	publishAppointmentEvent(a)

	return c.JSON(http.StatusCreated, toAppointmentResp(a))
}

// Get returns a single owned appointment.
func (h *AppointmentHandler) Get(c echo.Context) error {
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

	a, err := h.Store.GetByIDAndOwner(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "get appointment failed"})
	}
	return c.JSON(http.StatusOK, toAppointmentResp(a))
}

// Update replaces the mutable fields of an owned appointment.
func (h *AppointmentHandler) Update(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req appointmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"title": "title is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	attendees, err := h.checkAttendees(ctx, uid, req.Attendees)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"attendees": err.Error()})
	}

	a := &model.Appointment{
		ID:        id,
		OwnerID:   uid,
		Title:     req.Title,
		Date:      req.Date,
		Time:      req.Time,
		Location:  req.Location,
		Notes:     req.Notes,
		Attendees: attendees,
	}

	if err := h.Store.Update(ctx, a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update appointment failed"})
	}
	updated, err := h.Store.GetByIDAndOwner(ctx, id, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update appointment failed"})
	}
	return c.JSON(http.StatusOK, toAppointmentResp(updated))
}

// Delete removes an owned appointment.
func (h *AppointmentHandler) Delete(c echo.Context) error {
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
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete appointment failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

func appointmentBody(firstName string, a *model.Appointment) string {
	when := "unscheduled"
	if a.Date != nil {
		when = *a.Date
		if a.Time != nil {
			when += " at " + *a.Time
		}
	}
	where := ""
	if a.Location != nil && *a.Location != "" {
		where = "Location: " + *a.Location + "\n"
	}
	return fmt.Sprintf(`Hi %s,

Your appointment has been scheduled:

%s
When: %s
%s
Thanks,
The PAs Assistant Team
`, firstName, a.Title, when, where)
}

func publishAppointmentEvent(a *model.Appointment) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	date, tm := "", ""
	if a.Date != nil {
		date = *a.Date
	}
	if a.Time != nil {
		tm = *a.Time
	}
	_ = queue_publisher.Publish(ctx, queue.AppointmentCreatedEvent{
		Type:          queue.EventAppointmentCreated,
		AppointmentID: a.ID,
		UserID:        a.OwnerID,
		Title:         a.Title,
		Date:          date,
		Time:          tm,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})
}
