package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pa-assistant/backend/internal/config"
	"github.com/pa-assistant/backend/internal/mailer"
	"github.com/pa-assistant/backend/internal/middleware"
	"github.com/pa-assistant/backend/internal/model"
	"github.com/pa-assistant/backend/internal/queue"
	"github.com/pa-assistant/backend/internal/repository"
	queue_publisher "github.com/pa-assistant/backend/internal/service"
	"github.com/pa-assistant/backend/internal/token"
	"github.com/pa-assistant/backend/internal/utils"
)

// UserStore is the slice of the user repository the auth handler needs.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, firstName, lastName, fullName string) (uint64, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	Activate(ctx context.Context, id uint64) error
	UpdatePassword(ctx context.Context, id uint64, newHash string) error
	GetProfile(ctx context.Context, userID uint64) (*model.Profile, error)
}

// SessionStore persists login sessions as hashed refresh tokens.
type SessionStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	Validate(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AuthHandler bundles dependencies for the account lifecycle endpoints:
// registration, activation, login/logout and password reset.
type AuthHandler struct {
	Cfg      config.Config
	Users    UserStore
	Sessions SessionStore
	Tokens   *token.Generator
	Mail     mailer.Sender
	Policy   utils.PasswordPolicy
	Hasher   utils.Hasher
}

func NewAuthHandler(cfg config.Config, users UserStore, sessions SessionStore, gen *token.Generator, mail mailer.Sender, policy utils.PasswordPolicy, hasher utils.Hasher) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Sessions: sessions, Tokens: gen, Mail: mail, Policy: policy, Hasher: hasher}
}

// ----- DTOs -----

type registerReq struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type emailReq struct {
	Email string `json:"email"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type activateReq struct {
	UIDB64 string `json:"uidb64"`
	Token  string `json:"token"`
}
type resetConfirmReq struct {
	UIDB64          string `json:"uidb64"`
	Token           string `json:"token"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// genericSentMsg is the one response body for the enumeration-sensitive
// endpoints; existing and unknown emails must be indistinguishable.
const genericSentMsg = "if a matching account was found, an email has been sent"

// factsOf snapshots the mutable user state action tokens are bound to.
func factsOf(u *model.User) token.Facts {
	return token.Facts{UserID: u.ID, PasswordHash: u.PasswordHash, IsActive: u.IsActive}
}

// Register: validate, create inactive user + profile, email an activation link.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)

	// Field-level validation errors are collected into one 400 response the
	// way the frontend expects: {"field": "message"}.
	fieldErrs := echo.Map{}
	if req.FullName == "" {
		fieldErrs["full_name"] = "full name is required"
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		fieldErrs["email"] = "a valid email is required"
	}
	if req.Password != req.PasswordConfirm {
		fieldErrs["password"] = "password fields didn't match"
	} else if violations := h.Policy.Validate(req.Password); len(violations) > 0 {
		fieldErrs["password"] = violations
	}
	if len(fieldErrs) > 0 {
		return c.JSON(http.StatusBadRequest, fieldErrs)
	}

	firstName, lastName := splitFullName(req.FullName)

	hash, err := h.Hasher.Hash(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, hash, firstName, lastName, req.FullName)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"email": "email is already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	// New accounts start inactive; the activation token is bound to that
	// state so consuming it once is all it is good for.
	facts := token.Facts{UserID: uid, PasswordHash: hash, IsActive: false}
	link := h.activationLink(uid, h.Tokens.Issue(facts))
	if err := h.Mail.Send(req.Email, "Activate Your PAs Assistant Account", activationBody(firstName, link)); err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to send activation email"})
	}

	publishAccountEvent(queue.EventUserRegistered, uid, req.Email)

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "user registered successfully",
		"user_id": uid,
	})
}

// Activate consumes an activation link. Expired, tampered, wrong-user and
// already-used tokens are deliberately indistinguishable in the response.
func (h *AuthHandler) Activate(c echo.Context) error {
	var req activateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	uid, err := token.DecodeUID(req.UIDB64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	// Validation recomputes over the current active flag: once the account
	// is active the MAC can no longer match, so replay dies here.
	if !h.Tokens.Validate(factsOf(u), req.Token) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token"})
	}

	if err := h.Users.Activate(ctx, uid); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Lost a race with a concurrent activation of the same token.
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "activation failed"})
	}

	publishAccountEvent(queue.EventUserActivated, uid, u.Email)

	return c.JSON(http.StatusOK, echo.Map{"message": "account activated successfully"})
}

// ResendActivation emails a fresh activation link. The response never
// reveals whether the email belongs to an account.
func (h *AuthHandler) ResendActivation(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err == nil && !u.IsActive {
		link := h.activationLink(u.ID, h.Tokens.Issue(factsOf(u)))
		if err := h.Mail.Send(u.Email, "Activate Your PAs Assistant Account", activationBody(u.FirstName, link)); err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to send activation email"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": genericSentMsg})
}

// Login verifies credentials and establishes a session. The password is
// checked before the active flag: only a caller who already proved they hold
// the password learns that activation is still pending.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !h.Hasher.Verify(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account not activated"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Sessions.Store(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save session failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: u.ID, Username: u.Username, Email: u.Email, FullName: h.displayName(ctx, u)},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

// Refresh exchanges a live refresh token for a fresh access/refresh pair.
// The presented token is revoked in the same request, so each refresh token
// works exactly once and a replayed one is a signal the session leaked.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Sessions.Validate(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	if err := h.Sessions.RevokeByHash(ctx, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Sessions.Store(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save session failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: u.ID, Username: u.Username, Email: u.Email, FullName: h.displayName(ctx, u)},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}

// Logout terminates the caller's session(s). With a refresh token in the
// body only that session dies; otherwise every session of the user is
// revoked.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req refreshReq
	_ = c.Bind(&req) // absent/invalid body just means "revoke everything"
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if raw != "" {
		hash := utils.HashRefreshRaw(raw)
		if _, err := h.Sessions.Validate(ctx, hash); err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		if err := h.Sessions.RevokeByHash(ctx, hash); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
	} else if err := h.Sessions.RevokeAllForUser(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out successfully"})
}

// PasswordResetRequest emails a reset link bound to the current password
// hash. Same body for existing and unknown emails; activation state does not
// matter here.
func (h *AuthHandler) PasswordResetRequest(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err == nil {
		link := h.resetLink(u.ID, h.Tokens.Issue(factsOf(u)))
		if err := h.Mail.Send(u.Email, "Reset Your PAs Assistant Password", resetBody(u.FirstName, link)); err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to send reset email"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": genericSentMsg})
}

// PasswordResetConfirm validates a reset link and sets the new password.
// Field validation runs before the token is even looked at, so a mismatch
// never touches storage. The hash update invalidates every outstanding reset
// link and all live sessions are revoked.
func (h *AuthHandler) PasswordResetConfirm(c echo.Context) error {
	var req resetConfirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	if req.Password != req.PasswordConfirm {
		return c.JSON(http.StatusBadRequest, echo.Map{"password": "password fields didn't match"})
	}
	if violations := h.Policy.Validate(req.Password); len(violations) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"password": violations})
	}

	uid, err := token.DecodeUID(req.UIDB64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !h.Tokens.Validate(factsOf(u), req.Token) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token"})
	}

	newHash, err := h.Hasher.Hash(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	if err := h.Users.UpdatePassword(ctx, uid, newHash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	// A password change ends every live session for the account.
	if err := h.Sessions.RevokeAllForUser(ctx, uid); err != nil {
		c.Logger().Warnf("revoke sessions after reset failed for user %d: %v", uid, err)
	}

	publishAccountEvent(queue.EventPasswordReset, uid, u.Email)

	return c.JSON(http.StatusOK, echo.Map{"message": "password has been reset"})
}

// Profile returns the authenticated user's display record.
func (h *AuthHandler) Profile(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"full_name": h.displayName(ctx, u),
		"email":     u.Email,
	})
}

// Me reports the auth status plus the user summary. Requests that reach this
// handler passed the JWT middleware, so is_authenticated is always true
// here; unauthenticated callers get the middleware's 401 instead.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"is_authenticated": false})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"is_authenticated": true,
		"user":             userPart{ID: u.ID, Username: u.Username, Email: u.Email, FullName: h.displayName(ctx, u)},
	})
}

// ----- helpers -----

// displayName prefers the profile's full name; users from before synchronous
// profile creation fall back to the identity's name fields without a write.
func (h *AuthHandler) displayName(ctx context.Context, u *model.User) string {
	if p, err := h.Users.GetProfile(ctx, u.ID); err == nil {
		return p.FullName
	}
	return u.FullName()
}

// splitFullName stores the first word as the first name and the remainder as
// the last name.
func splitFullName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func (h *AuthHandler) activationLink(uid uint64, tok string) string {
	return fmt.Sprintf("%s/%s/%s/", h.Cfg.ActivateURL, token.EncodeUID(uid), tok)
}

func (h *AuthHandler) resetLink(uid uint64, tok string) string {
	return fmt.Sprintf("%s/%s/%s/", h.Cfg.ResetURL, token.EncodeUID(uid), tok)
}

func activationBody(firstName, link string) string {
	return fmt.Sprintf(`Hi %s,

Please click the link below to activate your account:
%s

If you did not request this, please ignore this email.

Thanks,
The PAs Assistant Team
`, firstName, link)
}

func resetBody(firstName, link string) string {
	return fmt.Sprintf(`Hi %s,

We received a request to reset your password. Please click the link below to set a new password:
%s

If you did not request this, please ignore this email.

Thanks,
The PAs Assistant Team
`, firstName, link)
}

// publishAccountEvent fires an audit event; failures never affect the
// request that triggered them.
func publishAccountEvent(typ string, uid uint64, email string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = queue_publisher.Publish(ctx, queue.AccountEvent{
		Type:       typ,
		UserID:     uid,
		Email:      email,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}
