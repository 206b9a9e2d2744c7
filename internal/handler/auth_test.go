package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pa-assistant/backend/internal/config"
	"github.com/pa-assistant/backend/internal/model"
	"github.com/pa-assistant/backend/internal/repository"
	"github.com/pa-assistant/backend/internal/token"
	"github.com/pa-assistant/backend/internal/utils"
)

// ----- in-memory fakes -----

type fakeUsers struct {
	mu       sync.Mutex
	seq      uint64
	byID     map[uint64]*model.User
	profiles map[uint64]string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uint64]*model.User{}, profiles: map[uint64]string{}}
}

func (f *fakeUsers) Create(_ context.Context, email, passwordHash, firstName, lastName, fullName string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	f.seq++
	f.byID[f.seq] = &model.User{
		ID:           f.seq,
		Username:     email,
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     false,
		CreatedAt:    time.Now(),
	}
	f.profiles[f.seq] = fullName
	return f.seq, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Activate(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok || u.IsActive {
		return repository.ErrUserNotFound
	}
	u.IsActive = true
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uint64, newHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = newHash
	return nil
}

func (f *fakeUsers) GetProfile(_ context.Context, userID uint64) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, ok := f.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &model.Profile{UserID: userID, FullName: name}, nil
}

type fakeSession struct {
	userID  uint64
	exp     time.Time
	revoked bool
}

type fakeSessions struct {
	mu   sync.Mutex
	byID map[string]*fakeSession
}

func newFakeSessions() *fakeSessions { return &fakeSessions{byID: map[string]*fakeSession{}} }

func (f *fakeSessions) Store(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[tokenHash] = &fakeSession{userID: userID, exp: exp}
	return nil
}

func (f *fakeSessions) Validate(_ context.Context, tokenHash string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[tokenHash]
	if !ok || s.revoked || time.Now().After(s.exp) {
		return 0, repository.ErrNotFound
	}
	return s.userID, nil
}

func (f *fakeSessions) RevokeByHash(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.byID[tokenHash]; ok {
		s.revoked = true
	}
	return nil
}

func (f *fakeSessions) RevokeAllForUser(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.byID {
		if s.userID == userID {
			s.revoked = true
		}
	}
	return nil
}

func (f *fakeSessions) activeCount(userID uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.byID {
		if s.userID == userID && !s.revoked {
			n++
		}
	}
	return n
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (f *fakeMailer) last(t *testing.T) sentMail {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "expected at least one mail")
	return f.sent[len(f.sent)-1]
}

func (f *fakeMailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// ----- harness -----

const (
	testActivateURL = "http://localhost:3000/activate"
	testResetURL    = "http://localhost:3000/password-reset-confirm"
)

func newTestAuth() (*AuthHandler, *fakeUsers, *fakeSessions, *fakeMailer) {
	users := newFakeUsers()
	sessions := newFakeSessions()
	mail := &fakeMailer{}
	cfg := config.Config{
		JWTSecret:      "test-jwt-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		ActivateURL:    testActivateURL,
		ResetURL:       testResetURL,
	}
	gen := token.New("test-token-secret", 72*time.Hour)
	h := NewAuthHandler(cfg, users, sessions, gen, mail, utils.DefaultPolicy{}, utils.BcryptHasher{Cost: 4})
	return h, users, sessions, mail
}

// do runs an echo handler against a JSON body. uid > 0 simulates a request
// that passed the JWT middleware.
func do(fn echo.HandlerFunc, method, path, body string, uid uint64) *httptest.ResponseRecorder {
	e := echo.New()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("{}")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if uid > 0 {
		c.Set("user_id", uid)
	}
	_ = fn(c)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

// linkParts pulls the uidb64 and token path segments out of an emailed link.
func linkParts(t *testing.T, body, base string) (uidb64, tok string) {
	t.Helper()
	i := strings.Index(body, base)
	require.GreaterOrEqual(t, i, 0, "mail body must contain the link base %q", base)
	rest := body[i+len(base):]
	if j := strings.IndexAny(rest, " \n\r\t"); j >= 0 {
		rest = rest[:j]
	}
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	require.Len(t, parts, 2, "link must carry uidb64 and token segments: %q", rest)
	return parts[0], parts[1]
}

func register(t *testing.T, h *AuthHandler, fullName, email, password string) uint64 {
	t.Helper()
	body := fmt.Sprintf(`{"full_name":%q,"email":%q,"password":%q,"password_confirm":%q}`,
		fullName, email, password, password)
	rec := do(h.Register, http.MethodPost, "/v1/auth/register", body, 0)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode(t, rec)
	return uint64(resp["user_id"].(float64))
}

func activateFromMail(t *testing.T, h *AuthHandler, mail *fakeMailer) *httptest.ResponseRecorder {
	t.Helper()
	uidb64, tok := linkParts(t, mail.last(t).Body, testActivateURL)
	body := fmt.Sprintf(`{"uidb64":%q,"token":%q}`, uidb64, tok)
	return do(h.Activate, http.MethodPost, "/v1/auth/activate", body, 0)
}

func login(h *AuthHandler, email, password string) *httptest.ResponseRecorder {
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	return do(h.Login, http.MethodPost, "/v1/auth/login", body, 0)
}

// ----- lifecycle tests -----

func TestRegisterActivateLogin_EndToEnd(t *testing.T) {
	h, _, _, mail := newTestAuth()

	uid := register(t, h, "Jane Doe", "jane@example.com", "s3cure-pass")
	require.Equal(t, uint64(1), uid)

	m := mail.last(t)
	assert.Equal(t, "jane@example.com", m.To)
	assert.Contains(t, m.Body, "Hi Jane")
	assert.Contains(t, m.Body, testActivateURL)

	// Not activated yet: correct password is told so, wrong password is not.
	rec := login(h, "jane@example.com", "s3cure-pass")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "account not activated", decode(t, rec)["error"])

	rec = activateFromMail(t, h, mail)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = login(h, "jane@example.com", "s3cure-pass")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Jane Doe", resp.User.FullName)
	assert.Equal(t, "jane@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.Access.Token)
	assert.NotEmpty(t, resp.Refresh.Token)
	assert.True(t, resp.Refresh.Expires.After(time.Now()))
}

func TestRegister_FieldValidation(t *testing.T) {
	h, _, _, mail := newTestAuth()

	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"missing full name", `{"email":"a@b.com","password":"s3cure-pass","password_confirm":"s3cure-pass"}`, "full_name"},
		{"bad email", `{"full_name":"A B","email":"not-an-email","password":"s3cure-pass","password_confirm":"s3cure-pass"}`, "email"},
		{"mismatch", `{"full_name":"A B","email":"a@b.com","password":"s3cure-pass","password_confirm":"other"}`, "password"},
		{"too short", `{"full_name":"A B","email":"a@b.com","password":"short","password_confirm":"short"}`, "password"},
		{"all numeric", `{"full_name":"A B","email":"a@b.com","password":"123456789","password_confirm":"123456789"}`, "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(h.Register, http.MethodPost, "/v1/auth/register", tc.body, 0)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode(t, rec), tc.field)
		})
	}
	assert.Zero(t, mail.count(), "no validation failure may send mail")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h, _, _, _ := newTestAuth()

	register(t, h, "Jane Doe", "jane@example.com", "s3cure-pass")

	body := `{"full_name":"Other Jane","email":"jane@example.com","password":"s3cure-pass","password_confirm":"s3cure-pass"}`
	rec := do(h.Register, http.MethodPost, "/v1/auth/register", body, 0)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email is already registered", decode(t, rec)["email"])
}

func TestRegister_MailFailureIsFatal(t *testing.T) {
	h, users, _, mail := newTestAuth()
	mail.err = fmt.Errorf("relay down")

	body := `{"full_name":"Jane Doe","email":"jane@example.com","password":"s3cure-pass","password_confirm":"s3cure-pass"}`
	rec := do(h.Register, http.MethodPost, "/v1/auth/register", body, 0)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	// The row exists; resend-activation can recover the account later.
	_, err := users.GetByEmail(context.Background(), "jane@example.com")
	assert.NoError(t, err)
}

func TestActivate_TokenIsSingleUse(t *testing.T) {
	h, _, _, mail := newTestAuth()

	register(t, h, "Jane Doe", "jane@example.com", "s3cure-pass")
	uidb64, tok := linkParts(t, mail.last(t).Body, testActivateURL)
	body := fmt.Sprintf(`{"uidb64":%q,"token":%q}`, uidb64, tok)

	rec := do(h.Activate, http.MethodPost, "/v1/auth/activate", body, 0)
	require.Equal(t, http.StatusOK, rec.Code)

	// Second use: the active flag changed, the MAC no longer matches.
	rec = do(h.Activate, http.MethodPost, "/v1/auth/activate", body, 0)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid token", decode(t, rec)["error"])
}

func TestActivate_RejectsGarbage(t *testing.T) {
	h, _, _, mail := newTestAuth()

	register(t, h, "Jane Doe", "jane@example.com", "s3cure-pass")
	uidb64, tok := linkParts(t, mail.last(t).Body, testActivateURL)

	for name, body := range map[string]string{
		"bad uid":        `{"uidb64":"!!!!","token":"` + tok + `"}`,
		"unknown user":   `{"uidb64":"OTk5","token":"` + tok + `"}`,
		"tampered token": fmt.Sprintf(`{"uidb64":%q,"token":%q}`, uidb64, tok+"x"),
		"empty":          `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(h.Activate, http.MethodPost, "/v1/auth/activate", body, 0)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "invalid token", decode(t, rec)["error"])
		})
	}
}

func TestResendActivation_EnumerationResistant(t *testing.T) {
	h, _, _, mail := newTestAuth()

	register(t, h, "Jane Doe", "jane@example.com", "s3cure-pass")
	before := mail.count()

	recKnown := do(h.ResendActivation, http.MethodPost, "/v1/auth/resend-activation",
		`{"email":"jane@example.com"}`, 0)
	recUnknown := do(h.ResendActivation, http.MethodPost, "/v1/auth/resend-activation",
		`{"email":"ghost@example.com"}`, 0)

	require.Equal(t, http.StatusOK, recKnown.Code)
	require.Equal(t, http.StatusOK, recUnknown.Code)
	assert.Equal(t, recKnown.Body.String(), recUnknown.Body.String(),
		"existing and unknown emails must be indistinguishable")

	// Only the real inactive account got mail.
	assert.Equal(t, before+1, mail.count())

	// Once active, resend sends nothing but the body stays the same.
	rec := activateFromMail(t, h, mail)
	require.Equal(t, http.StatusOK, rec.Code)
	after := mail.count()
	recActive := do(h.ResendActivation, http.MethodPost, "/v1/auth/resend-activation",
		`{"email":"jane@example.com"}`, 0)
	require.Equal(t, http.StatusOK, recActive.Code)
	assert.Equal(t, recKnown.Body.String(), recActive.Body.String())
	assert.Equal(t, after, mail.count())
}

func TestLogin_Precedence(t *testing.T) {
	h, _, _, mail := newTestAuth()

	register(t, h, "Jane Doe", "jane@example.com", "s3cure-pass")

	// Wrong password on an inactive account must not reveal the account state.
	rec := login(h, "jane@example.com", "wrong-pass")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", decode(t, rec)["error"])

	rec = login(h, "ghost@example.com", "whatever-pass")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", decode(t, rec)["error"])

	rec = login(h, "jane@example.com", "s3cure-pass")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "account not activated", decode(t, rec)["error"])

	rec = activateFromMail(t, h, mail)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = login(h, "jane@example.com", "s3cure-pass")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogout_RevokesSessions(t *testing.T) {
	h, _, sessions, mail := newTestAuth()

	uid := register(t, h, "Jane Doe", "jane@example.com", "s3cure-pass")
	require.Equal(t, http.StatusOK, activateFromMail(t, h, mail).Code)

	// Two logins, two live sessions.
	var first authResp
	rec := login(h, "jane@example.com", "s3cure-pass")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	rec = login(h, "jane@example.com", "s3cure-pass")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, sessions.activeCount(uid))

	// Targeted logout kills only the named session.
	body := fmt.Sprintf(`{"refresh_token":%q}`, first.Refresh.Token)
	rec = do(h.Logout, http.MethodPost, "/v1/auth/logout", body, uid)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, sessions.activeCount(uid))

	// Replaying the same refresh token is rejected.
	rec = do(h.Logout, http.MethodPost, "/v1/auth/logout", body, uid)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Bare logout sweeps the rest.
	rec = do(h.Logout, http.MethodPost, "/v1/auth/logout", "", uid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, sessions.activeCount(uid))
}

func TestPasswordReset_EndToEnd(t *testing.T) {
	h, _, sessions, mail := newTestAuth()

	uid := register(t, h, "Jane Doe", "jane@example.com", "old-password")
	require.Equal(t, http.StatusOK, activateFromMail(t, h, mail).Code)
	rec := login(h, "jane@example.com", "old-password")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, sessions.activeCount(uid))

	rec = do(h.PasswordResetRequest, http.MethodPost, "/v1/auth/password-reset",
		`{"email":"jane@example.com"}`, 0)
	require.Equal(t, http.StatusOK, rec.Code)

	uidb64, tok := linkParts(t, mail.last(t).Body, testResetURL)

	// Mismatched confirmation never touches storage: the token stays live.
	body := fmt.Sprintf(`{"uidb64":%q,"token":%q,"password":"new-password","password_confirm":"other"}`, uidb64, tok)
	rec = do(h.PasswordResetConfirm, http.MethodPost, "/v1/auth/password-reset-confirm", body, 0)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "password fields didn't match", decode(t, rec)["password"])

	body = fmt.Sprintf(`{"uidb64":%q,"token":%q,"password":"new-password","password_confirm":"new-password"}`, uidb64, tok)
	rec = do(h.PasswordResetConfirm, http.MethodPost, "/v1/auth/password-reset-confirm", body, 0)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The hash changed: old password dead, new one works, sessions revoked,
	// and the consumed link cannot be replayed.
	rec = login(h, "jane@example.com", "old-password")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = login(h, "jane@example.com", "new-password")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, sessions.activeCount(uid), "only the fresh login session remains")

	rec = do(h.PasswordResetConfirm, http.MethodPost, "/v1/auth/password-reset-confirm", body, 0)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid token", decode(t, rec)["error"])
}

func TestPasswordResetRequest_EnumerationResistant(t *testing.T) {
	h, _, _, mail := newTestAuth()

	register(t, h, "Jane Doe", "jane@example.com", "s3cure-pass")
	before := mail.count()

	recKnown := do(h.PasswordResetRequest, http.MethodPost, "/v1/auth/password-reset",
		`{"email":"jane@example.com"}`, 0)
	recUnknown := do(h.PasswordResetRequest, http.MethodPost, "/v1/auth/password-reset",
		`{"email":"ghost@example.com"}`, 0)

	require.Equal(t, http.StatusOK, recKnown.Code)
	require.Equal(t, http.StatusOK, recUnknown.Code)
	assert.Equal(t, recKnown.Body.String(), recUnknown.Body.String())
	assert.Equal(t, before+1, mail.count())
}

func TestPasswordResetConfirm_PolicyBeforeToken(t *testing.T) {
	h, _, _, _ := newTestAuth()

	// Even with nonsense token material, weak passwords are reported first.
	body := `{"uidb64":"zzz","token":"zzz","password":"123","password_confirm":"123"}`
	rec := do(h.PasswordResetConfirm, http.MethodPost, "/v1/auth/password-reset-confirm", body, 0)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec), "password")
}

func TestProfileAndMe(t *testing.T) {
	h, _, _, mail := newTestAuth()

	uid := register(t, h, "Jane Doe", "jane@example.com", "s3cure-pass")
	require.Equal(t, http.StatusOK, activateFromMail(t, h, mail).Code)

	rec := do(h.Profile, http.MethodGet, "/v1/profile", "", uid)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "Jane Doe", resp["full_name"])
	assert.Equal(t, "jane@example.com", resp["email"])

	rec = do(h.Me, http.MethodGet, "/v1/me", "", uid)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode(t, rec)
	assert.Equal(t, true, resp["is_authenticated"])

	// Anonymous callers get a valid negative answer, not a bare error.
	rec = do(h.Me, http.MethodGet, "/v1/me", "", 0)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, decode(t, rec)["is_authenticated"])
}

func TestRefresh_RotatesSession(t *testing.T) {
	h, _, sessions, mail := newTestAuth()

	uid := register(t, h, "Jane Doe", "jane@example.com", "s3cure-pass")
	require.Equal(t, http.StatusOK, activateFromMail(t, h, mail).Code)

	var first authResp
	rec := login(h, "jane@example.com", "s3cure-pass")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	require.Equal(t, 1, sessions.activeCount(uid))

	body := fmt.Sprintf(`{"refresh_token":%q}`, first.Refresh.Token)
	rec = do(h.Refresh, http.MethodPost, "/v1/auth/refresh", body, 0)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var second authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.NotEmpty(t, second.Access.Token)
	assert.NotEmpty(t, second.Refresh.Token)
	assert.NotEqual(t, first.Refresh.Token, second.Refresh.Token, "refresh must rotate")
	assert.Equal(t, "Jane Doe", second.User.FullName)

	// Rotation: still exactly one live session, and the old token is dead.
	assert.Equal(t, 1, sessions.activeCount(uid))
	rec = do(h.Refresh, http.MethodPost, "/v1/auth/refresh", body, 0)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid refresh token", decode(t, rec)["error"])

	// The rotated token works.
	body = fmt.Sprintf(`{"refresh_token":%q}`, second.Refresh.Token)
	rec = do(h.Refresh, http.MethodPost, "/v1/auth/refresh", body, 0)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Missing token is a 400, not a 401.
	rec = do(h.Refresh, http.MethodPost, "/v1/auth/refresh", `{}`, 0)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
