package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	stdhttp "net/http"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/shift-service/internal/api/dto"
	"github.com/spec-kit/shift-service/internal/api/http/handlers"
	"github.com/spec-kit/shift-service/internal/auth"
	"github.com/spec-kit/shift-service/internal/config"
	"github.com/spec-kit/shift-service/internal/observability"
	"github.com/spec-kit/shift-service/internal/persistence"
	"github.com/spec-kit/shift-service/internal/repository"
	"github.com/spec-kit/shift-service/internal/service"
)

type fakeRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (s *fakeRevocationStore) Revoke(_ context.Context, jti string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = true
	return nil
}

func (s *fakeRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[jti], nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            bcrypt.MinCost,
		},
	}

	users := repository.NewMemoryUserRepository()
	shifts := repository.NewMemoryShiftRepository(users)
	revoked := &fakeRevocationStore{revoked: make(map[string]bool)}

	authService := service.NewAuthService(cfg, users, revoked)
	userService := service.NewUserService(users, nil, cfg.Auth.BcryptCost)
	shiftService := service.NewShiftService(shifts, nil)

	_, err := userService.EnsureAdmin(context.Background(), "admin@x.com", "Admin", "adminpw")
	require.NoError(t, err)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("shift-service", "test", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Shifts:         handlers.NewShiftsHandler(shiftService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), users, revoked),
		Metrics:        metrics,
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body any) (*stdhttp.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req, err := stdhttp.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, raw
}

func login(t *testing.T, app *fiber.App, email, password string) dto.LoginResponse {
	t.Helper()
	resp, raw := doRequest(t, app, stdhttp.MethodPost, "/login", "", fiber.Map{
		"email":    email,
		"password": password,
	})
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode, string(raw))

	var out dto.LoginResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestLoginBadCredentials(t *testing.T) {
	app := newTestApp(t)

	resp, raw := doRequest(t, app, stdhttp.MethodPost, "/login", "", fiber.Map{
		"email":    "admin@x.com",
		"password": "wrong",
	})
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.NotEmpty(t, body["message"])
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/shifts", "/users", "/logout"} {
		resp, _ := doRequest(t, app, stdhttp.MethodGet, path, "", nil)
		assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestWaiterCannotManageUsers(t *testing.T) {
	app := newTestApp(t)
	admin := login(t, app, "admin@x.com", "adminpw")

	resp, _ := doRequest(t, app, stdhttp.MethodPost, "/users", admin.Token, fiber.Map{
		"email": "a@x.com", "name": "Ann", "role": "waiter", "password": "p1",
	})
	require.Equal(t, stdhttp.StatusCreated, resp.StatusCode)

	waiter := login(t, app, "a@x.com", "p1")
	resp, _ = doRequest(t, app, stdhttp.MethodGet, "/users", waiter.Token, nil)
	assert.Equal(t, stdhttp.StatusForbidden, resp.StatusCode)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	app := newTestApp(t)
	admin := login(t, app, "admin@x.com", "adminpw")

	resp, _ := doRequest(t, app, stdhttp.MethodGet, "/logout", admin.Token, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	resp, _ = doRequest(t, app, stdhttp.MethodGet, "/shifts", admin.Token, nil)
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
}

func TestUpdateShiftTypeOverridesExplicitTimes(t *testing.T) {
	app := newTestApp(t)
	admin := login(t, app, "admin@x.com", "adminpw")

	resp, raw := doRequest(t, app, stdhttp.MethodPost, "/shifts", admin.Token, fiber.Map{
		"user_id": admin.ID, "date": "2024-06-01", "shift_type": "morning",
	})
	require.Equal(t, stdhttp.StatusCreated, resp.StatusCode, string(raw))
	var created map[string]any
	require.NoError(t, json.Unmarshal(raw, &created))
	shiftID := int64(created["id"].(float64))

	// Explicit times in the same patch lose to the canonical pair.
	resp, _ = doRequest(t, app, stdhttp.MethodPut, fmt.Sprintf("/shifts/%d", shiftID), admin.Token, fiber.Map{
		"shift_type": "evening", "start_time": "13:00", "end_time": "21:00",
	})
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	resp, raw = doRequest(t, app, stdhttp.MethodGet, "/shifts", admin.Token, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	var listing []dto.ShiftResponse
	require.NoError(t, json.Unmarshal(raw, &listing))
	require.Len(t, listing, 1)
	assert.Equal(t, "17:00", listing[0].StartTime)
	assert.Equal(t, "01:00", listing[0].EndTime)
	assert.Equal(t, "evening", listing[0].ShiftType)
}

func TestShiftRequestApprovalFlow(t *testing.T) {
	app := newTestApp(t)
	admin := login(t, app, "admin@x.com", "adminpw")

	// Manager creates a waiter account.
	resp, raw := doRequest(t, app, stdhttp.MethodPost, "/users", admin.Token, fiber.Map{
		"email": "a@x.com", "name": "Ann", "role": "waiter", "password": "p1",
	})
	require.Equal(t, stdhttp.StatusCreated, resp.StatusCode, string(raw))

	// The waiter logs in with those credentials.
	waiter := login(t, app, "a@x.com", "p1")
	assert.Equal(t, "waiter", waiter.Role)
	assert.Equal(t, "Ann", waiter.Name)

	// The waiter requests a shift.
	resp, raw = doRequest(t, app, stdhttp.MethodPost, "/shifts", waiter.Token, fiber.Map{
		"date":       "2024-06-01",
		"start_time": "09:00",
		"end_time":   "17:00",
		"shift_type": "morning",
	})
	require.Equal(t, stdhttp.StatusCreated, resp.StatusCode, string(raw))
	var created map[string]any
	require.NoError(t, json.Unmarshal(raw, &created))
	shiftID := int64(created["id"].(float64))

	// It shows up as requested and flagged as the waiter's own.
	resp, raw = doRequest(t, app, stdhttp.MethodGet, "/shifts", waiter.Token, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	var listing []dto.ShiftResponse
	require.NoError(t, json.Unmarshal(raw, &listing))
	require.Len(t, listing, 1)
	assert.Equal(t, "requested", listing[0].Status)
	assert.Equal(t, "Ann", listing[0].UserName)
	assert.True(t, listing[0].IsCurrentUser)

	// A second request for the same day conflicts.
	resp, _ = doRequest(t, app, stdhttp.MethodPost, "/shifts", waiter.Token, fiber.Map{
		"date": "2024-06-01", "shift_type": "evening",
	})
	assert.Equal(t, stdhttp.StatusBadRequest, resp.StatusCode)

	// The waiter may not approve shifts.
	resp, _ = doRequest(t, app, stdhttp.MethodPut, fmt.Sprintf("/shifts/%d", shiftID), waiter.Token, fiber.Map{
		"status": "approved",
	})
	assert.Equal(t, stdhttp.StatusForbidden, resp.StatusCode)

	// The manager approves it.
	resp, _ = doRequest(t, app, stdhttp.MethodPut, fmt.Sprintf("/shifts/%d", shiftID), admin.Token, fiber.Map{
		"status": "approved",
	})
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	resp, raw = doRequest(t, app, stdhttp.MethodGet, "/shifts", waiter.Token, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &listing))
	require.Len(t, listing, 1)
	assert.Equal(t, "approved", listing[0].Status)

	// The listing is not flagged as the manager's own.
	resp, raw = doRequest(t, app, stdhttp.MethodGet, "/shifts", admin.Token, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &listing))
	require.Len(t, listing, 1)
	assert.False(t, listing[0].IsCurrentUser)

	// Deleting an unknown shift is a 404 and leaves the table unchanged.
	resp, _ = doRequest(t, app, stdhttp.MethodDelete, "/shifts/9999", admin.Token, nil)
	assert.Equal(t, stdhttp.StatusNotFound, resp.StatusCode)

	resp, raw = doRequest(t, app, stdhttp.MethodGet, "/shifts", admin.Token, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &listing))
	assert.Len(t, listing, 1)

	// The manager deletes the shift for real.
	resp, _ = doRequest(t, app, stdhttp.MethodDelete, fmt.Sprintf("/shifts/%d", shiftID), admin.Token, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	resp, raw = doRequest(t, app, stdhttp.MethodGet, "/shifts", admin.Token, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &listing))
	assert.Empty(t, listing)
}

func TestDuplicateEmailOverHTTP(t *testing.T) {
	app := newTestApp(t)
	admin := login(t, app, "admin@x.com", "adminpw")

	payload := fiber.Map{"email": "a@x.com", "name": "Ann", "role": "waiter", "password": "p1"}
	resp, _ := doRequest(t, app, stdhttp.MethodPost, "/users", admin.Token, payload)
	require.Equal(t, stdhttp.StatusCreated, resp.StatusCode)

	resp, raw := doRequest(t, app, stdhttp.MethodPost, "/users", admin.Token, payload)
	assert.Equal(t, stdhttp.StatusBadRequest, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "DUPLICATE_EMAIL", body["error"])
}
