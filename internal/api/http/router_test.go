package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const (
	ownerEmail    = "owner@example.com"
	ownerPassword = "owner-secret"
)

type testServer struct {
	app     *fiber.App
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	authCfg := config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
		SuperAdminTrialDays:   30,
	}
	recorder := service.NewAuditRecorder(store.Audit, nil, nil)
	dispatcher := events.NewInMemoryDispatcher(nil)

	authService := service.NewAuthService(authCfg, service.AuthDependencies{
		UserRepo:    store.Users,
		AccountRepo: store.Accounts,
		LoginRepo:   store.Logins,
		Revocations: memory.NewRevocationStore(),
		Audit:       recorder,
	})
	userService := service.NewUserService(authCfg, service.UserDependencies{
		UserRepo:    store.Users,
		AccountRepo: store.Accounts,
		AuditRepo:   store.Audit,
		LoginRepo:   store.Logins,
		Audit:       recorder,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: store.Tickets,
		NoteRepo:   store.Notes,
		UserRepo:   store.Users,
		Audit:      recorder,
		Dispatcher: dispatcher,
	})
	dashboardService := service.NewDashboardService(service.DashboardDependencies{
		TicketRepo:  store.Tickets,
		UserRepo:    store.Users,
		AccountRepo: store.Accounts,
		StatsRepo:   store.Stats,
		AuditRepo:   store.Audit,
		LoginRepo:   store.Logins,
	})

	_, _, err := authService.EnsureSystemOwner(context.Background(), config.BootstrapConfig{
		OwnerEmail:    ownerEmail,
		OwnerUsername: "owner",
		OwnerPassword: ownerPassword,
	})
	require.NoError(t, err)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("helpdesk-service", "test", nil, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Users:          handlers.NewUsersHandler(userService),
		Accounts:       handlers.NewAccountsHandler(userService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
	})
	return &testServer{app: app, metrics: metrics}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{"email": email, "password": password})
	require.Equal(t, http.StatusOK, status)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (s *testServer) createAccount(t *testing.T, path, token string, body fiber.Map) string {
	t.Helper()
	status, env := s.do(t, http.MethodPost, path, token, body)
	require.Equal(t, http.StatusCreated, status, "%+v", env.Error)
	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out.ID
}

// adminToken walks the hierarchy from the seeded owner down to an ADMIN.
func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	ownerToken := s.login(t, ownerEmail, ownerPassword)
	s.createAccount(t, "/api/system/superadmin", ownerToken, fiber.Map{
		"username": "tenant", "email": "tenant@example.com", "password": "tenant-secret", "businessType": "SMALL",
	})
	superToken := s.login(t, "tenant@example.com", "tenant-secret")
	s.createAccount(t, "/api/superadmin/admin", superToken, fiber.Map{
		"username": "carol", "email": "carol@example.com", "password": "carol-secret",
	})
	return s.login(t, "carol@example.com", "carol-secret")
}

func TestUserFilesTicket(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "alice", "email": "Alice@Example.com", "password": "alice-secret",
	})
	require.Equal(t, http.StatusCreated, status, "%+v", env.Error)
	var registered struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &registered))
	assert.Equal(t, "alice@example.com", registered.Email)
	assert.Equal(t, "USER", registered.Role)

	token := s.login(t, "alice@example.com", "alice-secret")

	status, env = s.do(t, http.MethodPost, "/api/tickets", token, fiber.Map{
		"title": "Printer down", "description": "3rd floor", "category": "HARDWARE",
	})
	require.Equal(t, http.StatusCreated, status, "%+v", env.Error)

	status, env = s.do(t, http.MethodGet, "/api/users/tickets", token, nil)
	require.Equal(t, http.StatusOK, status)
	var tickets []struct {
		ID       string  `json:"id"`
		Title    string  `json:"title"`
		Status   string  `json:"status"`
		Priority string  `json:"priority"`
		ClosedAt *string `json:"closedAt"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tickets))
	require.Len(t, tickets, 1)
	assert.Equal(t, "Printer down", tickets[0].Title)
	assert.Equal(t, "PENDING", tickets[0].Status)
	assert.Equal(t, "MEDIUM", tickets[0].Priority)
	assert.Nil(t, tickets[0].ClosedAt)

	status, env = s.do(t, http.MethodGet, "/api/users/tickets/"+tickets[0].ID+"/status", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"id":"`+tickets[0].ID+`","status":"PENDING"}`, string(env.Data))
}

func TestRegisterRejectsElevatedRole(t *testing.T) {
	s := newTestServer(t)
	status, env := s.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "mallory", "email": "mallory@example.com", "password": "secret1", "role": "ADMIN",
	})
	assert.Equal(t, http.StatusForbidden, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, apperrors.CodeForbidden, env.Error.Code)
}

func TestValidationErrorsNameFields(t *testing.T) {
	s := newTestServer(t)
	status, env := s.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "al", "email": "not-an-email", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, apperrors.CodeValidation, env.Error.Code)
	assert.Contains(t, env.Error.Details, "username")
	assert.Contains(t, env.Error.Details, "email")
}

func TestAdminAccountManagement(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.adminToken(t)

	bobID := s.createAccount(t, "/api/admin/user", adminToken, fiber.Map{
		"username": "bob", "email": "bob@example.com", "password": "bob-secret", "role": "IT_PERSON",
	})
	assert.NotEmpty(t, bobID)

	status, env := s.do(t, http.MethodPost, "/api/admin/user", adminToken, fiber.Map{
		"username": "dave", "email": "dave@example.com", "password": "dave-secret", "role": "ADMIN",
	})
	assert.Equal(t, http.StatusForbidden, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, apperrors.CodeForbidden, env.Error.Code)

	status, env = s.do(t, http.MethodGet, "/api/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	var grouped map[string][]struct {
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &grouped))
	require.Len(t, grouped["itPersons"], 1)
	assert.Equal(t, "bob", grouped["itPersons"][0].Username)
	assert.Empty(t, grouped["users"])

	status, _ = s.do(t, http.MethodDelete, "/api/admin/user/"+bobID, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestTicketAssignmentFlow(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.adminToken(t)
	bobID := s.createAccount(t, "/api/admin/user", adminToken, fiber.Map{
		"username": "bob", "email": "bob@example.com", "password": "bob-secret", "role": "IT_PERSON",
	})
	bobToken := s.login(t, "bob@example.com", "bob-secret")

	s.createAccount(t, "/api/it/user", bobToken, fiber.Map{
		"username": "erin", "email": "erin@example.com", "password": "erin-secret",
	})
	erinToken := s.login(t, "erin@example.com", "erin-secret")
	ticketID := s.createAccount(t, "/api/tickets", erinToken, fiber.Map{"title": "VPN drops", "category": "NETWORK", "priority": "HIGH"})

	status, env := s.do(t, http.MethodPost, "/api/tickets/"+ticketID+"/assign", adminToken, fiber.Map{"assignedTo": bobID})
	require.Equal(t, http.StatusOK, status, "%+v", env.Error)
	assert.Contains(t, string(env.Data), `"status":"OPEN"`)

	status, env = s.do(t, http.MethodPost, "/api/it/tickets/"+ticketID+"/notes", bobToken, fiber.Map{"note": "rebooted router"})
	require.Equal(t, http.StatusCreated, status, "%+v", env.Error)

	status, env = s.do(t, http.MethodPut, "/api/it/tickets/"+ticketID+"/close", bobToken, nil)
	require.Equal(t, http.StatusOK, status, "%+v", env.Error)
	assert.Contains(t, string(env.Data), `"status":"SOLVED"`)

	status, env = s.do(t, http.MethodGet, "/api/tickets/"+ticketID+"/notes", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "rebooted router")

	status, _ = s.do(t, http.MethodGet, "/api/dashboard/stats", adminToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAuthenticationVersusAuthorization(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodGet, "/api/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)

	status, _ = s.do(t, http.MethodGet, "/api/admin/users", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	s.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "alice", "email": "alice@example.com", "password": "alice-secret",
	})
	token := s.login(t, "alice@example.com", "alice-secret")

	status, env = s.do(t, http.MethodGet, "/api/admin/users", token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, apperrors.CodeForbidden, env.Error.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, ownerEmail, ownerPassword)

	status, _ := s.do(t, http.MethodGet, "/api/system/reports", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = s.do(t, http.MethodGet, "/api/system/reports", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRequestIDAndMetrics(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "req-42")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "req-42", resp.Header.Get("X-Request-ID"))

	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	s.do(t, http.MethodGet, "/api/tickets", "", nil)
	snapshot := s.metrics.Snapshot()
	assert.NotEmpty(t, snapshot.Requests)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	s := newTestServer(t)
	status, env := s.do(t, http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, apperrors.CodeNotFound, env.Error.Code)
}
