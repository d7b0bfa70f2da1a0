package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Principal), args.Error(1)
}

func newTestApp(verifier Verifier, allowed ...domain.Role) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"code": de.Code})
		},
	})
	mw := NewAuthMiddleware(verifier)
	app.Get("/guarded", mw.Handle, RequireRoles(allowed...), func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.SendString(principal.UserID)
	})
	return app
}

func TestAuthMiddleware_MissingHeaderIs401(t *testing.T) {
	app := newTestApp(new(MockVerifier), domain.RoleAdmin)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_MalformedHeaderIs401(t *testing.T) {
	app := newTestApp(new(MockVerifier), domain.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Basic abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_WrongRoleIs403(t *testing.T) {
	verifier := new(MockVerifier)
	verifier.On("Verify", mock.Anything, "tok").
		Return(&Principal{UserID: "u1", Role: domain.RoleUser}, nil)
	app := newTestApp(verifier, domain.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer tok")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	verifier.AssertExpectations(t)
}

func TestAuthMiddleware_VerifierErrorPropagates(t *testing.T) {
	verifier := new(MockVerifier)
	verifier.On("Verify", mock.Anything, "tok").Return(nil, apperrors.NewTokenExpired())
	app := newTestApp(verifier, domain.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer tok")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_Allowed(t *testing.T) {
	verifier := new(MockVerifier)
	verifier.On("Verify", mock.Anything, "tok").
		Return(&Principal{UserID: "u1", Role: domain.RoleAdmin}, nil)
	app := newTestApp(verifier, domain.RoleAdmin, domain.RoleITPerson)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "bearer tok")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
