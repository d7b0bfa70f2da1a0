package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

var testAuthConfig = config.AuthConfig{
	JWTSecret:             "test-secret",
	AccessTokenTTLMinutes: 60,
	BcryptCost:            bcrypt.MinCost,
	SuperAdminTrialDays:   30,
}

type harness struct {
	ctx         context.Context
	store       *repository.Store
	clock       *fakeClock
	revocations *memory.RevocationStore
	dispatcher  events.Dispatcher
	auth        *AuthService
	users       *UserService
	tickets     *TicketService
	dashboard   *DashboardService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		ctx:         context.Background(),
		store:       memory.NewStore(),
		clock:       &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		revocations: memory.NewRevocationStore(),
		dispatcher:  events.NewInMemoryDispatcher(nil),
	}
	recorder := NewAuditRecorder(h.store.Audit, nil, h.clock.Now)
	h.auth = NewAuthService(testAuthConfig, AuthDependencies{
		UserRepo:    h.store.Users,
		AccountRepo: h.store.Accounts,
		LoginRepo:   h.store.Logins,
		Revocations: h.revocations,
		Audit:       recorder,
		Clock:       h.clock.Now,
	})
	h.users = NewUserService(testAuthConfig, UserDependencies{
		UserRepo:    h.store.Users,
		AccountRepo: h.store.Accounts,
		AuditRepo:   h.store.Audit,
		LoginRepo:   h.store.Logins,
		Audit:       recorder,
		Clock:       h.clock.Now,
	})
	h.tickets = NewTicketService(TicketDependencies{
		TicketRepo: h.store.Tickets,
		NoteRepo:   h.store.Notes,
		UserRepo:   h.store.Users,
		Audit:      recorder,
		Dispatcher: h.dispatcher,
		Clock:      h.clock.Now,
	})
	h.dashboard = NewDashboardService(DashboardDependencies{
		TicketRepo:  h.store.Tickets,
		UserRepo:    h.store.Users,
		AccountRepo: h.store.Accounts,
		StatsRepo:   h.store.Stats,
		AuditRepo:   h.store.Audit,
		LoginRepo:   h.store.Logins,
		Clock:       h.clock.Now,
	})
	return h
}

// seed stores a user directly and returns it as an authenticated caller.
func (h *harness) seed(t *testing.T, role domain.Role, username string) *auth.Principal {
	t.Helper()
	user, err := createIdentity(h.ctx, h.store.Users, bcrypt.MinCost, h.clock.Now(), newIdentity{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret-" + username,
		Role:     role,
	})
	require.NoError(t, err)
	h.clock.Advance(time.Second)
	return &auth.Principal{UserID: user.ID, Role: user.Role, User: user}
}

func (h *harness) seedSuperAdmin(t *testing.T, username string, expiry time.Time) *auth.Principal {
	t.Helper()
	p := h.seed(t, domain.RoleSuperAdmin, username)
	require.NoError(t, h.store.Accounts.Create(h.ctx, &domain.Account{UserID: p.UserID, ExpiryDate: expiry}))
	return p
}

func (h *harness) fileTicket(t *testing.T, owner *auth.Principal, title string) *domain.Ticket {
	t.Helper()
	ticket, err := h.tickets.Create(h.ctx, owner, TicketInput{Title: title, Description: "details", Category: domain.TicketCategoryHardware})
	require.NoError(t, err)
	h.clock.Advance(time.Second)
	return ticket
}

func (h *harness) auditActions(t *testing.T, actorID string) []domain.AuditAction {
	t.Helper()
	entries, err := h.store.Audit.ListByUser(h.ctx, actorID)
	require.NoError(t, err)
	actions := make([]domain.AuditAction, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	return actions
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperrors.HasCode(err, code), "expected %s, got %v", code, err)
}
