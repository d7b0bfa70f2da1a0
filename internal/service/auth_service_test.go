package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	h := newHarness(t)

	user, err := h.auth.Register(h.ctx, RegisterInput{Username: "alice", Email: "Alice@Example.com", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "pw1", user.PasswordHash)

	result, err := h.auth.Login(h.ctx, LoginInput{Email: "alice@example.com", Password: "pw1", IPAddress: "10.0.0.7", UserAgent: "curl"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.User.ID)

	principal, err := h.auth.Verify(h.ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, domain.RoleUser, principal.Role)

	logins, err := h.store.Logins.ListByUser(h.ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, logins, 1)
	assert.Equal(t, "10.0.0.7", logins[0].IPAddress)

	assert.ElementsMatch(t, []domain.AuditAction{domain.AuditUserRegistered, domain.AuditUserLoggedIn}, h.auditActions(t, user.ID))
}

func TestAuthService_RegisterDuplicateByEitherField(t *testing.T) {
	h := newHarness(t)
	_, err := h.auth.Register(h.ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = h.auth.Register(h.ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "pw"})
	requireCode(t, err, apperrors.CodeDuplicateIdentity)

	_, err = h.auth.Register(h.ctx, RegisterInput{Username: "alice2", Email: "ALICE@example.com", Password: "pw"})
	requireCode(t, err, apperrors.CodeDuplicateIdentity)
}

func TestAuthService_RegisterRejectsElevatedRole(t *testing.T) {
	h := newHarness(t)
	_, err := h.auth.Register(h.ctx, RegisterInput{Username: "eve", Email: "eve@example.com", Password: "pw", Role: domain.RoleAdmin})
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestAuthService_LoginBadCredentials(t *testing.T) {
	h := newHarness(t)
	h.seed(t, domain.RoleUser, "alice")

	_, err := h.auth.Login(h.ctx, LoginInput{Email: "alice@example.com", Password: "wrong"})
	requireCode(t, err, apperrors.CodeInvalidCredentials)

	_, err = h.auth.Login(h.ctx, LoginInput{Email: "nobody@example.com", Password: "secret-alice"})
	requireCode(t, err, apperrors.CodeInvalidCredentials)
}

func TestAuthService_LoginUnknownEmailStillComparesHash(t *testing.T) {
	h := newHarness(t)
	h.seed(t, domain.RoleUser, "alice")

	var hashes []string
	h.auth.compare = func(hashed, plain string) error {
		hashes = append(hashes, hashed)
		return auth.ComparePassword(hashed, plain)
	}

	_, err := h.auth.Login(h.ctx, LoginInput{Email: "nobody@example.com", Password: "secret-alice"})
	requireCode(t, err, apperrors.CodeInvalidCredentials)
	require.Len(t, hashes, 1)
	assert.Equal(t, h.auth.dummyHash, hashes[0])
	assert.NotEmpty(t, hashes[0])

	_, err = h.auth.Login(h.ctx, LoginInput{Email: "alice@example.com", Password: "wrong"})
	requireCode(t, err, apperrors.CodeInvalidCredentials)
	require.Len(t, hashes, 2)
	assert.NotEqual(t, h.auth.dummyHash, hashes[1])
}

func TestAuthService_LoginExpiresLapsedSuperAdmin(t *testing.T) {
	h := newHarness(t)
	sa := h.seedSuperAdmin(t, "acme", h.clock.Now().Add(-time.Hour))

	_, err := h.auth.Login(h.ctx, LoginInput{Email: "acme@example.com", Password: "secret-acme"})
	requireCode(t, err, apperrors.CodeAccountExpired)

	stored, err := h.store.Users.GetByID(h.ctx, sa.UserID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleExpired, stored.Role)

	_, err = h.auth.Login(h.ctx, LoginInput{Email: "acme@example.com", Password: "secret-acme"})
	requireCode(t, err, apperrors.CodeAccountExpired)
}

func TestAuthService_CheckAndApplyExpiry(t *testing.T) {
	h := newHarness(t)
	now := h.clock.Now()

	valid := h.seedSuperAdmin(t, "valid", now.Add(24*time.Hour))
	boundary := h.seedSuperAdmin(t, "boundary", now)
	noAccount := h.seed(t, domain.RoleSuperAdmin, "noaccount")
	plain := h.seed(t, domain.RoleUser, "plain")
	expired := h.seed(t, domain.RoleExpired, "expired")

	tests := []struct {
		name    string
		userID  string
		wantErr bool
		role    domain.Role
	}{
		{name: "future expiry", userID: valid.UserID, role: domain.RoleSuperAdmin},
		{name: "expiry equal to now", userID: boundary.UserID, role: domain.RoleSuperAdmin},
		{name: "no account record", userID: noAccount.UserID, role: domain.RoleSuperAdmin},
		{name: "non super admin", userID: plain.UserID, role: domain.RoleUser},
		{name: "already expired", userID: expired.UserID, wantErr: true, role: domain.RoleExpired},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			user, err := h.store.Users.GetByID(h.ctx, tc.userID)
			require.NoError(t, err)
			err = h.auth.CheckAndApplyExpiry(h.ctx, user, now)
			if tc.wantErr {
				requireCode(t, err, apperrors.CodeAccountExpired)
			} else {
				require.NoError(t, err)
			}
			stored, err := h.store.Users.GetByID(h.ctx, tc.userID)
			require.NoError(t, err)
			assert.Equal(t, tc.role, stored.Role)
		})
	}
}

func TestAuthService_VerifyUsesLiveRole(t *testing.T) {
	h := newHarness(t)
	h.seed(t, domain.RoleAdmin, "boss")

	result, err := h.auth.Login(h.ctx, LoginInput{Email: "boss@example.com", Password: "secret-boss"})
	require.NoError(t, err)

	user := result.User
	user.Role = domain.RoleUser
	require.NoError(t, h.store.Users.Update(h.ctx, user))

	principal, err := h.auth.Verify(h.ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, principal.Role)
	assert.Equal(t, domain.RoleAdmin, principal.Claims.Role)
}

func TestAuthService_VerifyRejectsDeletedUser(t *testing.T) {
	h := newHarness(t)
	p := h.seed(t, domain.RoleUser, "gone")
	result, err := h.auth.Login(h.ctx, LoginInput{Email: "gone@example.com", Password: "secret-gone"})
	require.NoError(t, err)

	require.NoError(t, h.store.Users.Delete(h.ctx, p.UserID))

	_, err = h.auth.Verify(h.ctx, result.Token)
	requireCode(t, err, apperrors.CodeInvalidToken)
}

func TestAuthService_LogoutRevokesToken(t *testing.T) {
	h := newHarness(t)
	h.seed(t, domain.RoleUser, "alice")
	result, err := h.auth.Login(h.ctx, LoginInput{Email: "alice@example.com", Password: "secret-alice"})
	require.NoError(t, err)

	require.NoError(t, h.auth.Logout(h.ctx, result.Token))

	_, err = h.auth.Verify(h.ctx, result.Token)
	requireCode(t, err, apperrors.CodeInvalidToken)
}

func TestAuthService_VerifyGarbageToken(t *testing.T) {
	h := newHarness(t)
	_, err := h.auth.Verify(h.ctx, "not-a-token")
	requireCode(t, err, apperrors.CodeInvalidToken)
}

func TestAuthService_EnsureSystemOwner(t *testing.T) {
	h := newHarness(t)
	cfg := config.BootstrapConfig{OwnerEmail: "owner@example.com", OwnerUsername: "owner", OwnerPassword: "pw"}

	owner, created, err := h.auth.EnsureSystemOwner(h.ctx, cfg)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.RoleSystemOwner, owner.Role)

	again, created, err := h.auth.EnsureSystemOwner(h.ctx, cfg)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, owner.ID, again.ID)
}
