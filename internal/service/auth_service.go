package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AuthService coordinates registration, login and token verification.
type AuthService struct {
	users       repository.UserRepository
	accounts    repository.AccountRepository
	logins      repository.LoginHistoryRepository
	revocations repository.TokenRevocationStore
	audit       *AuditRecorder
	tokenMgr    *auth.TokenManager
	bcryptCost  int
	dummyHash   string
	compare     func(hashed, plain string) error
	logger      *zap.Logger
	now         Clock
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	AccountRepo repository.AccountRepository
	LoginRepo   repository.LoginHistoryRepository
	Revocations repository.TokenRevocationStore
	Audit       *AuditRecorder
	Logger      *zap.Logger
	Clock       Clock
}

// RegisterInput is a self-registration request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
	Location *string
}

// LoginInput carries credentials plus request metadata for login history.
type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	// Unknown emails are compared against this hash so both failure paths
	// cost one bcrypt comparison.
	dummyHash, err := auth.HashPassword("helpdesk-unknown-account", cfg.BcryptCost)
	if err != nil {
		logger.Warn("dummy password hash unavailable", zap.Error(err))
	}
	return &AuthService{
		users:       deps.UserRepo,
		accounts:    deps.AccountRepo,
		logins:      deps.LoginRepo,
		revocations: deps.Revocations,
		audit:       deps.Audit,
		tokenMgr:    auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL()),
		bcryptCost:  cfg.BcryptCost,
		dummyHash:   dummyHash,
		compare:     auth.ComparePassword,
		logger:      logger,
		now:         clockOrDefault(deps.Clock),
	}
}

// Register creates a USER account. Elevated roles are only created through
// account management by a higher-ranked actor.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if input.Role != "" && input.Role != domain.RoleUser {
		return nil, apperrors.NewForbidden("self-registration is limited to USER accounts")
	}
	user, err := createIdentity(ctx, s.users, s.bcryptCost, s.now(), newIdentity{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Role:     domain.RoleUser,
		Location: input.Location,
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, user.ID, domain.AuditUserRegistered, fmt.Sprintf("User %s registered", user.Username))
	return user, nil
}

// newIdentity describes an account to be stored.
type newIdentity struct {
	Username     string
	Email        string
	Password     string
	Role         domain.Role
	Location     *string
	BusinessType *domain.BusinessType
}

// createIdentity enforces unique username and email, hashes the password and
// stores the user. The store constraint backs up the pre-check under races.
func createIdentity(ctx context.Context, users repository.UserRepository, cost int, now time.Time, in newIdentity) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return nil, apperrors.NewValidationError("username, email and password are required", nil)
	}

	exists, err := users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if exists {
		return nil, apperrors.NewDuplicateIdentity()
	}

	hash, err := auth.HashPassword(in.Password, cost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
		Location:     in.Location,
		BusinessType: in.BusinessType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, storeError(err, "user", nil)
	}
	return user, nil
}

// Login authenticates by email and password and issues a session token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = s.compare(s.dummyHash, input.Password)
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.MapError(err)
	}
	if err := s.compare(user.PasswordHash, input.Password); err != nil {
		return nil, apperrors.NewInvalidCredentials()
	}

	if err := s.CheckAndApplyExpiry(ctx, user, s.now()); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.recordLogin(ctx, user.ID, input.IPAddress, input.UserAgent)
	s.audit.Record(ctx, user.ID, domain.AuditUserLoggedIn, fmt.Sprintf("User %s logged in", user.Username))

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// CheckAndApplyExpiry is the lazy expiry step of login. A SUPER_ADMIN whose
// account lapsed before now is persisted as EXPIRED and the call fails with
// AccountExpired; an already EXPIRED user fails the same way.
func (s *AuthService) CheckAndApplyExpiry(ctx context.Context, user *domain.User, now time.Time) error {
	switch user.Role {
	case domain.RoleExpired:
		return apperrors.NewAccountExpired()
	case domain.RoleSuperAdmin:
	default:
		return nil
	}

	account, err := s.accounts.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("super admin without account record", zap.String("user_id", user.ID))
			return nil
		}
		return apperrors.MapError(err)
	}
	if !account.Expired(now) {
		return nil
	}

	user.Role = domain.RoleExpired
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	s.logger.Info("super admin account expired",
		zap.String("user_id", user.ID),
		zap.Time("expiry_date", account.ExpiryDate),
	)
	return apperrors.NewAccountExpired()
}

// Verify validates a bearer token and resolves the caller with the role
// currently stored, not the one embedded in the token.
func (s *AuthService) Verify(ctx context.Context, token string) (*auth.Principal, error) {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, apperrors.NewTokenExpired()
		}
		return nil, apperrors.NewInvalidToken(err)
	}

	if s.revocations != nil && claims.TokenID() != "" {
		revoked, err := s.revocations.IsRevoked(ctx, claims.TokenID())
		if err != nil {
			s.logger.Warn("token revocation lookup failed", zap.Error(err))
		} else if revoked {
			return nil, apperrors.NewInvalidToken(errors.New("token revoked"))
		}
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewInvalidToken(errors.New("user no longer exists"))
		}
		return nil, apperrors.MapError(err)
	}

	return &auth.Principal{
		UserID: user.ID,
		Role:   user.Role,
		User:   user,
		Claims: claims,
	}, nil
}

// Logout revokes the token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		// an expired or malformed token is already unusable
		return nil
	}
	if s.revocations == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revocations.Revoke(ctx, claims.TokenID(), ttl); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// EnsureSystemOwner creates the first SYSTEM_OWNER if none exists yet.
func (s *AuthService) EnsureSystemOwner(ctx context.Context, cfg config.BootstrapConfig) (*domain.User, bool, error) {
	owners, err := s.users.List(ctx, repository.UserFilter{Roles: []domain.Role{domain.RoleSystemOwner}, Limit: 1})
	if err != nil {
		return nil, false, apperrors.MapError(err)
	}
	if len(owners) > 0 {
		return &owners[0], false, nil
	}
	user, err := createIdentity(ctx, s.users, s.bcryptCost, s.now(), newIdentity{
		Username: cfg.OwnerUsername,
		Email:    cfg.OwnerEmail,
		Password: cfg.OwnerPassword,
		Role:     domain.RoleSystemOwner,
	})
	if err != nil {
		return nil, false, err
	}
	s.logger.Info("system owner created", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return user, true, nil
}

func (s *AuthService) recordLogin(ctx context.Context, userID, ip, userAgent string) {
	if s.logins == nil {
		return
	}
	entry := &domain.LoginHistory{
		UserID:     userID,
		IPAddress:  ip,
		DeviceInfo: userAgent,
		CreatedAt:  s.now(),
	}
	if err := s.logins.Create(ctx, entry); err != nil {
		s.logger.Warn("login history write failed", zap.String("user_id", userID), zap.Error(err))
	}
}
