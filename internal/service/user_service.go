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

// UserService manages accounts below the caller in the role hierarchy.
type UserService struct {
	users      repository.UserRepository
	accounts   repository.AccountRepository
	auditLogs  repository.AuditRepository
	logins     repository.LoginHistoryRepository
	audit      *AuditRecorder
	bcryptCost int
	trial      time.Duration
	logger     *zap.Logger
	now        Clock
}

// UserDependencies encapsulates repositories required for account management.
type UserDependencies struct {
	UserRepo    repository.UserRepository
	AccountRepo repository.AccountRepository
	AuditRepo   repository.AuditRepository
	LoginRepo   repository.LoginHistoryRepository
	Audit       *AuditRecorder
	Logger      *zap.Logger
	Clock       Clock
}

// CreateUserInput describes an account created by a higher-ranked actor.
// BusinessType is required for SUPER_ADMIN; ExpiryDate defaults to the trial.
type CreateUserInput struct {
	Username     string
	Email        string
	Password     string
	Role         domain.Role
	Location     *string
	BusinessType *domain.BusinessType
	ExpiryDate   *time.Time
}

// ProfileInput carries optional profile changes.
type ProfileInput struct {
	Username *string
	Email    *string
	Password *string
	Location *string
}

// NewUserService constructs the service.
func NewUserService(cfg config.AuthConfig, deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      deps.UserRepo,
		accounts:   deps.AccountRepo,
		auditLogs:  deps.AuditRepo,
		logins:     deps.LoginRepo,
		audit:      deps.Audit,
		bcryptCost: cfg.BcryptCost,
		trial:      cfg.SuperAdminTrial(),
		logger:     logger,
		now:        clockOrDefault(deps.Clock),
	}
}

var roleLabels = map[domain.Role]string{
	domain.RoleSystemOwner: "System Owner",
	domain.RoleSuperAdmin:  "Super Admin",
	domain.RoleAdmin:       "Admin",
	domain.RoleITPerson:    "IT Person",
	domain.RoleUser:        "User",
	domain.RoleExpired:     "Expired Super Admin",
}

func createdAction(role domain.Role) domain.AuditAction {
	switch role {
	case domain.RoleSuperAdmin:
		return domain.AuditSuperAdminCreated
	case domain.RoleAdmin:
		return domain.AuditAdminCreated
	default:
		return domain.AuditUserCreated
	}
}

func deletedAction(role domain.Role) domain.AuditAction {
	switch role {
	case domain.RoleSuperAdmin, domain.RoleExpired:
		return domain.AuditSuperAdminDeleted
	case domain.RoleAdmin:
		return domain.AuditAdminDeleted
	default:
		return domain.AuditUserDeleted
	}
}

// CreateUser creates an account one step below the actor.
func (s *UserService) CreateUser(ctx context.Context, actor *auth.Principal, input CreateUserInput) (*domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}
	if !auth.CanCreateRole(actor.Role, input.Role) {
		return nil, apperrors.NewForbidden(fmt.Sprintf("%s cannot create %s accounts", actor.Role, input.Role))
	}

	var businessType *domain.BusinessType
	if input.Role == domain.RoleSuperAdmin {
		if input.BusinessType == nil || !input.BusinessType.Valid() {
			return nil, apperrors.NewValidationError("businessType must be SMALL, MEDIUM or LARGE", nil)
		}
		businessType = input.BusinessType
	}

	now := s.now()
	user, err := createIdentity(ctx, s.users, s.bcryptCost, now, newIdentity{
		Username:     input.Username,
		Email:        input.Email,
		Password:     input.Password,
		Role:         input.Role,
		Location:     input.Location,
		BusinessType: businessType,
	})
	if err != nil {
		return nil, err
	}

	if input.Role == domain.RoleSuperAdmin {
		expiry := now.Add(s.trial)
		if input.ExpiryDate != nil {
			expiry = *input.ExpiryDate
		}
		account := &domain.Account{UserID: user.ID, ExpiryDate: expiry, CreatedAt: now}
		if err := s.accounts.Create(ctx, account); err != nil {
			return nil, storeError(err, "account", nil)
		}
	}

	s.audit.Record(ctx, actor.UserID, createdAction(input.Role),
		fmt.Sprintf("%s created %s: %s", roleLabels[actor.Role], roleLabels[input.Role], user.Username))
	return user, nil
}

// DeleteUser removes an account the actor outranks. When expect is given the
// target must hold one of those roles, otherwise it is reported as not found.
func (s *UserService) DeleteUser(ctx context.Context, actor *auth.Principal, userID string, expect ...domain.Role) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return storeError(err, "user", map[string]any{"user_id": userID})
	}
	if len(expect) > 0 && !auth.CanAccessRoute(target.Role, expect...) {
		return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
	}
	if !auth.CanDeleteRole(actor.Role, target.Role) {
		return apperrors.NewForbidden(fmt.Sprintf("%s cannot delete %s accounts", actor.Role, target.Role))
	}

	if target.Role == domain.RoleSuperAdmin || target.Role == domain.RoleExpired {
		if err := s.accounts.DeleteByUserID(ctx, target.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return apperrors.MapError(err)
		}
	}
	if err := s.users.Delete(ctx, target.ID); err != nil {
		return storeError(err, "user", map[string]any{"user_id": userID})
	}

	s.audit.Record(ctx, actor.UserID, deletedAction(target.Role),
		fmt.Sprintf("%s deleted %s: %s", roleLabels[actor.Role], roleLabels[target.Role], target.Username))
	return nil
}

// UpdateSuperAdminExpiry moves a SUPER_ADMIN's account expiry. Extending an
// EXPIRED account into the future reinstates the SUPER_ADMIN role.
func (s *UserService) UpdateSuperAdminExpiry(ctx context.Context, actor *auth.Principal, userID string, expiry time.Time) (*domain.Account, error) {
	if err := requireRole(actor, domain.RoleSystemOwner); err != nil {
		return nil, err
	}
	if expiry.IsZero() {
		return nil, apperrors.NewValidationError("expiryDate is required", nil)
	}
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user", map[string]any{"user_id": userID})
	}
	if target.Role != domain.RoleSuperAdmin && target.Role != domain.RoleExpired {
		return nil, apperrors.NewNotFound("super admin", map[string]any{"user_id": userID})
	}

	now := s.now()
	account, err := s.accounts.GetByUserID(ctx, target.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		account = &domain.Account{UserID: target.ID, ExpiryDate: expiry, CreatedAt: now}
		if err := s.accounts.Create(ctx, account); err != nil {
			return nil, storeError(err, "account", nil)
		}
	case err != nil:
		return nil, apperrors.MapError(err)
	default:
		account.ExpiryDate = expiry
		if err := s.accounts.Update(ctx, account); err != nil {
			return nil, storeError(err, "account", nil)
		}
	}

	if target.Role == domain.RoleExpired && !account.Expired(now) {
		target.Role = domain.RoleSuperAdmin
		target.UpdatedAt = now
		if err := s.users.Update(ctx, target); err != nil {
			return nil, storeError(err, "user", nil)
		}
		s.logger.Info("super admin reinstated", zap.String("user_id", target.ID))
	}

	s.audit.Record(ctx, actor.UserID, domain.AuditSuperAdminExpiryUpdated,
		fmt.Sprintf("Expiry for %s set to %s", target.Username, expiry.Format(time.RFC3339)))
	return account, nil
}

// ChangeRole moves an account between ADMIN, IT_PERSON and USER.
func (s *UserService) ChangeRole(ctx context.Context, actor *auth.Principal, userID string, role domain.Role) (*domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user", map[string]any{"user_id": userID})
	}
	if !auth.CanAssignRole(actor.Role, target.Role, role) {
		return nil, apperrors.NewForbidden(fmt.Sprintf("%s cannot move %s to %s", actor.Role, target.Role, role))
	}
	if target.Role == role {
		return target, nil
	}

	old := target.Role
	target.Role = role
	target.UpdatedAt = s.now()
	if err := s.users.Update(ctx, target); err != nil {
		return nil, storeError(err, "user", nil)
	}
	s.audit.Record(ctx, actor.UserID, domain.AuditUserRoleChanged,
		fmt.Sprintf("Role of %s changed from %s to %s", target.Username, old, role))
	return target, nil
}

// UpdateProfile edits the caller's own profile. ADMIN and SUPER_ADMIN may
// also edit accounts below them in the hierarchy.
func (s *UserService) UpdateProfile(ctx context.Context, actor *auth.Principal, userID string, input ProfileInput) (*domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if actor.UserID != userID && !auth.CanAccessRoute(actor.Role, domain.RoleAdmin, domain.RoleSuperAdmin) {
		return nil, apperrors.NewForbidden("cannot edit another user's profile")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user", map[string]any{"user_id": userID})
	}
	if actor.UserID != userID && !auth.CanManageRole(actor.Role, user.Role) {
		return nil, apperrors.NewForbidden(fmt.Sprintf("%s cannot edit a %s profile", actor.Role, user.Role))
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, apperrors.NewValidationError("username cannot be empty", nil)
		}
		if err := s.ensureUnclaimed(ctx, user.ID, s.users.GetByUsername, username); err != nil {
			return nil, err
		}
		user.Username = username
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return nil, apperrors.NewValidationError("email cannot be empty", nil)
		}
		if err := s.ensureUnclaimed(ctx, user.ID, s.users.GetByEmail, email); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if input.Password != nil {
		if *input.Password == "" {
			return nil, apperrors.NewValidationError("password cannot be empty", nil)
		}
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}
	if input.Location != nil {
		user.Location = input.Location
	}

	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, storeError(err, "user", nil)
	}
	s.audit.Record(ctx, actor.UserID, domain.AuditUserUpdated, fmt.Sprintf("Profile of %s updated", user.Username))
	return user, nil
}

func (s *UserService) ensureUnclaimed(ctx context.Context, selfID string, lookup func(context.Context, string) (*domain.User, error), value string) error {
	other, err := lookup(ctx, value)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return apperrors.MapError(err)
	case other.ID != selfID:
		return apperrors.NewDuplicateIdentity()
	}
	return nil
}

// UpdateBusinessType sets the organisation size of an account managed by the
// calling ADMIN.
func (s *UserService) UpdateBusinessType(ctx context.Context, actor *auth.Principal, userID string, businessType domain.BusinessType) (*domain.User, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if !businessType.Valid() {
		return nil, apperrors.NewValidationError("businessType must be SMALL, MEDIUM or LARGE", nil)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user", map[string]any{"user_id": userID})
	}
	if !auth.CanManageRole(actor.Role, user.Role) {
		return nil, apperrors.NewForbidden(fmt.Sprintf("%s cannot edit a %s account", actor.Role, user.Role))
	}
	user.BusinessType = &businessType
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, storeError(err, "user", nil)
	}
	s.audit.Record(ctx, actor.UserID, domain.AuditUserBusinessTypeUpdated,
		fmt.Sprintf("Business type of %s set to %s", user.Username, businessType))
	return user, nil
}

// Get returns one account. Callers other than admins may only read themselves.
func (s *UserService) Get(ctx context.Context, actor *auth.Principal, userID string) (*domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if actor.UserID != userID && !auth.CanAccessRoute(actor.Role, domain.RoleSystemOwner, domain.RoleSuperAdmin, domain.RoleAdmin) {
		return nil, apperrors.NewForbidden("access denied")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user", map[string]any{"user_id": userID})
	}
	return user, nil
}

// List returns every account, newest first.
func (s *UserService) List(ctx context.Context, actor *auth.Principal) ([]domain.User, error) {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleSuperAdmin); err != nil {
		return nil, err
	}
	return s.list(ctx, repository.UserFilter{})
}

// ListByRole returns accounts holding role.
func (s *UserService) ListByRole(ctx context.Context, actor *auth.Principal, role domain.Role) ([]domain.User, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}
	return s.list(ctx, repository.UserFilter{Roles: []domain.Role{role}})
}

// ListByBusinessType returns accounts of one organisation size.
func (s *UserService) ListByBusinessType(ctx context.Context, actor *auth.Principal, businessType domain.BusinessType) ([]domain.User, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if !businessType.Valid() {
		return nil, apperrors.NewValidationError("businessType must be SMALL, MEDIUM or LARGE", nil)
	}
	return s.list(ctx, repository.UserFilter{BusinessType: &businessType})
}

// ListUnder groups the accounts the actor may see by role.
func (s *UserService) ListUnder(ctx context.Context, actor *auth.Principal) (map[domain.Role][]domain.User, error) {
	if err := requireRole(actor, domain.RoleSystemOwner, domain.RoleSuperAdmin, domain.RoleAdmin); err != nil {
		return nil, err
	}
	visible := auth.VisibleRoles(actor.Role)
	users, err := s.list(ctx, repository.UserFilter{Roles: visible})
	if err != nil {
		return nil, err
	}
	grouped := make(map[domain.Role][]domain.User, len(visible))
	for _, role := range visible {
		grouped[role] = []domain.User{}
	}
	for _, user := range users {
		grouped[user.Role] = append(grouped[user.Role], user)
	}
	return grouped, nil
}

// AuditLogs returns the audit trail attributed to userID, newest first.
func (s *UserService) AuditLogs(ctx context.Context, actor *auth.Principal, userID string) ([]domain.AuditLog, error) {
	if err := requireRole(actor, domain.RoleSystemOwner, domain.RoleSuperAdmin, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, storeError(err, "user", map[string]any{"user_id": userID})
	}
	logs, err := s.auditLogs.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if logs == nil {
		logs = []domain.AuditLog{}
	}
	return logs, nil
}

// LoginHistory returns the logins of userID, newest first.
func (s *UserService) LoginHistory(ctx context.Context, actor *auth.Principal, userID string) ([]domain.LoginHistory, error) {
	if err := requireRole(actor, domain.RoleSystemOwner, domain.RoleSuperAdmin, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, storeError(err, "user", map[string]any{"user_id": userID})
	}
	entries, err := s.logins.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if entries == nil {
		entries = []domain.LoginHistory{}
	}
	return entries, nil
}

func (s *UserService) list(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}
