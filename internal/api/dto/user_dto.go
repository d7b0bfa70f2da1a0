package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// RegisterRequest payload for self-registration.
type RegisterRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Role     string  `json:"role"`
	Location *string `json:"location" validate:"omitempty,max=100"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// CreateUserRequest payload for accounts created by a higher-ranked actor.
// The role comes from the route.
type CreateUserRequest struct {
	Username     string     `json:"username" validate:"required,min=3,max=50"`
	Email        string     `json:"email" validate:"required,email"`
	Password     string     `json:"password" validate:"required,min=6"`
	Location     *string    `json:"location" validate:"omitempty,max=100"`
	BusinessType *string    `json:"businessType" validate:"omitempty,oneof=SMALL MEDIUM LARGE"`
	ExpiryDate   *time.Time `json:"expiryDate"`
}

// Input converts the payload for role.
func (r CreateUserRequest) Input(role domain.Role) service.CreateUserInput {
	in := service.CreateUserInput{
		Username:   r.Username,
		Email:      r.Email,
		Password:   r.Password,
		Role:       role,
		Location:   r.Location,
		ExpiryDate: r.ExpiryDate,
	}
	if r.BusinessType != nil {
		bt := domain.BusinessType(*r.BusinessType)
		in.BusinessType = &bt
	}
	return in
}

// UpdateProfileRequest carries optional profile changes.
type UpdateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Location *string `json:"location" validate:"omitempty,max=100"`
}

// Input converts the payload.
func (r UpdateProfileRequest) Input() service.ProfileInput {
	return service.ProfileInput{Username: r.Username, Email: r.Email, Password: r.Password, Location: r.Location}
}

// ChangeRoleRequest payload.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// BusinessTypeRequest payload.
type BusinessTypeRequest struct {
	BusinessType string `json:"businessType" validate:"required,oneof=SMALL MEDIUM LARGE"`
}

// ExpiryRequest payload.
type ExpiryRequest struct {
	ExpiryDate time.Time `json:"expiryDate" validate:"required"`
}

// UserResponse never exposes the password hash.
type UserResponse struct {
	ID           string               `json:"id"`
	Username     string               `json:"username"`
	Email        string               `json:"email"`
	Role         domain.Role          `json:"role"`
	Location     *string              `json:"location"`
	BusinessType *domain.BusinessType `json:"businessType,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// NewUserResponse maps a user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Role:         u.Role,
		Location:     u.Location,
		BusinessType: u.BusinessType,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// NewUserResponses maps users.
func NewUserResponses(users []domain.User) []UserResponse {
	items := make([]UserResponse, 0, len(users))
	for i := range users {
		items = append(items, NewUserResponse(&users[i]))
	}
	return items
}

var roleGroupKeys = map[domain.Role]string{
	domain.RoleAdmin:    "admins",
	domain.RoleITPerson: "itPersons",
	domain.RoleUser:     "users",
}

// NewGroupedUsersResponse keys role groups as admins, itPersons and users.
func NewGroupedUsersResponse(grouped map[domain.Role][]domain.User) map[string][]UserResponse {
	out := make(map[string][]UserResponse, len(grouped))
	for role, users := range grouped {
		key, ok := roleGroupKeys[role]
		if !ok {
			key = string(role)
		}
		out[key] = NewUserResponses(users)
	}
	return out
}

// AccountResponse is a SUPER_ADMIN subscription record.
type AccountResponse struct {
	UserID     string    `json:"userId"`
	ExpiryDate time.Time `json:"expiryDate"`
}

// NewAccountResponse maps an account.
func NewAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{UserID: a.UserID, ExpiryDate: a.ExpiryDate}
}

// ScopedCreateUserRequest lets the caller pick the role of the new account.
type ScopedCreateUserRequest struct {
	CreateUserRequest
	Role string `json:"role" validate:"required"`
}
