package domain

import "time"

// Role enumerates the account hierarchy, from SYSTEM_OWNER down to USER.
// EXPIRED marks a SUPER_ADMIN whose account lapsed.
type Role string

const (
	RoleSystemOwner Role = "SYSTEM_OWNER"
	RoleSuperAdmin  Role = "SUPER_ADMIN"
	RoleAdmin       Role = "ADMIN"
	RoleITPerson    Role = "IT_PERSON"
	RoleUser        Role = "USER"
	RoleExpired     Role = "EXPIRED"
)

// AllRoles lists every role, highest first.
var AllRoles = []Role{RoleSystemOwner, RoleSuperAdmin, RoleAdmin, RoleITPerson, RoleUser, RoleExpired}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// BusinessType classifies a SUPER_ADMIN's organisation size.
type BusinessType string

const (
	BusinessTypeSmall  BusinessType = "SMALL"
	BusinessTypeMedium BusinessType = "MEDIUM"
	BusinessTypeLarge  BusinessType = "LARGE"
)

// TicketLimits is the advisory ticket volume per business type. Not enforced.
var TicketLimits = map[BusinessType]int{
	BusinessTypeSmall:  300,
	BusinessTypeMedium: 700,
	BusinessTypeLarge:  3000,
}

// Valid reports whether b is a known business type.
func (b BusinessType) Valid() bool {
	_, ok := TicketLimits[b]
	return ok
}

// User is any account holder, from requesters up to the system owner.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	Location     *string
	BusinessType *BusinessType
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Account carries the subscription expiry of a SUPER_ADMIN.
type Account struct {
	ID         string
	UserID     string
	ExpiryDate time.Time
	CreatedAt  time.Time
}

// Expired reports whether the account lapsed before now.
func (a *Account) Expired(now time.Time) bool {
	return a != nil && a.ExpiryDate.Before(now)
}
