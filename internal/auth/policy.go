package auth

import "github.com/spec-kit/helpdesk-service/internal/domain"

// creatable is the single role-creation hierarchy. No transitive shortcuts:
// a SYSTEM_OWNER cannot create an ADMIN directly.
var creatable = map[domain.Role][]domain.Role{
	domain.RoleSystemOwner: {domain.RoleSuperAdmin},
	domain.RoleSuperAdmin:  {domain.RoleAdmin},
	domain.RoleAdmin:       {domain.RoleITPerson, domain.RoleUser},
	domain.RoleITPerson:    {domain.RoleUser},
}

var deletable = map[domain.Role][]domain.Role{
	domain.RoleSystemOwner: {domain.RoleSuperAdmin},
	domain.RoleSuperAdmin:  {domain.RoleAdmin, domain.RoleITPerson, domain.RoleUser, domain.RoleExpired},
	domain.RoleAdmin:       {domain.RoleITPerson, domain.RoleUser},
}

// Roles a SUPER_ADMIN may move accounts between.
var reassignable = []domain.Role{domain.RoleAdmin, domain.RoleITPerson, domain.RoleUser}

// ActiveRoles are the roles allowed onto any authenticated route.
var ActiveRoles = []domain.Role{
	domain.RoleSystemOwner,
	domain.RoleSuperAdmin,
	domain.RoleAdmin,
	domain.RoleITPerson,
	domain.RoleUser,
}

// StaffRoles may read any ticket.
var StaffRoles = []domain.Role{domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleITPerson}

// CanCreateRole reports whether actor may create an account with role target.
func CanCreateRole(actor, target domain.Role) bool {
	return contains(creatable[actor], target)
}

// CanDeleteRole reports whether actor may delete an account holding role target.
func CanDeleteRole(actor, target domain.Role) bool {
	return contains(deletable[actor], target)
}

// CanManageRole reports whether actor may edit another account's profile.
// It follows the deletion hierarchy.
func CanManageRole(actor, target domain.Role) bool {
	return contains(deletable[actor], target)
}

// CanAssignRole reports whether actor may move an account from one role to another.
func CanAssignRole(actor, from, to domain.Role) bool {
	if actor != domain.RoleSuperAdmin {
		return false
	}
	return contains(reassignable, from) && contains(reassignable, to)
}

// CanAccessRoute is a set-membership check of the caller's live role.
func CanAccessRoute(actor domain.Role, allowed ...domain.Role) bool {
	return contains(allowed, actor)
}

// IsStaff reports whether role may see tickets it does not own.
func IsStaff(role domain.Role) bool {
	return contains(StaffRoles, role)
}

// VisibleRoles is the dashboard ceiling: which account roles actor may count.
func VisibleRoles(actor domain.Role) []domain.Role {
	switch actor {
	case domain.RoleSystemOwner, domain.RoleSuperAdmin:
		return []domain.Role{domain.RoleAdmin, domain.RoleITPerson, domain.RoleUser}
	case domain.RoleAdmin:
		return []domain.Role{domain.RoleITPerson, domain.RoleUser}
	default:
		return []domain.Role{domain.RoleUser}
	}
}

func contains(roles []domain.Role, role domain.Role) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}
