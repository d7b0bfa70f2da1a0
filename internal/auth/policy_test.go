package auth

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestCanCreateRole_ExhaustiveTable(t *testing.T) {
	allowed := map[[2]domain.Role]bool{
		{domain.RoleSystemOwner, domain.RoleSuperAdmin}: true,
		{domain.RoleSuperAdmin, domain.RoleAdmin}:       true,
		{domain.RoleAdmin, domain.RoleITPerson}:         true,
		{domain.RoleAdmin, domain.RoleUser}:             true,
		{domain.RoleITPerson, domain.RoleUser}:          true,
	}

	for _, actor := range domain.AllRoles {
		for _, target := range domain.AllRoles {
			t.Run(fmt.Sprintf("%s creates %s", actor, target), func(t *testing.T) {
				want := allowed[[2]domain.Role{actor, target}]
				assert.Equal(t, want, CanCreateRole(actor, target))
			})
		}
	}
}

func TestCanCreateRole_NoTransitiveShortcuts(t *testing.T) {
	assert.False(t, CanCreateRole(domain.RoleSystemOwner, domain.RoleAdmin))
	assert.False(t, CanCreateRole(domain.RoleSystemOwner, domain.RoleUser))
	assert.False(t, CanCreateRole(domain.RoleSuperAdmin, domain.RoleITPerson))
	assert.False(t, CanCreateRole(domain.RoleAdmin, domain.RoleAdmin))
}

func TestCanAccessRoute(t *testing.T) {
	assert.True(t, CanAccessRoute(domain.RoleAdmin, domain.RoleAdmin, domain.RoleITPerson))
	assert.False(t, CanAccessRoute(domain.RoleUser, domain.RoleAdmin, domain.RoleITPerson))
	assert.False(t, CanAccessRoute(domain.RoleAdmin))
	assert.False(t, CanAccessRoute(domain.RoleExpired, ActiveRoles...))
}

func TestCanDeleteRole(t *testing.T) {
	assert.True(t, CanDeleteRole(domain.RoleSystemOwner, domain.RoleSuperAdmin))
	assert.True(t, CanDeleteRole(domain.RoleSuperAdmin, domain.RoleUser))
	assert.True(t, CanDeleteRole(domain.RoleAdmin, domain.RoleITPerson))
	assert.False(t, CanDeleteRole(domain.RoleAdmin, domain.RoleAdmin))
	assert.False(t, CanDeleteRole(domain.RoleITPerson, domain.RoleUser))
	assert.False(t, CanDeleteRole(domain.RoleSuperAdmin, domain.RoleSystemOwner))
}

func TestCanManageRole(t *testing.T) {
	assert.True(t, CanManageRole(domain.RoleAdmin, domain.RoleITPerson))
	assert.True(t, CanManageRole(domain.RoleAdmin, domain.RoleUser))
	assert.True(t, CanManageRole(domain.RoleSuperAdmin, domain.RoleAdmin))
	assert.False(t, CanManageRole(domain.RoleAdmin, domain.RoleAdmin))
	assert.False(t, CanManageRole(domain.RoleAdmin, domain.RoleSuperAdmin))
	assert.False(t, CanManageRole(domain.RoleAdmin, domain.RoleSystemOwner))
	assert.False(t, CanManageRole(domain.RoleSuperAdmin, domain.RoleSystemOwner))
	assert.False(t, CanManageRole(domain.RoleUser, domain.RoleUser))
}

func TestCanAssignRole(t *testing.T) {
	assert.True(t, CanAssignRole(domain.RoleSuperAdmin, domain.RoleUser, domain.RoleITPerson))
	assert.True(t, CanAssignRole(domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleUser))
	assert.False(t, CanAssignRole(domain.RoleSuperAdmin, domain.RoleUser, domain.RoleSuperAdmin))
	assert.False(t, CanAssignRole(domain.RoleSuperAdmin, domain.RoleExpired, domain.RoleUser))
	assert.False(t, CanAssignRole(domain.RoleAdmin, domain.RoleUser, domain.RoleITPerson))
	assert.False(t, CanAssignRole(domain.RoleSystemOwner, domain.RoleUser, domain.RoleAdmin))
}

func TestVisibleRoles(t *testing.T) {
	tiers := []domain.Role{domain.RoleAdmin, domain.RoleITPerson, domain.RoleUser}
	assert.Equal(t, tiers, VisibleRoles(domain.RoleSystemOwner))
	assert.Equal(t, tiers, VisibleRoles(domain.RoleSuperAdmin))
	assert.Equal(t, []domain.Role{domain.RoleITPerson, domain.RoleUser}, VisibleRoles(domain.RoleAdmin))
	assert.Equal(t, []domain.Role{domain.RoleUser}, VisibleRoles(domain.RoleITPerson))
	assert.Equal(t, []domain.Role{domain.RoleUser}, VisibleRoles(domain.RoleUser))
}
