package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taskflow/taskflow-api/internal/models"
)

func uintPtr(v uint64) *uint64 {
	return &v
}

func rolePtr(r models.UserRole) *models.UserRole {
	return &r
}

func superAdminActor() Principal {
	return RealUserPrincipal(&models.User{ID: 1, Username: "root", Role: models.RoleSuperAdmin, IsActive: true})
}

func companyActor(companyID uint64) Principal {
	return VirtualCompanyPrincipal(&models.Company{ID: companyID, Username: "acme", IsActive: true})
}

func adminActor(id, companyID uint64) Principal {
	return RealUserPrincipal(&models.User{ID: id, Username: "admin", Role: models.RoleAdmin, CompanyID: uintPtr(companyID), IsActive: true})
}

func userActor(id, companyID uint64, canAssign bool) Principal {
	return RealUserPrincipal(&models.User{ID: id, Username: "worker", Role: models.RoleUser, CompanyID: uintPtr(companyID), IsActive: true, CanAssignTasks: canAssign})
}

func TestPolicy_CrossTenantGateComesFirst(t *testing.T) {
	policy := NewPolicy(nil)

	// An admin of company 1 probing a user in company 2 gets the tenant
	// violation, not a capability denial.
	target := Target{Kind: TargetUser, ID: 99, CompanyID: uintPtr(2), Role: models.RoleUser}
	d := policy.Decide(adminActor(10, 1), ActionUserRead, target)
	require.False(t, d.Allowed)
	require.ErrorIs(t, d.Err, ErrCrossTenantViolation)

	// Same probe by the super-admin passes the gate.
	d = policy.Decide(superAdminActor(), ActionUserRead, target)
	require.True(t, d.Allowed)
}

func TestPolicy_CompanyLifecycleReservedForSuperAdmin(t *testing.T) {
	policy := NewPolicy(nil)

	d := policy.Decide(superAdminActor(), ActionCompanyCreate, Target{Kind: TargetCompany})
	require.True(t, d.Allowed)

	d = policy.Decide(companyActor(1), ActionCompanyCreate, Target{Kind: TargetCompany})
	require.False(t, d.Allowed)
	require.ErrorIs(t, d.Err, ErrPermissionDenied)

	d = policy.Decide(adminActor(10, 1), ActionCompanyDeactivate, CompanyTarget(&models.Company{ID: 1}))
	require.False(t, d.Allowed)
}

func TestPolicy_CompanyUpdatesOwnProfile(t *testing.T) {
	policy := NewPolicy(nil)

	own := CompanyTarget(&models.Company{ID: 1})
	d := policy.Decide(companyActor(1), ActionCompanyUpdate, own)
	require.True(t, d.Allowed)

	other := CompanyTarget(&models.Company{ID: 2})
	d = policy.Decide(companyActor(1), ActionCompanyUpdate, other)
	require.ErrorIs(t, d.Err, ErrCrossTenantViolation)
}

func TestPolicy_UserCreateTiers(t *testing.T) {
	policy := NewPolicy(nil)

	// Super-admin only provisions admin accounts.
	d := policy.Decide(superAdminActor(), ActionUserCreate,
		Target{Kind: TargetUser, CompanyID: uintPtr(1), Role: models.RoleAdmin})
	require.True(t, d.Allowed)

	d = policy.Decide(superAdminActor(), ActionUserCreate,
		Target{Kind: TargetUser, CompanyID: uintPtr(1), Role: models.RoleUser})
	require.False(t, d.Allowed)

	// Company principal creates up to ADMIN within its tenant.
	d = policy.Decide(companyActor(1), ActionUserCreate,
		Target{Kind: TargetUser, CompanyID: uintPtr(1), Role: models.RoleAdmin})
	require.True(t, d.Allowed)

	// Admin creates USER-tier only.
	d = policy.Decide(adminActor(10, 1), ActionUserCreate,
		Target{Kind: TargetUser, CompanyID: uintPtr(1), Role: models.RoleUser})
	require.True(t, d.Allowed)

	d = policy.Decide(adminActor(10, 1), ActionUserCreate,
		Target{Kind: TargetUser, CompanyID: uintPtr(1), Role: models.RoleAdmin})
	require.False(t, d.Allowed)

	// Nobody creates a super-admin.
	for _, actor := range []Principal{superAdminActor(), companyActor(1), adminActor(10, 1)} {
		d = policy.Decide(actor, ActionUserCreate,
			Target{Kind: TargetUser, CompanyID: uintPtr(1), Role: models.RoleSuperAdmin})
		require.False(t, d.Allowed)
	}

	// USER-tier actors never create accounts.
	d = policy.Decide(userActor(20, 1, true), ActionUserCreate,
		Target{Kind: TargetUser, CompanyID: uintPtr(1), Role: models.RoleUser})
	require.False(t, d.Allowed)
}

func TestPolicy_NoElevationToSuperAdmin(t *testing.T) {
	policy := NewPolicy(nil)

	target := Target{
		Kind:          TargetUser,
		ID:            30,
		CompanyID:     uintPtr(1),
		Role:          models.RoleAdmin,
		RequestedRole: rolePtr(models.RoleSuperAdmin),
	}
	d := policy.Decide(superAdminActor(), ActionUserUpdate, target)
	require.False(t, d.Allowed)
	require.ErrorIs(t, d.Err, ErrPermissionDenied)
}

func TestPolicy_SuperAdminCannotSelfDemote(t *testing.T) {
	policy := NewPolicy(nil)
	actor := superAdminActor()

	target := Target{
		Kind:          TargetUser,
		ID:            actor.User.ID,
		Role:          models.RoleSuperAdmin,
		RequestedRole: rolePtr(models.RoleAdmin),
	}
	d := policy.Decide(actor, ActionUserUpdate, target)
	require.False(t, d.Allowed)
}

func TestPolicy_NoSelfDeactivation(t *testing.T) {
	policy := NewPolicy(nil)

	actor := adminActor(10, 1)
	target := Target{Kind: TargetUser, ID: 10, CompanyID: uintPtr(1), Role: models.RoleAdmin}
	d := policy.Decide(actor, ActionUserDeactivate, target)
	require.False(t, d.Allowed)

	// Deactivating someone else of manageable tier is fine.
	other := Target{Kind: TargetUser, ID: 20, CompanyID: uintPtr(1), Role: models.RoleUser}
	d = policy.Decide(actor, ActionUserDeactivate, other)
	require.True(t, d.Allowed)
}

func TestPolicy_SuperAdminRowIsNotManaged(t *testing.T) {
	policy := NewPolicy(nil)

	target := Target{Kind: TargetUser, ID: 1, Role: models.RoleSuperAdmin}
	d := policy.Decide(companyActor(1), ActionUserDeactivate, target)
	require.False(t, d.Allowed)
}

func TestPolicy_SelfUpdateNarrowing(t *testing.T) {
	policy := NewPolicy(nil)

	// USER-tier actors are narrowed to the self-service field set.
	fields := policy.AllowedUserUpdateFields(userActor(20, 1, false), 20)
	require.ElementsMatch(t, []string{"email", "username", "password"}, fields)

	// Privileged tiers are unrestricted.
	require.Nil(t, policy.AllowedUserUpdateFields(superAdminActor(), 20))
	require.Nil(t, policy.AllowedUserUpdateFields(companyActor(1), 20))
	require.Nil(t, policy.AllowedUserUpdateFields(adminActor(10, 1), 20))
}

func TestPolicy_TaskCreateCapability(t *testing.T) {
	policy := NewPolicy(nil)
	target := Target{Kind: TargetTask, CompanyID: uintPtr(1)}

	d := policy.Decide(userActor(20, 1, true), ActionTaskCreate, target)
	require.True(t, d.Allowed)

	d = policy.Decide(userActor(20, 1, false), ActionTaskCreate, target)
	require.False(t, d.Allowed)
	require.ErrorIs(t, d.Err, ErrPermissionDenied)

	// The flag is only consulted for USER-tier actors.
	d = policy.Decide(adminActor(10, 1), ActionTaskCreate, target)
	require.True(t, d.Allowed)
	d = policy.Decide(companyActor(1), ActionTaskCreate, target)
	require.True(t, d.Allowed)
}

func TestPolicy_TaskReadVisibility(t *testing.T) {
	policy := NewPolicy(nil)

	task := &models.Task{ID: 5, CompanyID: 1, AssigneeID: 20, CreatorID: 10}
	target := TaskTarget(task)

	// Assignee and creator see it.
	d := policy.Decide(userActor(20, 1, false), ActionTaskRead, target)
	require.True(t, d.Allowed)
	d = policy.Decide(userActor(10, 1, false), ActionTaskRead, target)
	require.True(t, d.Allowed)

	// An uninvolved same-tenant user does not.
	d = policy.Decide(userActor(30, 1, false), ActionTaskRead, target)
	require.False(t, d.Allowed)
	require.ErrorIs(t, d.Err, ErrPermissionDenied)

	// A user from another tenant hits the cross-tenant gate.
	d = policy.Decide(userActor(40, 2, false), ActionTaskRead, target)
	require.ErrorIs(t, d.Err, ErrCrossTenantViolation)
}

func TestPolicy_TaskStatusUpdateAssigneeOnly(t *testing.T) {
	policy := NewPolicy(nil)

	task := &models.Task{ID: 5, CompanyID: 1, AssigneeID: 20, CreatorID: 10}
	target := TaskTarget(task)

	d := policy.Decide(userActor(20, 1, false), ActionTaskUpdateStatus, target)
	require.True(t, d.Allowed)

	// The creator, an admin, and the company principal are all denied.
	d = policy.Decide(userActor(10, 1, false), ActionTaskUpdateStatus, target)
	require.False(t, d.Allowed)
	d = policy.Decide(adminActor(11, 1), ActionTaskUpdateStatus, target)
	require.False(t, d.Allowed)
	d = policy.Decide(companyActor(1), ActionTaskUpdateStatus, target)
	require.False(t, d.Allowed)

	// The super-admin bypasses the restriction.
	d = policy.Decide(superAdminActor(), ActionTaskUpdateStatus, target)
	require.True(t, d.Allowed)
}

func TestPolicy_TaskDeleteRequiresPrivilege(t *testing.T) {
	policy := NewPolicy(nil)

	task := &models.Task{ID: 5, CompanyID: 1, AssigneeID: 20, CreatorID: 20}
	target := TaskTarget(task)

	// Even the creator cannot delete at USER tier.
	d := policy.Decide(userActor(20, 1, true), ActionTaskDelete, target)
	require.False(t, d.Allowed)

	d = policy.Decide(adminActor(10, 1), ActionTaskDelete, target)
	require.True(t, d.Allowed)
	d = policy.Decide(companyActor(1), ActionTaskDelete, target)
	require.True(t, d.Allowed)
	d = policy.Decide(superAdminActor(), ActionTaskDelete, target)
	require.True(t, d.Allowed)
}
