package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_CreateUserDefaultsToActorTenant(t *testing.T) {
	env := setupServiceEnv(t)
	company := env.seedCompany(t, "acme")
	admin := env.seedUser(t, "boss", models.RoleAdmin, &company.ID, true)

	user, err := env.userService.CreateUser(auth.RealUserPrincipal(admin), CreateUserInput{
		Email:    "alice@corp.test",
		Username: "alice",
		Password: "password",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, user.Role)
	require.NotNil(t, user.CompanyID)
	require.Equal(t, company.ID, *user.CompanyID)
	require.True(t, user.IsActive)

	// Password is stored hashed.
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password")))
}

func TestUserService_CompanyCreatesAdmin(t *testing.T) {
	env := setupServiceEnv(t)
	company := env.seedCompany(t, "acme")

	user, err := env.userService.CreateUser(auth.VirtualCompanyPrincipal(company), CreateUserInput{
		Email:    "chief@corp.test",
		Username: "chief",
		Password: "password",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, user.Role)
	require.Equal(t, company.ID, *user.CompanyID)
}

func TestUserService_AdminCannotCreateAdmin(t *testing.T) {
	env := setupServiceEnv(t)
	company := env.seedCompany(t, "acme")
	admin := env.seedUser(t, "boss", models.RoleAdmin, &company.ID, true)

	_, err := env.userService.CreateUser(auth.RealUserPrincipal(admin), CreateUserInput{
		Email:    "peer@corp.test",
		Username: "peer",
		Password: "password",
		Role:     models.RoleAdmin,
	})
	require.ErrorIs(t, err, auth.ErrPermissionDenied)
}

func TestUserService_CrossTenantCreateDenied(t *testing.T) {
	env := setupServiceEnv(t)
	companyA := env.seedCompany(t, "acme")
	companyB := env.seedCompany(t, "globex")
	admin := env.seedUser(t, "boss", models.RoleAdmin, &companyA.ID, true)

	_, err := env.userService.CreateUser(auth.RealUserPrincipal(admin), CreateUserInput{
		Email:     "spy@corp.test",
		Username:  "spy",
		Password:  "password",
		CompanyID: &companyB.ID,
	})
	require.ErrorIs(t, err, auth.ErrCrossTenantViolation)
}

func TestUserService_DuplicateFieldsConflict(t *testing.T) {
	env := setupServiceEnv(t)
	company := env.seedCompany(t, "acme")
	admin := env.seedUser(t, "boss", models.RoleAdmin, &company.ID, true)
	env.seedUser(t, "taken", models.RoleUser, &company.ID, false)

	_, err := env.userService.CreateUser(auth.RealUserPrincipal(admin), CreateUserInput{
		Email:    "taken@corp.test",
		Username: "fresh",
		Password: "password",
	})
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Equal(t, "email", conflictErr.Field)

	_, err = env.userService.CreateUser(auth.RealUserPrincipal(admin), CreateUserInput{
		Email:    "fresh@corp.test",
		Username: "taken",
		Password: "password",
	})
	require.ErrorAs(t, err, &conflictErr)
	require.Equal(t, "username", conflictErr.Field)
}

func TestUserService_SelfUpdateNarrowsFields(t *testing.T) {
	env := setupServiceEnv(t)
	company := env.seedCompany(t, "acme")
	worker := env.seedUser(t, "worker", models.RoleUser, &company.ID, false)

	newRole := models.RoleAdmin
	canAssign := true
	newEmail := "newmail@corp.test"
	updated, err := env.userService.UpdateUser(auth.RealUserPrincipal(worker), worker.ID, UpdateUserInput{
		Email:          &newEmail,
		Role:           &newRole,
		CanAssignTasks: &canAssign,
	})
	require.NoError(t, err)

	// The email change lands; role and capability changes are silently dropped.
	require.Equal(t, newEmail, updated.Email)
	require.Equal(t, models.RoleUser, updated.Role)
	require.False(t, updated.CanAssignTasks)
}

func TestUserService_UserCannotUpdateOthers(t *testing.T) {
	env := setupServiceEnv(t)
	company := env.seedCompany(t, "acme")
	worker := env.seedUser(t, "worker", models.RoleUser, &company.ID, false)
	peer := env.seedUser(t, "peer", models.RoleUser, &company.ID, false)

	newEmail := "hijack@corp.test"
	_, err := env.userService.UpdateUser(auth.RealUserPrincipal(worker), peer.ID, UpdateUserInput{
		Email: &newEmail,
	})
	require.ErrorIs(t, err, auth.ErrPermissionDenied)
}

func TestUserService_AdminGrantsAssignCapability(t *testing.T) {
	env := setupServiceEnv(t)
	company := env.seedCompany(t, "acme")
	admin := env.seedUser(t, "boss", models.RoleAdmin, &company.ID, true)
	worker := env.seedUser(t, "worker", models.RoleUser, &company.ID, false)

	canAssign := true
	updated, err := env.userService.UpdateUser(auth.RealUserPrincipal(admin), worker.ID, UpdateUserInput{
		CanAssignTasks: &canAssign,
	})
	require.NoError(t, err)
	require.True(t, updated.CanAssignTasks)
}

func TestUserService_GetUserHidesOtherTenants(t *testing.T) {
	env := setupServiceEnv(t)
	companyA := env.seedCompany(t, "acme")
	companyB := env.seedCompany(t, "globex")
	adminA := env.seedUser(t, "bossA", models.RoleAdmin, &companyA.ID, true)
	workerB := env.seedUser(t, "workerB", models.RoleUser, &companyB.ID, false)

	_, err := env.userService.GetUser(auth.RealUserPrincipal(adminA), workerB.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.userService.GetUser(auth.RealUserPrincipal(adminA), 9999)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_DeactivateAndActivate(t *testing.T) {
	env := setupServiceEnv(t)
	company := env.seedCompany(t, "acme")
	admin := env.seedUser(t, "boss", models.RoleAdmin, &company.ID, true)
	worker := env.seedUser(t, "worker", models.RoleUser, &company.ID, false)

	require.NoError(t, env.userService.DeactivateUser(auth.RealUserPrincipal(admin), worker.ID))

	reloaded, err := env.userRepo.FindByID(worker.ID)
	require.NoError(t, err)
	require.False(t, reloaded.IsActive)

	require.NoError(t, env.userService.ActivateUser(auth.RealUserPrincipal(admin), worker.ID))
	reloaded, err = env.userRepo.FindByID(worker.ID)
	require.NoError(t, err)
	require.True(t, reloaded.IsActive)

	// Self-deactivation is refused.
	err = env.userService.DeactivateUser(auth.RealUserPrincipal(admin), admin.ID)
	require.ErrorIs(t, err, auth.ErrPermissionDenied)
}

func TestUserService_ListUsersScoping(t *testing.T) {
	env := setupServiceEnv(t)
	companyA := env.seedCompany(t, "acme")
	companyB := env.seedCompany(t, "globex")
	superAdmin := env.seedUser(t, "root", models.RoleSuperAdmin, nil, true)
	adminA := env.seedUser(t, "bossA", models.RoleAdmin, &companyA.ID, true)
	env.seedUser(t, "bossB", models.RoleAdmin, &companyB.ID, true)
	workerA := env.seedUser(t, "workerA", models.RoleUser, &companyA.ID, false)

	// The super-admin manages admin accounts across tenants.
	users, total, err := env.userService.ListUsers(auth.RealUserPrincipal(superAdmin), ListUsersInput{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	for _, u := range users {
		require.Equal(t, models.RoleAdmin, u.Role)
	}

	// An admin sees their own tenant.
	_, total, err = env.userService.ListUsers(auth.RealUserPrincipal(adminA), ListUsersInput{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)

	// A user-tier actor sees only themselves.
	users, total, err = env.userService.ListUsers(auth.RealUserPrincipal(workerA), ListUsersInput{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, workerA.ID, users[0].ID)
}
