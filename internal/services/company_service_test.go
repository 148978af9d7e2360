package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/models"
)

func TestCompanyService_CreateRequiresSuperAdmin(t *testing.T) {
	env := setupServiceEnv(t)
	superAdmin := env.seedUser(t, "root", models.RoleSuperAdmin, nil, true)

	company, err := env.companyService.CreateCompany(auth.RealUserPrincipal(superAdmin), CreateCompanyInput{
		Name:     "Globex",
		Username: "globex",
		Email:    "hq@globex.test",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.True(t, company.IsActive)

	// A company principal cannot provision new tenants.
	existing := env.seedCompany(t, "acme")
	_, err = env.companyService.CreateCompany(auth.VirtualCompanyPrincipal(existing), CreateCompanyInput{
		Name:     "Initech",
		Username: "initech",
		Email:    "hq@initech.test",
		Password: "secret123",
	})
	require.ErrorIs(t, err, auth.ErrPermissionDenied)
}

func TestCompanyService_UniqueFieldsChecked(t *testing.T) {
	env := setupServiceEnv(t)
	superAdmin := env.seedUser(t, "root", models.RoleSuperAdmin, nil, true)
	env.seedCompany(t, "acme")

	_, err := env.companyService.CreateCompany(auth.RealUserPrincipal(superAdmin), CreateCompanyInput{
		Name:     "acme",
		Username: "fresh",
		Email:    "fresh@corp.test",
		Password: "secret123",
	})
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Equal(t, "name", conflictErr.Field)
}

func TestCompanyService_GetCompanyVisibility(t *testing.T) {
	env := setupServiceEnv(t)
	companyA := env.seedCompany(t, "acme")
	companyB := env.seedCompany(t, "globex")
	adminA := env.seedUser(t, "bossA", models.RoleAdmin, &companyA.ID, true)

	company, err := env.companyService.GetCompany(auth.RealUserPrincipal(adminA), companyA.ID)
	require.NoError(t, err)
	require.Equal(t, companyA.ID, company.ID)

	// Another tenant surfaces as not-found, indistinguishable from absence.
	_, err = env.companyService.GetCompany(auth.RealUserPrincipal(adminA), companyB.ID)
	require.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestCompanyService_UpdateOwnProfile(t *testing.T) {
	env := setupServiceEnv(t)
	company := env.seedCompany(t, "acme")

	description := "We make everything"
	updated, err := env.companyService.UpdateCompany(auth.VirtualCompanyPrincipal(company), company.ID, UpdateCompanyInput{
		Description: &description,
	})
	require.NoError(t, err)
	require.Equal(t, description, updated.Description)
}

func TestCompanyService_DeactivateBlocksLogin(t *testing.T) {
	env := setupServiceEnv(t)
	superAdmin := env.seedUser(t, "root", models.RoleSuperAdmin, nil, true)
	company := env.seedCompany(t, "acme")

	require.NoError(t, env.companyService.DeactivateCompany(auth.RealUserPrincipal(superAdmin), company.ID))

	_, err := env.authService.Login(LoginInput{Identifier: "acme", Password: "companypw"})
	require.ErrorIs(t, err, auth.ErrAccountInactive)
}

func TestCompanyService_ListScoping(t *testing.T) {
	env := setupServiceEnv(t)
	superAdmin := env.seedUser(t, "root", models.RoleSuperAdmin, nil, true)
	companyA := env.seedCompany(t, "acme")
	env.seedCompany(t, "globex")
	adminA := env.seedUser(t, "bossA", models.RoleAdmin, &companyA.ID, true)

	companies, err := env.companyService.ListCompanies(auth.RealUserPrincipal(superAdmin))
	require.NoError(t, err)
	require.Len(t, companies, 2)

	companies, err = env.companyService.ListCompanies(auth.RealUserPrincipal(adminA))
	require.NoError(t, err)
	require.Len(t, companies, 1)
	require.Equal(t, companyA.ID, companies[0].ID)
}
