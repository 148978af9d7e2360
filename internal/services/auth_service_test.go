package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/models"
)

func TestAuthService_LoginAndFromToken(t *testing.T) {
	env := setupServiceEnv(t)
	company := env.seedCompany(t, "acme")
	worker := env.seedUser(t, "worker", models.RoleUser, &company.ID, false)

	result, err := env.authService.Login(LoginInput{
		Identifier: "worker",
		Password:   "password",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, auth.PrincipalUser, result.Principal.Kind)

	principal, err := env.authService.FromToken(result.Token)
	require.NoError(t, err)
	require.Equal(t, worker.ID, principal.User.ID)
}

func TestAuthService_CompanyLoginRoundTrip(t *testing.T) {
	env := setupServiceEnv(t)
	company := env.seedCompany(t, "acme")

	result, err := env.authService.Login(LoginInput{
		Identifier: "acme",
		Password:   "companypw",
	})
	require.NoError(t, err)
	require.Equal(t, auth.PrincipalCompany, result.Principal.Kind)

	principal, err := env.authService.FromToken(result.Token)
	require.NoError(t, err)
	require.Equal(t, auth.PrincipalCompany, principal.Kind)
	require.Equal(t, company.ID, principal.Company.ID)
}

func TestAuthService_TokenRejectedAfterDeactivation(t *testing.T) {
	env := setupServiceEnv(t)
	company := env.seedCompany(t, "acme")
	worker := env.seedUser(t, "worker", models.RoleUser, &company.ID, false)

	result, err := env.authService.Login(LoginInput{
		Identifier: "worker",
		Password:   "password",
	})
	require.NoError(t, err)

	worker.IsActive = false
	require.NoError(t, env.db.Save(worker).Error)

	_, err = env.authService.FromToken(result.Token)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_BadCredentials(t *testing.T) {
	env := setupServiceEnv(t)
	company := env.seedCompany(t, "acme")
	env.seedUser(t, "worker", models.RoleUser, &company.ID, false)

	_, err := env.authService.Login(LoginInput{
		Identifier: "worker",
		Password:   "wrong",
	})
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
