package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/models"
)

func TestNotificationService_InboxOwnership(t *testing.T) {
	env := setupServiceEnv(t)
	company := env.seedCompany(t, "acme")
	alice := env.seedUser(t, "alice", models.RoleUser, &company.ID, false)
	bob := env.seedUser(t, "bob", models.RoleUser, &company.ID, false)

	env.notificationService.Notify(alice.ID, models.NotificationTaskAssigned, "Hello", "You have a task", nil)

	notifications, err := env.notificationService.ListForUser(auth.RealUserPrincipal(alice))
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	require.False(t, notifications[0].IsRead)

	// Bob cannot touch Alice's notification.
	err = env.notificationService.MarkRead(auth.RealUserPrincipal(bob), notifications[0].ID)
	require.ErrorIs(t, err, ErrNotNotificationOwner)
	err = env.notificationService.Delete(auth.RealUserPrincipal(bob), notifications[0].ID)
	require.ErrorIs(t, err, ErrNotNotificationOwner)

	// Alice can.
	require.NoError(t, env.notificationService.MarkRead(auth.RealUserPrincipal(alice), notifications[0].ID))
	notifications, err = env.notificationService.ListForUser(auth.RealUserPrincipal(alice))
	require.NoError(t, err)
	require.True(t, notifications[0].IsRead)

	require.NoError(t, env.notificationService.Delete(auth.RealUserPrincipal(alice), notifications[0].ID))
	notifications, err = env.notificationService.ListForUser(auth.RealUserPrincipal(alice))
	require.NoError(t, err)
	require.Empty(t, notifications)
}

func TestNotificationService_CompanyPrincipalHasNoInbox(t *testing.T) {
	env := setupServiceEnv(t)
	company := env.seedCompany(t, "acme")

	notifications, err := env.notificationService.ListForUser(auth.VirtualCompanyPrincipal(company))
	require.NoError(t, err)
	require.Empty(t, notifications)
}

func TestNotificationService_SuppressedForZeroTarget(t *testing.T) {
	env := setupServiceEnv(t)

	// A zero target is dropped without writing a row.
	env.notificationService.Notify(0, models.NotificationTaskAssigned, "Nobody", "No target", nil)

	var count int64
	require.NoError(t, env.db.Model(&models.Notification{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestNotificationService_UnknownNotification(t *testing.T) {
	env := setupServiceEnv(t)
	company := env.seedCompany(t, "acme")
	alice := env.seedUser(t, "alice", models.RoleUser, &company.ID, false)

	err := env.notificationService.MarkRead(auth.RealUserPrincipal(alice), 9999)
	require.ErrorIs(t, err, ErrNotificationNotFound)
}
