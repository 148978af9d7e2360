package repository

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/taskflow/taskflow-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return NewUserRepository(db), mock
}

func TestGormUserRepository_FindByEmail(t *testing.T) {
	repo, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "email", "username", "role", "is_active"}).
		AddRow(7, "alice@corp.test", "alice", "USER", true)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "users" WHERE email = $1 ORDER BY "users"."id" LIMIT $2`,
	)).WithArgs("alice@corp.test", 1).WillReturnRows(rows)

	user, err := repo.FindByEmail("alice@corp.test")
	require.NoError(t, err)
	require.Equal(t, uint64(7), user.ID)
	require.Equal(t, "alice", user.Username)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUserRepository_FindByIDNotFound(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`,
	)).WithArgs(999, 1).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(999)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUserRepository_FirstActiveAdminOrdering(t *testing.T) {
	repo, mock := setupMockDB(t)

	// The query must filter on role and active state and order by id so that
	// attribution is deterministic.
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "users" WHERE company_id = $1 AND role = $2 AND is_active = $3 ORDER BY id ASC,"users"."id" LIMIT $4`,
	)).WithArgs(3, string(models.RoleAdmin), true, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "role", "company_id", "is_active"}).
			AddRow(11, "first-admin", "ADMIN", 3, true))

	admin, err := repo.FirstActiveAdmin(3)
	require.NoError(t, err)
	require.Equal(t, uint64(11), admin.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
