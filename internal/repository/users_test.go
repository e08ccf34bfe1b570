package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zopper-dev/salesdost/backend/internal/config"
	"github.com/zopper-dev/salesdost/backend/internal/domain"
)

func newTestRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5

	return NewRepository(cfg, db), mock
}

func TestGetUserByUsername(t *testing.T) {
	repo, mock := newTestRepository(t)

	createdAt := time.Now()
	rows := sqlmock.NewRows([]string{"id", "password_hash", "role", "validation_state", "metadata", "last_login_at", "created_at", "version"}).
		AddRow(int64(7), "hash", "ZOPPER_ADMIN", "approved", []byte(`{"isUatUser":true}`), nil, createdAt, int32(1))

	mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs("admin").
		WillReturnRows(rows)

	user, err := repo.GetUserByUsername("admin")
	require.NoError(t, err)

	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, domain.RoleZopperAdmin, user.Role)
	assert.Equal(t, domain.ValidationApproved, user.ValidationState)
	assert.True(t, user.Metadata.IsUATUser)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserValidatesMetadata(t *testing.T) {
	repo, _ := newTestRepository(t)

	user := &domain.User{
		Username:        "zsm01",
		PasswordHash:    "hash",
		Role:            domain.RoleZSM,
		ValidationState: domain.ValidationPending,
		Metadata: domain.UserMetadata{
			Admin: &domain.AdminMetadata{Department: "ops"},
		},
	}

	// admin extension on a manager role must be rejected before any SQL runs
	assert.Error(t, repo.CreateUser(user))
}

func TestApproveUserOnlyTouchesPendingRows(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery("UPDATE users").
		WithArgs(string(domain.ValidationApproved), int64(3), string(domain.ValidationPending)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	require.NoError(t, repo.ApproveUser(3))
	assert.NoError(t, mock.ExpectationsWereMet())
}
