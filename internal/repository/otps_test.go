package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zopper-dev/salesdost/backend/internal/domain"
)

func TestReplaceOneTimeCodeDeletesPriorCodesFirst(t *testing.T) {
	repo, mock := newTestRepository(t)

	code := &domain.OneTimeCode{
		Phone:     "9876543210",
		Code:      "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM one_time_codes WHERE phone").
		WithArgs("9876543210").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO one_time_codes").
		WithArgs("9876543210", "123456", code.ExpiresAt).
		WillReturnRows(sqlmock.NewRows([]string{"id", "verified", "created_at"}).AddRow(int64(5), false, time.Now()))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceOneTimeCode(code))
	assert.Equal(t, int64(5), code.ID)
	assert.False(t, code.Verified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceOneTimeCodeRollsBackOnInsertFailure(t *testing.T) {
	repo, mock := newTestRepository(t)

	code := &domain.OneTimeCode{
		Phone:     "9876543210",
		Code:      "654321",
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM one_time_codes WHERE phone").
		WithArgs("9876543210").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("INSERT INTO one_time_codes").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	assert.Error(t, repo.ReplaceOneTimeCode(code))
	assert.NoError(t, mock.ExpectationsWereMet())
}
