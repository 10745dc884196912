package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leapblog/backend/internal/domain"
	"github.com/Leapblog/backend/pkg/database"
)

func newLikeTestFixture(t *testing.T) (*LikeRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewLikeRepository(mock)
	return repo, mock
}

func TestLikeRepository_Add_Success(t *testing.T) {
	repo, mock := newLikeTestFixture(t)
	defer mock.Close()

	l := &domain.Like{
		ID:        "l-1",
		PostID:    "p-1",
		UserID:    "u-1",
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO likes").
		WithArgs(l.ID, l.PostID, l.UserID, l.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Add(context.Background(), l)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeRepository_Add_DuplicateIsNoOp(t *testing.T) {
	repo, mock := newLikeTestFixture(t)
	defer mock.Close()

	l := &domain.Like{
		ID:        "l-1",
		PostID:    "p-1",
		UserID:    "u-1",
		CreatedAt: time.Now().UTC(),
	}

	// ON CONFLICT DO NOTHING reports zero rows affected instead of an error.
	mock.ExpectExec("INSERT INTO likes").
		WithArgs(l.ID, l.PostID, l.UserID, l.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err := repo.Add(context.Background(), l)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeRepository_Remove_MissingIsNoOp(t *testing.T) {
	repo, mock := newLikeTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM likes").
		WithArgs("p-1", "u-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Remove(context.Background(), "p-1", "u-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeRepository_Exists(t *testing.T) {
	repo, mock := newLikeTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("p-1", "u-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(context.Background(), "p-1", "u-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeRepository_CountByPostID(t *testing.T) {
	repo, mock := newLikeTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT count").
		WithArgs("p-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(9))

	count, err := repo.CountByPostID(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, 9, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
