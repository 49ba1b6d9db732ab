package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/isdelr/bookshelf-be/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewUserService(newTestDB(t))

	created, err := s.CreateUser(ctx, "alice", "digest")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "alice", created.Username)

	byName, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)
	assert.Equal(t, "digest", byName.HashedPassword)

	byID, err := s.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
}

func TestUserService_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	s := NewUserService(newTestDB(t))
	mustCreateUser(t, s, "alice")

	_, err := s.CreateUser(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUserService_NotFound(t *testing.T) {
	ctx := context.Background()
	s := NewUserService(newTestDB(t))

	_, err := s.GetUserByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetUserByID(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteUser(ctx, 42), ErrNotFound)
}

func TestUserService_DeleteCascadesBooks(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserService(db)
	books := NewBookService(db)

	alice := mustCreateUser(t, users, "alice")
	_, err := books.CreateBook(ctx, alice.ID, "Book1", "Author1")
	require.NoError(t, err)

	require.NoError(t, users.DeleteUser(ctx, alice.ID))

	_, err = users.GetUserByUsername(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM books").Scan(&count))
	assert.Zero(t, count)
}

func TestUserService_PostgresPlaceholders(t *testing.T) {
	db, mock := newMockDB(t, database.Postgres)
	s := NewUserService(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users(username, hashed_password) VALUES($1, $2) RETURNING id")).
		WithArgs("alice", "digest").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	u, err := s.CreateUser(context.Background(), "alice", "digest")
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_DriverErrorIsWrapped(t *testing.T) {
	db, mock := newMockDB(t, database.SQLite)
	s := NewUserService(db)
	boom := errors.New("connection reset")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, hashed_password FROM users WHERE username = ?")).
		WithArgs("alice").
		WillReturnError(boom)

	_, err := s.GetUserByUsername(context.Background(), "alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
