package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/isdelr/bookshelf-be/internal/database"
	"github.com/isdelr/bookshelf-be/internal/models"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	CreateUser(ctx context.Context, username, hashedPassword string) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// UserService persists user accounts.
type UserService struct {
	db *database.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db}
}

// GetUserByID retrieves a single user by their ID, including the password hash.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	row := s.db.QueryRowContext(ctx,
		s.db.Rebind("SELECT id, username, hashed_password FROM users WHERE id = ?"), id)
	return scanUser(row)
}

// GetUserByUsername retrieves a single user by username, including the password hash.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	row := s.db.QueryRowContext(ctx,
		s.db.Rebind("SELECT id, username, hashed_password FROM users WHERE username = ?"), username)
	return scanUser(row)
}

func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.HashedPassword); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}

// CreateUser stores a new user. The password must already be hashed.
func (s *UserService) CreateUser(ctx context.Context, username, hashedPassword string) (models.User, error) {
	user := models.User{Username: username, HashedPassword: hashedPassword}

	err := s.db.QueryRowContext(ctx,
		s.db.Rebind("INSERT INTO users(username, hashed_password) VALUES(?, ?) RETURNING id"),
		username, hashedPassword,
	).Scan(&user.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user; their books and events go with them.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM users WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
