package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/isdelr/bookshelf-be/internal/models"
	"github.com/isdelr/bookshelf-be/internal/services"
)

// ErrInvalidCredentials is returned for an unknown username and for a wrong
// password alike.
var ErrInvalidCredentials = errors.New("incorrect username or password")

// ErrInvalidUsername is returned when registering a blank, padded or
// over-long username.
var ErrInvalidUsername = errors.New("username must be 1 to 64 characters without surrounding whitespace")

const maxUsernameLength = 64

// CredentialStore looks users up by username.
type CredentialStore interface {
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

// UserStore is a CredentialStore that can also add users.
type UserStore interface {
	CredentialStore
	CreateUser(ctx context.Context, username, hashedPassword string) (models.User, error)
}

// Authenticator checks username/password pairs and registers new accounts.
type Authenticator struct {
	store  UserStore
	hasher PasswordHasher
	// dummyDigest is verified for unknown usernames so both failure paths
	// cost one bcrypt comparison.
	dummyDigest string
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(store UserStore, hasher PasswordHasher) (*Authenticator, error) {
	dummy, err := hasher.Hash("placeholder-password")
	if err != nil {
		return nil, err
	}
	return &Authenticator{store: store, hasher: hasher, dummyDigest: dummy}, nil
}

// Authenticate returns the user when password matches the stored digest.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	user, err := a.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			a.hasher.Verify(password, a.dummyDigest)
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if !a.hasher.Verify(password, user.HashedPassword) {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Register hashes password and stores a new user.
func (a *Authenticator) Register(ctx context.Context, username, password string) (models.User, error) {
	if username == "" || strings.TrimSpace(username) != username || len(username) > maxUsernameLength {
		return models.User{}, ErrInvalidUsername
	}
	if err := ValidatePassword(password); err != nil {
		return models.User{}, err
	}

	digest, err := a.hasher.Hash(password)
	if err != nil {
		return models.User{}, err
	}
	return a.store.CreateUser(ctx, username, digest)
}
