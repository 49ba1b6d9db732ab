package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isdelr/bookshelf-be/internal/auth"
	"github.com/isdelr/bookshelf-be/internal/httputil"
	"github.com/isdelr/bookshelf-be/internal/models"
	"github.com/isdelr/bookshelf-be/internal/services"
	"github.com/rs/zerolog/log"
)

// Authenticator verifies credentials and registers accounts.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (models.User, error)
	Register(ctx context.Context, username, password string) (models.User, error)
}

// TokenIssuer signs bearer tokens for a username.
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

// UserHandler handles HTTP requests for login and account management.
type UserHandler struct {
	authenticator Authenticator
	tokens        TokenIssuer
	users         services.UserServiceProvider
	events        services.EventServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authenticator Authenticator, tokens TokenIssuer, users services.UserServiceProvider, events services.EventServiceProvider) *UserHandler {
	return &UserHandler{authenticator: authenticator, tokens: tokens, users: users, events: events}
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterPayload defines the structure for registration requests. The
// plaintext password may also arrive in hashed_password, which older
// clients use.
type RegisterPayload struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	HashedPassword string `json:"hashed_password"`
}

// Login exchanges form-encoded credentials for a bearer token.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.Error(w, http.StatusBadRequest, "Invalid form body")
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		httputil.Error(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	user, err := h.authenticator.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Warn().Str("username", username).Msg("Failed authentication attempt")
			w.Header().Set("WWW-Authenticate", "Bearer")
			httputil.Error(w, http.StatusUnauthorized, "Incorrect username or password")
			return
		}
		log.Error().Err(err).Str("username", username).Msg("Failed to authenticate user")
		httputil.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := h.tokens.Issue(user.Username)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to generate JWT")
		httputil.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	recordEvent(r.Context(), h.events, "user.login", "info", "Logged in", user.ID)
	httputil.JSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	password := payload.Password
	if password == "" {
		password = payload.HashedPassword
	}

	user, err := h.authenticator.Register(r.Context(), payload.Username, password)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrInvalidUsername), errors.Is(err, auth.ErrInvalidPassword):
		httputil.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, services.ErrUsernameTaken):
		httputil.Error(w, http.StatusConflict, "Username already registered")
		return
	default:
		log.Error().Err(err).Str("username", payload.Username).Msg("Failed to register user")
		httputil.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("Registered user")
	recordEvent(r.Context(), h.events, "user.register", "info", "Account created", user.ID)
	httputil.JSON(w, http.StatusOK, user)
}

// GetMe returns the authenticated user's current record.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetUserByID(r.Context(), identity.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			httputil.Error(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Int64("user_id", identity.ID).Msg("Failed to get user")
		httputil.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	httputil.JSON(w, http.StatusOK, user)
}

// DeleteMe deletes the authenticated user's account and its books.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.users.DeleteUser(r.Context(), user.ID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			httputil.Error(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to delete user")
		httputil.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	log.Info().Int64("user_id", user.ID).Msg("Deleted user")
	httputil.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}
