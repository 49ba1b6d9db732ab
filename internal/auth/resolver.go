package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/isdelr/bookshelf-be/internal/httputil"
	"github.com/isdelr/bookshelf-be/internal/models"
	"github.com/isdelr/bookshelf-be/internal/services"
	"github.com/rs/zerolog/log"
)

// ErrUnauthenticated is returned when a request carries no usable identity.
var ErrUnauthenticated = errors.New("could not validate credentials")

type contextKey string

// userKey is the context key for the resolved user.
const userKey = contextKey("user")

// IdentityResolver turns the Authorization header of a request into a user.
type IdentityResolver struct {
	codec *TokenCodec
	store CredentialStore
}

// NewIdentityResolver creates an IdentityResolver.
func NewIdentityResolver(codec *TokenCodec, store CredentialStore) *IdentityResolver {
	return &IdentityResolver{codec: codec, store: store}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Resolve decodes the bearer token and re-reads its subject from the store.
// Missing, invalid and expired tokens and deleted accounts all yield
// ErrUnauthenticated; store failures are returned as-is.
func (r *IdentityResolver) Resolve(ctx context.Context, authorization string) (models.User, error) {
	token, ok := BearerToken(authorization)
	if !ok {
		return models.User{}, ErrUnauthenticated
	}

	claims, err := r.codec.Decode(token)
	if err != nil {
		return models.User{}, ErrUnauthenticated
	}

	user, err := r.store.GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return models.User{}, ErrUnauthenticated
		}
		return models.User{}, fmt.Errorf("resolve user: %w", err)
	}
	return user, nil
}

// Middleware protects the wrapped handler and stores the resolved user in
// the request context.
func (r *IdentityResolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		user, err := r.Resolve(req.Context(), req.Header.Get("Authorization"))
		if err != nil {
			if errors.Is(err, ErrUnauthenticated) {
				w.Header().Set("WWW-Authenticate", "Bearer")
				httputil.Error(w, http.StatusUnauthorized, "Could not validate credentials")
				return
			}
			log.Error().Err(err).Msg("Failed to resolve request identity")
			httputil.Error(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		next.ServeHTTP(w, req.WithContext(WithUser(req.Context(), user)))
	})
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user placed by Middleware.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}
