package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/isdelr/bookshelf-be/internal/httputil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"  Bearer   abc  ", "abc", true},
		{"Basic dXNlcjpwYXNz", "", false},
		{"Bearer", "", false},
		{"Bearer    ", "", false},
		{"", "", false},
		{"abc.def.ghi", "", false},
	}
	for _, tc := range cases {
		token, ok := BearerToken(tc.header)
		assert.Equal(t, tc.ok, ok, tc.header)
		assert.Equal(t, tc.token, token, tc.header)
	}
}

func setupResolver(t *testing.T) (*IdentityResolver, *TokenCodec, *fakeUserStore) {
	t.Helper()
	store := newFakeUserStore()
	_, err := store.CreateUser(context.Background(), "alice", "digest")
	require.NoError(t, err)
	codec := newTestCodec(t, "secret", time.Hour)
	return NewIdentityResolver(codec, store), codec, store
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	r, codec, store := setupResolver(t)

	tok, err := codec.Issue("alice")
	require.NoError(t, err)

	user, err := r.Resolve(ctx, "Bearer "+tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = r.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = r.Resolve(ctx, "Bearer garbage")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// Token is still cryptographically valid but the account is gone.
	store.delete("alice")
	_, err = r.Resolve(ctx, "Bearer "+tok)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolve_StoreFailureIsNotUnauthenticated(t *testing.T) {
	r, codec, store := setupResolver(t)
	tok, err := codec.Issue("alice")
	require.NoError(t, err)
	boom := errors.New("db down")
	store.getErr = boom

	_, err = r.Resolve(context.Background(), "Bearer "+tok)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
}

func TestMiddleware(t *testing.T) {
	r, codec, store := setupResolver(t)
	tok, err := codec.Issue("alice")
	require.NoError(t, err)

	protected := r.Middleware(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		user, ok := UserFromContext(req.Context())
		require.True(t, ok)
		httputil.JSON(w, http.StatusOK, user)
	}))

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":1,"username":"alice"}`, rec.Body.String())
	})

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		var body httputil.ErrorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Could not validate credentials", body.Detail)
	})

	t.Run("store failure", func(t *testing.T) {
		store.getErr = errors.New("db down")
		defer func() { store.getErr = nil }()

		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestUserFromContext_Empty(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)
}
