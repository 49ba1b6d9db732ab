package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T, secret string, ttl time.Duration) *TokenCodec {
	t.Helper()
	c, err := NewTokenCodec([]byte(secret), ttl)
	require.NoError(t, err)
	return c
}

func TestIssueAndDecode_Success(t *testing.T) {
	t.Parallel()
	c := newTestCodec(t, "super-secret", time.Hour)

	for _, username := range []string{"alice", "bob", "user with spaces", "ünïcode"} {
		tok, err := c.Issue(username)
		require.NoError(t, err)

		claims, err := c.Decode(tok)
		require.NoError(t, err)
		assert.Equal(t, username, claims.Subject)
		require.NotNil(t, claims.ExpiresAt)
		assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 2*time.Second)
	}
}

func TestIssue_DistinctTokens(t *testing.T) {
	t.Parallel()
	c := newTestCodec(t, "k", time.Hour)
	fixed := time.Now()
	c.now = func() time.Time { return fixed }

	a, err := c.Issue("alice")
	require.NoError(t, err)
	b, err := c.Issue("alice")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDecode_Expired(t *testing.T) {
	t.Parallel()
	c := newTestCodec(t, "secret", 15*time.Minute)
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return issuedAt }

	tok, err := c.Issue("alice")
	require.NoError(t, err)

	c.now = func() time.Time { return issuedAt.Add(14 * time.Minute) }
	_, err = c.Decode(tok)
	require.NoError(t, err)

	c.now = func() time.Time { return issuedAt.Add(15*time.Minute + time.Second) }
	_, err = c.Decode(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecode_FlippedSignatureBit(t *testing.T) {
	t.Parallel()
	c := newTestCodec(t, "secret", time.Hour)

	tok, err := c.Issue("alice")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)
	sig[0] ^= 0x01
	parts[2] = base64.RawURLEncoding.EncodeToString(sig)

	_, err = c.Decode(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecode_WrongSecret(t *testing.T) {
	t.Parallel()
	tok, err := newTestCodec(t, "right-secret", time.Hour).Issue("alice")
	require.NoError(t, err)

	_, err = newTestCodec(t, "wrong-secret", time.Hour).Decode(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecode_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()
	c := newTestCodec(t, "secret", time.Hour)
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = c.Decode(none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = c.Decode(hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecode_RequiresExpiryAndSubject(t *testing.T) {
	t.Parallel()
	c := newTestCodec(t, "secret", time.Hour)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: "alice",
	}}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = c.Decode(noExp)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = c.Decode(noSub)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()
	c := newTestCodec(t, "k", time.Hour)

	for _, tok := range []string{"", "not.a.jwt", "abc", "a.b"} {
		_, err := c.Decode(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, tok)
	}
}

func TestNewTokenCodec_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewTokenCodec(nil, time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = NewTokenCodec([]byte("k"), 0)
	assert.Error(t, err)

	c, err := NewTokenCodec([]byte("k"), 20*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Minute, c.TTL())
}
