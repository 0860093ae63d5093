package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestHashPassword(t *testing.T) {
	_, err := HashPassword("12345")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, CheckPassword(hash, "secret1"))
	assert.False(t, CheckPassword(hash, "secret2"))
}

func TestIssueAndParse(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	id := primitive.NewObjectID()

	token, err := issuer.Issue(id, "a@b.com")
	require.NoError(t, err)

	got, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, int64(3600), issuer.ExpiresIn())
}

func TestParseExpired(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := issuer.Issue(primitive.NewObjectID(), "a@b.com")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParseRejectsForeignTokens(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	other, err := NewIssuer("other-secret", time.Hour).Issue(primitive.NewObjectID(), "a@b.com")
	require.NoError(t, err)
	_, err = issuer.Parse(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: primitive.NewObjectID().Hex()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	badID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:           "nope",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = issuer.Parse(badID)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewRefreshToken(t *testing.T) {
	plain, hash, err := NewRefreshToken()
	require.NoError(t, err)
	assert.Len(t, plain, 64)
	assert.Equal(t, HashToken(plain), hash)

	other, _, err := NewRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, plain, other)
}
