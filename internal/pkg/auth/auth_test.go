package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/hackfest/internal/pkg/apperrors"
)

func newTestJWTService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "hackfest.app",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	s := newTestJWTService()

	token, expiresIn, err := s.GenerateAccessToken("organizer@hackfest.app", "ORGANIZER")
	require.NoError(t, err)
	assert.Equal(t, 3600, expiresIn)

	claims, err := s.ValidateAndExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "organizer@hackfest.app", claims.Email)
	assert.Equal(t, "ORGANIZER", claims.Role)
	assert.Equal(t, "hackfest.app", claims.Issuer)
}

func TestExpiredToken(t *testing.T) {
	s := newTestJWTService()
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := s.GenerateAccessToken("organizer@hackfest.app", "ORGANIZER")
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestTokenSignedWithOtherSecret(t *testing.T) {
	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "hackfest.app"})
	token, _, err := other.GenerateAccessToken("organizer@hackfest.app", "ORGANIZER")
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = ExtractBearerToken("abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	for _, header := range []string{"", "Bearer ", "Basic dXNlcjpwYXNz"} {
		_, err = ExtractBearerToken(header)
		assert.ErrorIs(t, err, ErrInvalidFormat, header)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, CheckPassword(string(hash), "s3cret!"))
	assert.False(t, CheckPassword(string(hash), "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret!"))
}
