package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glucotrack/glucotrack/internal/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:          "0123456789abcdef0123456789abcdef",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "glucotrack-test",
	}
}

func TestGenerateAndValidateTokenPair(t *testing.T) {
	m := NewJWTManager(testJWTConfig())

	pair, err := m.GenerateTokenPair(&Claims{DoctorID: 42, Username: "drA"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)

	claims, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.DoctorID)
	assert.Equal(t, "drA", claims.Username)

	claims, err = m.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.DoctorID)
}

func TestValidate_RejectsWrongTokenType(t *testing.T) {
	m := NewJWTManager(testJWTConfig())

	pair, err := m.GenerateTokenPair(&Claims{DoctorID: 1, Username: "drA"})
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)

	_, err = m.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)
}

func TestValidate_RejectsForeignSecret(t *testing.T) {
	m := NewJWTManager(testJWTConfig())
	other := NewJWTManager(config.JWTConfig{
		Secret:          "ffffffffffffffffffffffffffffffff",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "glucotrack-test",
	})

	pair, err := other.GenerateTokenPair(&Claims{DoctorID: 1, Username: "drA"})
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidate_RejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessTokenTTL = -time.Minute
	m := NewJWTManager(cfg)

	pair, err := m.GenerateTokenPair(&Claims{DoctorID: 1, Username: "drA"})
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidate_RejectsGarbage(t *testing.T) {
	m := NewJWTManager(testJWTConfig())

	_, err := m.ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
