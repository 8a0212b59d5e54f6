package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	accessCfg  = Config{Secret: "access-secret", TTL: 15 * time.Minute}
	refreshCfg = Config{Secret: "refresh-secret", TTL: 7 * 24 * time.Hour}
)

func TestRoundTrip(t *testing.T) {
	token, err := NewToken(42, "alice@example.com", accessCfg)
	require.NoError(t, err)

	claims, err := ParseToken(token, accessCfg)
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.UID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(accessCfg.TTL), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseToken_Expired(t *testing.T) {
	expired := Config{Secret: accessCfg.Secret, TTL: -time.Minute}

	token, err := NewToken(42, "alice@example.com", expired)
	require.NoError(t, err)

	_, err = ParseToken(token, accessCfg)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseToken_WrongProfile(t *testing.T) {
	token, err := NewToken(42, "alice@example.com", accessCfg)
	require.NoError(t, err)

	_, err = ParseToken(token, refreshCfg)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseToken_Tampered(t *testing.T) {
	token, err := NewToken(42, "alice@example.com", accessCfg)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"

	_, err = ParseToken(tampered, accessCfg)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseToken_Malformed(t *testing.T) {
	_, err := ParseToken("not-a-token", accessCfg)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}
