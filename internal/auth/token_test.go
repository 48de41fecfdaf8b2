package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/blog-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 12*time.Hour)

	token, expiresAt, err := tm.GenerateToken(42, "zhangsan", domain.RoleAuthor)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(12*time.Hour), expiresAt, time.Minute)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "zhangsan", claims.Username)
	assert.Equal(t, domain.RoleAuthor, claims.Role)
}

func TestTokenExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Nanosecond)

	token, _, err := tm.GenerateToken(1, "user1", domain.RoleReader)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestTokenWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", time.Hour)
	other := NewTokenManager("secret-b", time.Hour)

	token, _, err := tm.GenerateToken(1, "user1", domain.RoleReader)
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestTokenGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	_, err := tm.ParseToken("not.a.jwt")
	assert.Error(t, err)
}

func TestTokenUnknownRole(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, _, err := tm.GenerateToken(1, "user1", domain.Role(9))
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestDefaultTTL(t *testing.T) {
	tm := NewTokenManager("test-secret", 0)
	assert.Equal(t, 12*time.Hour, tm.TTL())
}
