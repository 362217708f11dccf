package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAdminToken_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")
	now := time.Now().UTC()

	token, exp, err := NewAdminToken(secret, 7, "root", now, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, now.Add(time.Hour), exp, time.Second)

	claims, err := AdminClaimsFromToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "root", claims.Username)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, uint(7), claims.AdminID())
}

func TestAdminClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")

	expired, _, err := NewAdminToken(secret, 1, "root", time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)
	_, err = AdminClaimsFromToken(expired, secret)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)

	valid, _, err := NewAdminToken(secret, 1, "root", time.Now(), time.Hour)
	require.NoError(t, err)
	_, err = AdminClaimsFromToken(valid, []byte("other-secret"))
	require.Error(t, err)
}
