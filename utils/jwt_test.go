package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk/config"
)

func init() {
	config.AppConfig.JWTSecret = "test-secret"
}

func TestJWTRoundTrip(t *testing.T) {
	orgID := uint(3)
	tenantID := uint(7)
	exp := time.Now().Add(time.Hour)

	token, err := GenerateJWT(42, &orgID, &tenantID, "user@example.test", "tenant", exp)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	require.NotNil(t, claims.OrganizationID)
	assert.Equal(t, orgID, *claims.OrganizationID)
	require.NotNil(t, claims.TenantID)
	assert.Equal(t, tenantID, *claims.TenantID)
	assert.Equal(t, "user@example.test", claims.Email)
	assert.Equal(t, "tenant", claims.Role)
}

func TestJWTSuperAdminHasNoOrganization(t *testing.T) {
	token, err := GenerateJWT(1, nil, nil, "root@example.test", "super_admin", time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Nil(t, claims.OrganizationID)
	assert.Nil(t, claims.TenantID)
}

func TestJWTRejectsExpired(t *testing.T) {
	token, err := GenerateJWT(1, nil, nil, "user@example.test", "staff", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestJWTRejectsTampered(t *testing.T) {
	token, err := GenerateJWT(1, nil, nil, "user@example.test", "staff", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = ValidateJWT(token + "x")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.True(t, CheckPasswordHash("correct horse battery", hash))
	assert.False(t, CheckPasswordHash("wrong password", hash))
}

func TestGenerateResetToken(t *testing.T) {
	token := GenerateResetToken()
	assert.Len(t, token, 32)
	assert.NotContains(t, token, "-")
	assert.NotEqual(t, token, GenerateResetToken())
}
