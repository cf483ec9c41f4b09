package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hasinarivo/vetcare-api/internal/models"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pa55word")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret-pa55word", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, BcryptCost, cost)
}

func TestJWTRoundTrip(t *testing.T) {
	InitJWT("test-secret")
	defer InitJWT("")

	token, err := GenerateJWT("64b0c8f2a1d2e3f4a5b6c7d8", models.RoleVeterinarian)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "64b0c8f2a1d2e3f4a5b6c7d8", claims.UserID)
	assert.Equal(t, models.RoleVeterinarian, claims.Role)
}

func TestJWTRejectsGarbage(t *testing.T) {
	InitJWT("test-secret")
	defer InitJWT("")

	_, err := ValidateJWT("not.a.token")
	assert.Error(t, err)
}

func TestJWTRequiresSecret(t *testing.T) {
	InitJWT("")
	_, err := GenerateJWT("id", models.RoleClient)
	assert.Error(t, err)
}
