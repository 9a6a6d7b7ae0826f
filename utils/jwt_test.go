package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiopm/config"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	config.JWTKey = []byte("test-secret")
	config.JWTExpiration = time.Hour

	token, err := GenerateJWT("64f0c0ffee0000000000abcd", "Ana Costa", "designer", "64f0c0ffee0000000000ef01")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "64f0c0ffee0000000000abcd", claims.UserID)
	assert.Equal(t, "Ana Costa", claims.Name)
	assert.Equal(t, "designer", claims.Role)
	assert.Equal(t, "64f0c0ffee0000000000ef01", claims.StudioID)
}

func TestValidateJWTRejectsWrongKey(t *testing.T) {
	config.JWTKey = []byte("test-secret")
	config.JWTExpiration = time.Hour

	token, err := GenerateJWT("id", "name", "coo", "studio")
	require.NoError(t, err)

	config.JWTKey = []byte("a-different-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateJWTRejectsExpired(t *testing.T) {
	config.JWTKey = []byte("test-secret")
	config.JWTExpiration = -time.Minute

	token, err := GenerateJWT("id", "name", "coo", "studio")
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	config.JWTKey = []byte("test-secret")
	_, err := ValidateJWT("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cure-pass")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cure-pass", hash))
	assert.False(t, CheckPasswordHash("wrong-pass", hash))
}

func TestGenerateRandomPassword(t *testing.T) {
	a := GenerateRandomPassword(16)
	b := GenerateRandomPassword(16)
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}
