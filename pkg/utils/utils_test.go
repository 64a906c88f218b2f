package utils_test

import (
	"testing"

	"github.com/librishare/librishare/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateID(t *testing.T) {
	id, err := utils.GenerateID(8)
	require.NoError(t, err)
	assert.Len(t, id, 16, "hex encoding doubles the byte length")

	other, err := utils.GenerateID(8)
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := utils.HashPassword("Sup3rSecret")
	require.NoError(t, err)
	assert.NotEqual(t, "Sup3rSecret", hash)

	assert.NoError(t, utils.CheckPassword(hash, "Sup3rSecret"))
	assert.Error(t, utils.CheckPassword(hash, "WrongPass1"))
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := utils.GenerateJWT("user-1", "ana", "secret")
	require.NoError(t, err)

	claims, err := utils.ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ana", claims.Username)
}

func TestParseJWT_WrongSecret(t *testing.T) {
	token, err := utils.GenerateJWT("user-1", "ana", "secret")
	require.NoError(t, err)

	_, err = utils.ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestParseJWT_Garbage(t *testing.T) {
	_, err := utils.ParseJWT("not.a.token", "secret")
	assert.Error(t, err)
}
