package services_test

import (
	"strings"
	"testing"

	"github.com/SscSPs/user_accounts_service/internal/apperrors"
	"github.com/SscSPs/user_accounts_service/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := services.NewPasswordHasher(bcrypt.MinCost)

	for _, p := range []string{"Passw0rd!", "another-Secret#9", "x"} {
		hash, err := hasher.Hash(p)
		require.NoError(t, err)
		assert.NotEqual(t, p, hash)

		ok, err := hasher.Verify(p, hash)
		require.NoError(t, err)
		assert.True(t, ok, "password should verify against its own hash")

		ok, err = hasher.Verify(p+"?", hash)
		require.NoError(t, err)
		assert.False(t, ok, "different password must not verify")
	}
}

func TestPasswordHasher_SaltsEveryCall(t *testing.T) {
	hasher := services.NewPasswordHasher(bcrypt.MinCost)

	a, err := hasher.Hash("Passw0rd!")
	require.NoError(t, err)
	b, err := hasher.Hash("Passw0rd!")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestPasswordHasher_RejectsEmptyAndOversized(t *testing.T) {
	hasher := services.NewPasswordHasher(bcrypt.MinCost)

	_, err := hasher.Hash("")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = hasher.Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPasswordHasher_CorruptHash(t *testing.T) {
	hasher := services.NewPasswordHasher(bcrypt.MinCost)

	ok, err := hasher.Verify("Passw0rd!", "not-a-bcrypt-hash")
	assert.False(t, ok)
	assert.ErrorIs(t, err, apperrors.ErrCorruptCredential)
}

func TestPasswordHasher_ClampsCost(t *testing.T) {
	hasher := services.NewPasswordHasher(1)

	hash, err := hasher.Hash("Passw0rd!")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}
