package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	h := NewHasher("", false)

	hash, err := h.Hash("notStrongValue")
	require.NoError(t, err)
	assert.NotEqual(t, "notStrongValue", hash)
	assert.True(t, h.Compare("notStrongValue", hash))
	assert.False(t, h.Compare("notStrongValue2", hash))
	assert.False(t, h.Compare("", hash))
}

func TestPepperIsApplied(t *testing.T) {
	peppered := NewHasher("pepper", false)
	plain := NewHasher("", false)

	hash, err := peppered.Hash("secret")
	require.NoError(t, err)
	assert.True(t, peppered.Compare("secret", hash))
	assert.False(t, plain.Compare("secret", hash))
	assert.True(t, plain.Compare("secretpepper", hash))
}

func TestCostByEnvironment(t *testing.T) {
	assert.Equal(t, bcrypt.MinCost, NewHasher("", false).Cost)
	assert.Equal(t, ProductionCost, NewHasher("", true).Cost)

	hash, err := NewHasher("", false).Hash("x")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestHash_PepperCountsTowardsLimit(t *testing.T) {
	h := NewHasher(strings.Repeat("p", 32), false)

	_, err := h.Hash(strings.Repeat("a", 40))
	require.NoError(t, err)

	_, err = h.Hash(strings.Repeat("a", 60))
	assert.ErrorIs(t, err, ErrTooLong)
}
