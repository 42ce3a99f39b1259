package credential

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasher_Hash(t *testing.T) {
	t.Parallel()

	h := testHasher()

	first, err := h.Hash("secret")
	require.NoError(t, err)
	second, err := h.Hash("secret")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first, "$argon2id$v=19$m=1024,t=1,p=1$"))
	assert.NotEqual(t, first, second, "salt must differ between hashes")
}

func TestHasher_EmptyPassword(t *testing.T) {
	t.Parallel()

	_, err := testHasher().Hash("")
	assert.Error(t, err)
}

func TestNewHasher_Defaults(t *testing.T) {
	t.Parallel()

	h := NewHasher(KDFParams{})
	assert.Equal(t, DefaultKDFParams, h.params)
}

func TestNewHasher_ClampsCost(t *testing.T) {
	t.Parallel()

	h := NewHasher(KDFParams{Time: 1 << 20, MemKiB: 1 << 30, Par: 1})

	assert.Equal(t, uint32(maxArgon2Time), h.params.Time)
	assert.Equal(t, uint32(maxArgon2Memory), h.params.MemKiB)
}
