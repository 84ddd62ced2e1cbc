package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHasher_DefaultsToSHA256(t *testing.T) {
	h, err := NewHasher("")
	require.NoError(t, err)
	assert.Equal(t, SHA256, h.Algorithm())
	assert.Equal(t,
		"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		h.SumString("hello"))
}

func TestNewHasher_Unsupported(t *testing.T) {
	_, err := NewHasher("crc32")
	assert.Error(t, err)
}

func TestHasher_ReaderMatchesBytes(t *testing.T) {
	for _, alg := range []Algorithm{MD5, SHA1, SHA256, SHA512} {
		h, err := NewHasher(alg)
		require.NoError(t, err)

		fromReader, err := h.SumReader(strings.NewReader("chapter one"))
		require.NoError(t, err)
		assert.Equal(t, h.Sum([]byte("chapter one")), fromReader, string(alg))
		assert.True(t, h.Verify([]byte("chapter one"), fromReader))
		assert.False(t, h.Verify([]byte("chapter two"), fromReader))
	}
}
