package sha256

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasherHashDeterministic(t *testing.T) {
	t.Parallel()

	h := New()
	got, err := h.Hash([]byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "sha256:b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", got)

	again, err := h.Hash([]byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestHasherEmptyCatalog(t *testing.T) {
	t.Parallel()

	got, err := New().Hash([]byte("[]\n"))
	require.NoError(t, err)
	other, err := New().Hash([]byte("[]"))
	require.NoError(t, err)
	assert.NotEqual(t, got, other)
	assert.Len(t, got, len(Prefix)+64)
}
