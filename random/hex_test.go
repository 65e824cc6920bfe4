package random_test

import (
	"encoding/hex"
	"testing"

	"github.com/nasermirzaei89/labbook/random"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHex(t *testing.T) {
	t.Parallel()

	first := random.Hex(16)
	second := random.Hex(16)

	assert.Len(t, first, 32)
	assert.NotEqual(t, first, second)

	_, err := hex.DecodeString(first)
	require.NoError(t, err)
}

func TestBytes(t *testing.T) {
	t.Parallel()

	assert.Len(t, random.Bytes(32), 32)
	assert.Empty(t, random.Bytes(0))
}
