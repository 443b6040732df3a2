package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("M&we3dd1ng")
	require.NoError(t, err)
	require.NotEqual(t, "M&we3dd1ng", hash)

	require.True(t, VerifyPassword(hash, "M&we3dd1ng"))
	require.False(t, VerifyPassword(hash, "wrong-password"))
	require.False(t, VerifyPassword("not-a-hash", "M&we3dd1ng"))
}
