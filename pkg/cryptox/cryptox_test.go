package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	t.Run("produces url-safe tokens of expected length", func(t *testing.T) {
		tok, err := GenerateToken(TokenSize256)
		require.NoError(t, err)
		require.Len(t, tok, 43)
		require.NotContains(t, tok, "+")
		require.NotContains(t, tok, "/")
		require.NotContains(t, tok, "=")
	})

	t.Run("rejects non-positive sizes", func(t *testing.T) {
		_, err := GenerateToken(0)
		require.Error(t, err)
	})

	t.Run("tokens are unique", func(t *testing.T) {
		a, err := GenerateToken(TokenSize128)
		require.NoError(t, err)
		b, err := GenerateToken(TokenSize128)
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	})
}

func TestFingerprintToken(t *testing.T) {
	t.Parallel()

	fp := FingerprintToken("some-token")
	require.Equal(t, fp, FingerprintToken("some-token"))
	require.NotEqual(t, fp, FingerprintToken("other-token"))

	require.True(t, VerifyTokenFingerprint("some-token", fp))
	require.False(t, VerifyTokenFingerprint("other-token", fp))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	require.NoError(t, VerifyPassword("hunter2", hash))
	require.ErrorIs(t, VerifyPassword("wrong", hash), ErrPasswordMismatch)

	// Same password hashes differently thanks to the random salt.
	other, err := HashPassword("hunter2")
	require.NoError(t, err)
	require.NotEqual(t, hash, other)
}

func TestVerifyPasswordRejectsMalformedHashes(t *testing.T) {
	for _, h := range []string{
		"",
		"plainhash",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=0,t=0,p=0$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA",
	} {
		require.Error(t, VerifyPassword("pw", h), "hash %q", h)
	}
}
