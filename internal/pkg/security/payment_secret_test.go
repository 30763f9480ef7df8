package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePaymentSecret(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 32; i++ {
		secret, err := GeneratePaymentSecret()
		require.NoError(t, err)
		assert.Len(t, secret, 32)
		// URL-safe: a secret is embedded in webhook and trial paths.
		assert.NotContains(t, secret, "/")
		assert.NotContains(t, secret, "+")
		assert.NotContains(t, secret, "=")
		assert.False(t, seen[secret], "secrets must not repeat")
		seen[secret] = true
	}
}

func TestSecretsEqual(t *testing.T) {
	assert.True(t, SecretsEqual("abc", "abc"))
	assert.False(t, SecretsEqual("abc", "abd"))
	assert.False(t, SecretsEqual("abc", "abcd"))
	assert.False(t, SecretsEqual("", "abc"))
	assert.True(t, SecretsEqual("", ""))
}
