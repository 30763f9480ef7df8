package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
)

const paymentSecretBytes = 24

// GeneratePaymentSecret creates the opaque URL-safe token that
// authenticates a site's webhook and free-trial URLs. Generated once at
// site provisioning.
func GeneratePaymentSecret() (string, error) {
	buf := make([]byte, paymentSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// SecretsEqual compares two secrets in constant time.
func SecretsEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
