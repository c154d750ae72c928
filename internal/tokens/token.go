package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// Generate creates a high-entropy API token: the configured prefix
// followed by base64url of 32 random bytes. The prefix makes tokens
// recognizable in Authorization headers and secret scanners.
func Generate(prefix string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return prefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash returns the SHA-256 hex digest of a token. Only the hash is
// stored and used for authentication lookups.
func Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
