// Package crypto provides the reversible encryption behind the API token
// reveal feature. Revealed tokens trade hash-only storage for recoverable
// secrets, so this is isolated here and used for nothing else.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

var (
	ErrKeyMissing    = errors.New("encryption key not configured")
	ErrInvalidFormat = errors.New("invalid encrypted data format")
)

// Encryptor performs AES-256-GCM encryption with a key derived from the
// configured secret via HKDF, so operators can supply a passphrase of any
// length.
type Encryptor struct {
	key []byte
}

// NewEncryptor derives the AES key from secret. An empty secret disables
// the reveal feature; Encrypt/Decrypt then return ErrKeyMissing.
func NewEncryptor(secret string) (*Encryptor, error) {
	if secret == "" {
		return &Encryptor{}, nil
	}
	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("api-token-reveal"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return &Encryptor{key: key}, nil
}

// Enabled reports whether a key is configured.
func (e *Encryptor) Enabled() bool { return len(e.key) != 0 }

// Encrypt seals plaintext and returns "hex(nonce):hex(ciphertext)".
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	if !e.Enabled() {
		return "", ErrKeyMissing
	}
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func (e *Encryptor) Decrypt(encrypted string) (string, error) {
	if !e.Enabled() {
		return "", ErrKeyMissing
	}
	parts := strings.SplitN(encrypted, ":", 2)
	if len(parts) != 2 {
		return "", ErrInvalidFormat
	}
	nonce, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", ErrInvalidFormat
	}
	sealed, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", ErrInvalidFormat
	}
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(nonce) != gcm.NonceSize() {
		return "", ErrInvalidFormat
	}
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plain), nil
}
