package models

import (
	"time"

	"github.com/google/uuid"
)

// APIToken is a long-lived bearer credential. Only the SHA-256 hash of
// the secret is used for authentication lookups; the encrypted copy
// exists solely for the one-time-reveal feature and is a deliberate,
// weaker trade-off against pure hashing.
type APIToken struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	TokenHash      string     `json:"-"`
	EncryptedToken string     `json:"-"`
	Name           string     `json:"name"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	LastUsedAt     *time.Time `json:"last_used_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// APITokenPublic is the listing projection; it never carries the hash or
// any recoverable secret.
type APITokenPublic struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
