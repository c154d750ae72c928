package tokens

import "errors"

var (
	// ErrInvalidToken covers unknown and expired tokens alike so callers
	// cannot distinguish the two cases.
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrNotFound     = errors.New("token not found")
	// ErrRevealUnavailable is returned for tokens created before
	// reveal-encryption was enabled, or when no key is configured.
	ErrRevealUnavailable = errors.New("token reveal not available")
)
