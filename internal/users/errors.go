package users

import "errors"

var (
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	ErrNotFound       = errors.New("user not found")
	ErrInvalidEmail   = errors.New("valid email required")
	ErrInvalidRole    = errors.New("role must be \"admin\" or \"user\"")
	// ErrSelfRemoval keeps an admin from deleting their own memberships
	// through the provisioning endpoint.
	ErrSelfRemoval = errors.New("cannot remove yourself")
)
