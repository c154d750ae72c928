package optin

import "errors"

var (
	// ErrInvalidDate rejects anything not matching YYYY-MM-DD before a
	// single row is written.
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")
	// ErrNoOrganizations means the user has nothing to opt in to.
	ErrNoOrganizations = errors.New("user belongs to no organizations")
	ErrNotAuthorized   = errors.New("admin access required")
)
