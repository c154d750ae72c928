package organizations

import "errors"

var (
	ErrNotFound        = errors.New("organization not found")
	ErrNoOrganizations = errors.New("user has no organizations")
	ErrNotMember       = errors.New("user is not a member of this organization")
	ErrInvalidDomain   = errors.New("invalid work email domain")
	ErrInvalidRole     = errors.New("invalid membership role")
)
