package articles

import "errors"

// Public, stable errors for callers.
var (
	// ErrNotFound reports a missing article (or article for a comment).
	ErrNotFound = errors.New("article not found")

	// ErrDuplicateSlug reports a slug uniqueness conflict on create/update.
	ErrDuplicateSlug = errors.New("duplicate article slug")
)
