package docstore

import "errors"

// Sentinel error kinds for this package.
var (
	ErrNotConfigured = errors.New("document store not configured")
	ErrWrite         = errors.New("document store write failed")
	ErrRead          = errors.New("document store read failed")
)
