package repository

import "errors"

// Sentinel kinds for dataset errors.
var (
	ErrStale = errors.New("stale dataset generation")
)
