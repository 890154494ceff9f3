package fetch

import "errors"

// Sentinel error kinds for this package.
var (
	ErrHTTPStatus  = errors.New("unexpected http status")
	ErrNotCSV      = errors.New("source returned html instead of csv")
	ErrEmptySource = errors.New("source is empty")
	ErrRequest     = errors.New("source request failed")

	ErrUnsupportedURL = errors.New("source url must be http or https")
)
