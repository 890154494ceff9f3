package llm

import "errors"

// Sentinel error kinds for this package.
var (
	ErrMissingAPIKey = errors.New("gemini api key missing")
	ErrGenerate      = errors.New("gemini generation failed")
)
