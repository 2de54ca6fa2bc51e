package ingest

import "errors"

var (
	// ErrQuotaExceeded means the owner used up today's requests. Nothing was extracted.
	ErrQuotaExceeded = errors.New("daily quota exceeded")
	// ErrInvalidInput covers missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")
)
