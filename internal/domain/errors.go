package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrMalformedResponse = errors.New("classifier: unexpected response shape")
	ErrUpstream          = errors.New("classifier: upstream failure")
	ErrRetriesExhausted  = errors.New("classifier: retries exhausted")
)
