package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateKey    = errors.New("duplicate api key")
	ErrInvalidPrompt   = errors.New("invalid prompt")
	ErrProviderFailure = errors.New("provider failure")
)
