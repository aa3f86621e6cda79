package auth

import "errors"

var (
	ErrSecretRequired = errors.New("token secret is required")
	ErrInvalidCost    = errors.New("invalid bcrypt cost")
	ErrMissingToken   = errors.New("missing token")
	ErrInvalidToken   = errors.New("invalid or expired token")
)
