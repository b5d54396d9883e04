package auth

import "errors"

var (
	ErrNotFound           = errors.New("auth: not found")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrInvalidToken       = errors.New("auth: invalid token")
	ErrSessionExpired     = errors.New("auth: session expired")
)
