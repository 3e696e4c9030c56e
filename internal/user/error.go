package user

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrUnauthorized       = errors.New("please authenticate")
	ErrUserNotFound       = errors.New("user not found")
	ErrMissingSecret      = errors.New("JWT_SECRET is not set")
)
