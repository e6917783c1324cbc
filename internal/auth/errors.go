package auth

import "errors"

var (
	// ErrInvalidInput wraps field validation failures found before any call is made.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials is returned when the backend rejects a login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailAlreadyExists indicates the email is already registered.
	ErrEmailAlreadyExists = errors.New("email already exists")
)
