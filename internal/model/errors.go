package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Document related errors
	ErrNotFound  = errors.New("document not found")
	ErrInvalidID = errors.New("invalid document id")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
