package usecase

import "errors"

var (
	// ErrPersistence indicates an infrastructure/repository failure inside a use case
	ErrPersistence = errors.New("user use case persistence error")

	ErrInvalidInput       = errors.New("user: invalid input")
	ErrUsernameTaken      = errors.New("user: username already exists")
	ErrInvalidCredentials = errors.New("user: invalid credentials")
	ErrUserNotFound       = errors.New("user: not found")
)
