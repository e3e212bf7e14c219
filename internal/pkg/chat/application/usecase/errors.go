package usecase

import "errors"

var (
	// ErrPersistence indicates an infrastructure/repository failure inside a use case
	ErrPersistence = errors.New("chat use case persistence error")

	ErrInvalidRecipient  = errors.New("chat: invalid recipient id")
	ErrRecipientNotFound = errors.New("chat: recipient not found")
)
