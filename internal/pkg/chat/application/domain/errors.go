package chat

import "errors"

var (
	ErrEmptyContent       = errors.New("chat: message content is empty")
	ErrSelfConversation   = errors.New("chat: conversation requires two distinct users")
	ErrMissingParticipant = errors.New("chat: conversation and participants are required")
)
