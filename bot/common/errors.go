package common

import (
	"errors"
	"fmt"

	"hoshikuzu/service"
)

// BotError pairs an internal error with the message shown to the user
type BotError struct {
	UserMessage string
	Err         error
}

func (e *BotError) Error() string {
	if e.Err == nil {
		return e.UserMessage
	}
	return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
}

func (e *BotError) Unwrap() error {
	return e.Err
}

// NewBotError wraps err with a user-facing message
func NewBotError(userMessage string, err error) *BotError {
	return &BotError{UserMessage: userMessage, Err: err}
}

// UserMessage returns the text to show a user for err.
// Validation errors are explained; anything else gets the generic fallback.
func UserMessage(err error, fallback string) string {
	var botErr *BotError
	switch {
	case errors.As(err, &botErr):
		return botErr.UserMessage
	case errors.Is(err, service.ErrInvalidSnowflake):
		return "That id is not valid."
	case errors.Is(err, service.ErrChannelNotFound):
		return "That channel does not exist in this server."
	case errors.Is(err, service.ErrWrongChannelKind):
		return "That channel is not the right kind for this setting."
	case errors.Is(err, service.ErrUnknownSetting):
		return "Unknown setting."
	case errors.Is(err, service.ErrTicketNotFound):
		return "This channel is not a ticket."
	case errors.Is(err, service.ErrTicketClosing):
		return "This ticket is already closing."
	default:
		return fallback
	}
}
