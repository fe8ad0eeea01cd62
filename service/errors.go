package service

import (
	"errors"
	"strconv"
)

var (
	// ErrChannelNotFound is returned when a channel does not exist on the platform
	ErrChannelNotFound = errors.New("channel not found")

	// ErrWrongChannelKind is returned when a setting is given a channel of the wrong kind
	ErrWrongChannelKind = errors.New("wrong channel kind")

	// ErrInvalidSnowflake is returned for ids that are not Discord snowflakes
	ErrInvalidSnowflake = errors.New("invalid id")

	// ErrUnknownSetting is returned for config keys the bot does not manage
	ErrUnknownSetting = errors.New("unknown setting")

	// ErrTicketNotFound is returned when a channel is not a ticket
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrTicketClosing is returned when a ticket close is already scheduled
	ErrTicketClosing = errors.New("ticket already closing")
)

// ValidateSnowflake checks that id is a positive decimal Discord id
func ValidateSnowflake(id string) error {
	if id == "" || len(id) > 20 {
		return ErrInvalidSnowflake
	}
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return ErrInvalidSnowflake
	}
	return nil
}
