package service

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
)

// linkFilterService implements the LinkFilterService interface
type linkFilterService struct {
	store ConfigStore
}

// NewLinkFilterService creates a new link filter service
func NewLinkFilterService(store ConfigStore) LinkFilterService {
	return &linkFilterService{store: store}
}

// Violates reports whether a message must be removed for containing a link.
// Links are only allowed in allow-listed channels while the allow list is enabled.
func (s *linkFilterService) Violates(ctx context.Context, guildID, channelID, content string) bool {
	if !ContainsLink(content) {
		return false
	}

	values, err := s.store.GuildValues(ctx, guildID)
	if err != nil {
		// Settings unreadable: let the message through
		log.WithFields(log.Fields{
			"guildID": guildID,
			"error":   err,
		}).Warn("Failed to read link settings")
		return false
	}

	return !DecodeGuildConfig(guildID, values).LinksAllowedIn(channelID)
}

// ContainsLink reports whether content holds an http:// or https:// prefix.
// Matching is case-sensitive.
func ContainsLink(content string) bool {
	return strings.Contains(content, "http://") || strings.Contains(content, "https://")
}
