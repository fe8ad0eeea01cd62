package common

import (
	"fmt"
	"time"

	"hoshikuzu/models"

	"github.com/bwmarrin/discordgo"
)

// Embed colors per notice level
const (
	ColorInfo    = 0x5865F2
	ColorSuccess = 0x57F287
	ColorWarning = 0xFEE75C
	ColorError   = 0xED4245
)

// LevelColor returns the embed color for a notice level
func LevelColor(level models.NoticeLevel) int {
	switch level {
	case models.NoticeLevelSuccess:
		return ColorSuccess
	case models.NoticeLevelWarning:
		return ColorWarning
	case models.NoticeLevelError:
		return ColorError
	default:
		return ColorInfo
	}
}

// NoticeEmbed renders a notice as a Discord embed
func NoticeEmbed(notice models.Notice) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       notice.Title,
		Description: notice.Description,
		Color:       LevelColor(notice.Level),
	}

	for _, field := range notice.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   field.Name,
			Value:  field.Value,
			Inline: field.Inline,
		})
	}

	if notice.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: notice.ThumbnailURL}
	}

	if !notice.Timestamp.IsZero() {
		embed.Timestamp = notice.Timestamp.Format(time.RFC3339)
	}

	return embed
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// ChannelMention formats a channel id as a mention, or "not set"
func ChannelMention(channelID string) string {
	if channelID == "" {
		return "*not set*"
	}
	return "<#" + channelID + ">"
}

// RoleMention formats a role id as a mention, or "not set"
func RoleMention(roleID string) string {
	if roleID == "" {
		return "*not set*"
	}
	return "<@&" + roleID + ">"
}
