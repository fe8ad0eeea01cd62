package common

import (
	"github.com/bwmarrin/discordgo"
)

// HasPermission reports whether the member behind an interaction holds perm.
// Administrators hold every permission.
func HasPermission(i *discordgo.InteractionCreate, perm int64) bool {
	if i.Member == nil {
		return false
	}
	perms := i.Member.Permissions
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return perms&perm == perm
}

// IsUserAdmin reports whether the member may change server settings
func IsUserAdmin(i *discordgo.InteractionCreate) bool {
	return HasPermission(i, discordgo.PermissionManageGuild)
}

// InteractionUser returns the user behind an interaction in a guild or a DM
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// DisplayName returns the member's server nickname, global name or username
func DisplayName(member *discordgo.Member) string {
	if member == nil {
		return ""
	}
	if member.Nick != "" {
		return member.Nick
	}
	if member.User == nil {
		return ""
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}
