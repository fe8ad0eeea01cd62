package moderation

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commandInteraction(channelID string, data discordgo.ApplicationCommandInteractionData) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:      discordgo.InteractionApplicationCommand,
			GuildID:   "100",
			ChannelID: channelID,
			Data:      data,
		},
	}
}

func TestTargetChannelID(t *testing.T) {
	current := commandInteraction("200", discordgo.ApplicationCommandInteractionData{Name: "lock"})
	assert.Equal(t, "200", targetChannelID(current))

	picked := commandInteraction("200", discordgo.ApplicationCommandInteractionData{
		Name: "lock",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "channel", Type: discordgo.ApplicationCommandOptionChannel, Value: "300"},
		},
	})
	assert.Equal(t, "300", targetChannelID(picked))
}

func TestMemberRoles(t *testing.T) {
	data := discordgo.ApplicationCommandInteractionData{
		Resolved: &discordgo.ApplicationCommandInteractionDataResolved{
			Members: map[string]*discordgo.Member{
				"42": {Roles: []string{"7", "8"}},
			},
		},
	}

	roles, err := memberRoles(data, "42")
	require.NoError(t, err)
	assert.Equal(t, []string{"7", "8"}, roles)

	_, err = memberRoles(data, "43")
	assert.ErrorIs(t, err, errNotMember)

	_, err = memberRoles(discordgo.ApplicationCommandInteractionData{}, "42")
	assert.ErrorIs(t, err, errNotMember)
}

func TestRoleName(t *testing.T) {
	data := discordgo.ApplicationCommandInteractionData{
		Resolved: &discordgo.ApplicationCommandInteractionDataResolved{
			Roles: map[string]*discordgo.Role{
				"7": {ID: "7", Name: "Artiste"},
			},
		},
	}
	assert.Equal(t, "Artiste", roleName(data, "7"))
	assert.Equal(t, "<@&8>", roleName(data, "8"))
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "<#200> locked.", lockMessage("200", true))
	assert.Equal(t, "<#200> unlocked.", lockMessage("200", false))
	assert.Equal(t, "Artiste given to <@42>.", roleMessage("Artiste", "42", true))
	assert.Equal(t, "Artiste removed from <@42>.", roleMessage("Artiste", "42", false))
}
