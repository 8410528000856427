package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"
	"github.com/impulse/expbot/expbot"
)

var Commands = []discord.ApplicationCommandCreate{
	Exp,
	ExpLadder,
	ExpHelp,
	GiveExp,
	TakeExp,
	ResetExp,
	ResetExpAll,
	ToggleDoubleExp,
}

// isAdmin accepts configured admins and members who can manage the guild.
func isAdmin(b *expbot.Bot, e *handler.CommandEvent) bool {
	if b.Cfg.IsAdmin(e.User().ID) {
		return true
	}
	member := e.Member()
	return member != nil && member.Permissions.Has(discord.PermissionManageGuild)
}

func mention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}

func mentionID(id snowflake.ID) string {
	return mention(id.String())
}
