package commands

import (
	"fmt"
	"math"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"
	"github.com/impulse/expbot/expbot"
	"github.com/impulse/expbot/expbot/config"
	"github.com/impulse/expbot/expbot/progression"
	"github.com/impulse/expbot/expbot/utils"
)

var ExpLadder = discord.SlashCommandCreate{
	Name:        "expladder",
	Description: "🏆 Show the EXP ladder",
}

func ExpLadderHandler(b *expbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		standings := b.Engine.TopUsers(0)
		if len(standings) == 0 {
			return utils.EH.CreateInfoEmbed(e, "🏆 EXP Ladder", "Nobody has earned any EXP yet.")
		}

		totalPages := int(math.Ceil(float64(len(standings)) / float64(config.LadderPerPage)))

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				startIdx := page * config.LadderPerPage
				endIdx := min(startIdx+config.LadderPerPage, len(standings))

				embed.
					SetTitle("🏆 EXP Ladder").
					SetDescription(formatLadderPage(standings[startIdx:endIdx])).
					SetColor(config.EmbedDefaultColor).
					SetFooter(fmt.Sprintf("Page %d/%d • %d ranked users", page+1, totalPages, len(standings)), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}

func formatLadderPage(standings []progression.Standing) string {
	var sb strings.Builder
	for _, s := range standings {
		sb.WriteString(fmt.Sprintf("**#%d** %s | Level %d | %s (next level at %s)\n",
			s.Rank,
			mention(s.UserID),
			s.Level,
			utils.FormatExp(s.Exp),
			utils.FormatNumber(s.NextLevelExp),
		))
	}
	return sb.String()
}
