package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/impulse/expbot/expbot"
	"github.com/impulse/expbot/expbot/config"
	"github.com/impulse/expbot/expbot/utils"
)

var Exp = discord.SlashCommandCreate{
	Name:        "exp",
	Description: "📈 View your EXP, level and progress",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "User to look up",
			Required:    false,
		},
	},
}

func ExpHandler(b *expbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		target := e.User()
		if u, ok := e.SlashCommandInteractionData().OptUser("user"); ok {
			target = u
		}
		if target.Bot {
			return utils.EH.CreateEphemeralError(e, "Bots don't earn EXP.")
		}

		info, err := b.Engine.LevelInfo(target.ID.String())
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to look up EXP for that user.")
		}

		description := fmt.Sprintf("```ansi\n"+
			"\x1b[1;36mLevel:\x1b[0m %d\n"+
			"\x1b[1;33mEXP:\x1b[0m %s\n"+
			"\x1b[0;37m%s\x1b[0m\n"+
			"\n"+
			"%s to level %d (at %s)\n"+
			"```",
			info.Level,
			utils.FormatExp(info.CurrentExp),
			utils.ProgressBar(info.ProgressPercentage),
			utils.FormatExp(info.ExpNeeded),
			info.Level+1,
			utils.FormatNumber(info.ExpForNextLevel),
		)

		var notes []string
		if status := b.Engine.DoubleExpStatus(); status.Enabled {
			notes = append(notes, "✨ Double EXP is active"+doubleExpUntil(status.EndTime))
		}
		if target.ID == e.User().ID {
			if remaining := b.Engine.CooldownRemaining(target.ID.String()); remaining > 0 {
				notes = append(notes, fmt.Sprintf("⏳ Next chat EXP in %s", utils.FormatDuration(remaining)))
			}
		}
		if len(notes) > 0 {
			description += strings.Join(notes, "\n")
		}

		now := time.Now()
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       fmt.Sprintf("📈 %s's EXP", target.Username),
				Description: description,
				Color:       config.EmbedDefaultColor,
				Footer: &discord.EmbedFooter{
					Text: fmt.Sprintf("Requested by %s", e.User().Username),
				},
				Timestamp: &now,
			}},
		})
	}
}

func doubleExpUntil(end *time.Time) string {
	if end == nil {
		return " until further notice"
	}
	return fmt.Sprintf(" until <t:%d:f> (<t:%d:R>)", end.Unix(), end.Unix())
}

var ExpHelp = discord.SlashCommandCreate{
	Name:        "exphelp",
	Description: "❓ How EXP and levels work",
}

func ExpHelpHandler(b *expbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		curve := b.Engine.Curve()
		opts := b.Engine.Options()
		var sb strings.Builder
		sb.WriteString("**Earning EXP**\n")
		sb.WriteString(fmt.Sprintf("• Chatting earns %s, at most once every %s.\n",
			utils.FormatExp(config.ChatMessageExp), utils.FormatDuration(opts.Cooldown)))
		sb.WriteString(fmt.Sprintf("• Staying active pays %s every %s.\n",
			utils.FormatExp(opts.ActivityExp), utils.FormatDuration(b.Cfg.TickPeriod())))
		sb.WriteString(fmt.Sprintf("• During double EXP every grant is multiplied by %d.\n\n", opts.DoubleExpFactor))
		sb.WriteString("**Levels**\n")
		sb.WriteString(fmt.Sprintf("• Level 1 needs %s, each level after costs %.1fx more.\n",
			utils.FormatExp(curve.MinLevelExp()), curve.Multiplier()))
		sb.WriteString(fmt.Sprintf("• Every %d levels pays a bonus of level × %d EXP.\n\n",
			opts.MilestoneInterval, opts.BonusMultiplier))
		sb.WriteString("**Commands**\n")
		sb.WriteString("`/exp [user]` `/expladder` `/exphelp`\n")
		sb.WriteString("Staff: `/giveexp` `/takeexp` `/resetexp` `/resetexpall` `/toggledoubleexp`")

		return utils.EH.CreateInfoEmbed(e, "❓ EXP Help", sb.String())
	}
}
