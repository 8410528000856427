package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/impulse/expbot/expbot"
	"github.com/impulse/expbot/expbot/config"
	"github.com/impulse/expbot/expbot/progression"
	"github.com/impulse/expbot/expbot/utils"
)

const noPermission = "You need to be an EXP admin to use this command."

var userOption = discord.ApplicationCommandOptionUser{
	Name:        "user",
	Description: "Target user",
	Required:    true,
}

var amountOption = discord.ApplicationCommandOptionInt{
	Name:        "amount",
	Description: "Amount of EXP",
	Required:    true,
	MinValue:    &[]int{1}[0],
}

var reasonOption = discord.ApplicationCommandOptionString{
	Name:        "reason",
	Description: "Reason shown in the audit log",
	Required:    false,
	MaxLength:   &[]int{300}[0],
}

var GiveExp = discord.SlashCommandCreate{
	Name:        "giveexp",
	Description: "➕ Give EXP to a user",
	Options:     []discord.ApplicationCommandOption{userOption, amountOption, reasonOption},
}

func GiveExpHandler(b *expbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !isAdmin(b, e) {
			return utils.EH.CreateEphemeralError(e, noPermission)
		}
		data := e.SlashCommandInteractionData()
		target := data.User("user")
		if target.Bot {
			return utils.EH.CreateEphemeralError(e, "Bots don't earn EXP.")
		}

		result, err := b.Engine.Grant(target.ID.String(), int64(data.Int("amount")), data.String("reason"), e.User().ID.String())
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, userMessage(err))
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Gave %s to %s", utils.FormatExp(result.Gained), mentionID(target.ID)))
		if result.Doubled {
			sb.WriteString(" (double EXP)")
		}
		sb.WriteString(fmt.Sprintf(".\nThey now have %s.", utils.FormatExp(result.Exp)))
		if result.NewLevel > result.OldLevel {
			sb.WriteString(fmt.Sprintf("\nLevel %d → %d", result.OldLevel, result.NewLevel))
		}
		for _, m := range result.Milestones {
			sb.WriteString(fmt.Sprintf("\n🎁 Level %d bonus: %s", m.Level, utils.FormatExp(m.Granted)))
		}
		return utils.EH.CreateSuccessEmbed(e, sb.String())
	}
}

var TakeExp = discord.SlashCommandCreate{
	Name:        "takeexp",
	Description: "➖ Take EXP from a user",
	Options:     []discord.ApplicationCommandOption{userOption, amountOption, reasonOption},
}

func TakeExpHandler(b *expbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !isAdmin(b, e) {
			return utils.EH.CreateEphemeralError(e, noPermission)
		}
		data := e.SlashCommandInteractionData()
		target := data.User("user")
		amount := int64(data.Int("amount"))

		if !b.Engine.Has(target.ID.String(), amount) {
			return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("%s only has %s.",
				mentionID(target.ID), utils.FormatExp(b.Engine.Read(target.ID.String()))))
		}

		balance, err := b.Engine.Take(target.ID.String(), amount, data.String("reason"), e.User().ID.String())
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, userMessage(err))
		}
		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Took %s from %s. They now have %s.",
			utils.FormatExp(amount), mentionID(target.ID), utils.FormatExp(balance)))
	}
}

var ResetExp = discord.SlashCommandCreate{
	Name:        "resetexp",
	Description: "♻️ Reset a user's EXP to zero",
	Options:     []discord.ApplicationCommandOption{userOption, reasonOption},
}

func ResetExpHandler(b *expbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !isAdmin(b, e) {
			return utils.EH.CreateEphemeralError(e, noPermission)
		}
		data := e.SlashCommandInteractionData()
		target := data.User("user")

		if err := b.Engine.SetAbsolute(target.ID.String(), config.DefaultExp, data.String("reason"), e.User().ID.String()); err != nil {
			return utils.EH.CreateErrorEmbed(e, userMessage(err))
		}
		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Reset %s to %s.", mentionID(target.ID), utils.FormatExp(0)))
	}
}

var ResetExpAll = discord.SlashCommandCreate{
	Name:        "resetexpall",
	Description: "⚠️ Reset EXP for everyone",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionBool{
			Name:        "confirm",
			Description: "Set to true to wipe the whole ladder",
			Required:    true,
		},
		reasonOption,
	},
}

func ResetExpAllHandler(b *expbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !isAdmin(b, e) {
			return utils.EH.CreateEphemeralError(e, noPermission)
		}
		data := e.SlashCommandInteractionData()
		if !data.Bool("confirm") {
			return utils.EH.CreateEphemeralError(e, "Nothing was reset. Pass `confirm: true` to wipe all EXP.")
		}

		if err := b.Engine.ResetAll(data.String("reason"), e.User().ID.String()); err != nil {
			return utils.EH.CreateErrorEmbed(e, userMessage(err))
		}
		return utils.EH.CreateSuccessEmbed(e, "All EXP has been reset.")
	}
}

var ToggleDoubleExp = discord.SlashCommandCreate{
	Name:        "toggledoubleexp",
	Description: "✨ Toggle double EXP, optionally for a limited time",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "duration",
			Description: "e.g. \"30 minutes\", \"2 hours\", \"1 day\" or \"off\"",
			Required:    false,
		},
	},
}

func ToggleDoubleExpHandler(b *expbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !isAdmin(b, e) {
			return utils.EH.CreateEphemeralError(e, noPermission)
		}
		input := strings.TrimSpace(e.SlashCommandInteractionData().String("duration"))

		var (
			cfg progression.DoubleExpConfig
			err error
		)
		switch {
		case input == "":
			cfg, err = b.Engine.ToggleDoubleExp()
		case strings.EqualFold(input, "off"):
			cfg, err = b.Engine.DisableDoubleExp()
		default:
			d, parseErr := progression.ParseDoubleExpDuration(input)
			if parseErr != nil {
				return utils.EH.CreateEphemeralError(e, userMessage(parseErr))
			}
			cfg, err = b.Engine.EnableDoubleExp(d)
		}
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, userMessage(err))
		}

		if !cfg.Enabled {
			return utils.EH.CreateSuccessEmbed(e, "Double EXP is now **off**.")
		}
		return utils.EH.CreateSuccessEmbed(e, "✨ Double EXP is now **on**"+doubleExpUntil(cfg.EndTime)+".")
	}
}

var validationErrors = []error{
	progression.ErrInvalidAmount,
	progression.ErrInvalidUser,
	progression.ErrInvalidExp,
	progression.ErrInvalidDuration,
}

// userMessage turns engine errors into something safe to show in chat.
func userMessage(err error) string {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return "Invalid input: " + target.Error() + "."
		}
	}
	if errors.Is(err, progression.ErrEngineClosed) {
		return "The EXP system is shutting down, try again shortly."
	}
	return "Something went wrong, please try again later."
}
