package listeners

import (
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/impulse/expbot/expbot/config"
	"github.com/impulse/expbot/expbot/progression"
)

// MessageSender is the part of the REST client the notifier needs.
type MessageSender interface {
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
}

// ChannelLookup resolves where a user last spoke.
type ChannelLookup interface {
	LastChannel(userID string) (string, bool)
}

// DiscordNotifier posts progression events. Level-ups and milestones go to the channel the
// user last spoke in; announcements and double EXP changes go to the announce channel.
type DiscordNotifier struct {
	sender          MessageSender
	channels        ChannelLookup
	announceChannel snowflake.ID
}

func NewDiscordNotifier(sender MessageSender, channels ChannelLookup, announceChannel snowflake.ID) *DiscordNotifier {
	return &DiscordNotifier{sender: sender, channels: channels, announceChannel: announceChannel}
}

var (
	_ progression.Notifier           = (*DiscordNotifier)(nil)
	_ progression.DoubleExpNotifier  = (*DiscordNotifier)(nil)
	_ progression.AnnouncingNotifier = (*DiscordNotifier)(nil)
)

func (n *DiscordNotifier) OnLevelUp(userID string, _, newLevel int) {
	n.sendToUserChannel(userID, discord.Embed{
		Description: fmt.Sprintf("🎉 <@%s> reached **level %d**!", userID, newLevel),
		Color:       config.SuccessColor,
	})
}

func (n *DiscordNotifier) OnMilestone(userID string, level int, bonus int64) {
	n.sendToUserChannel(userID, discord.Embed{
		Description: fmt.Sprintf("🎁 <@%s> earned a **%d %s** bonus for reaching level %d!", userID, bonus, config.ExpUnit, level),
		Color:       config.InfoColor,
	})
}

func (n *DiscordNotifier) OnAnnouncement(userID string, level int) {
	n.send(n.announceChannel, discord.Embed{
		Title:       "🏆 Level milestone",
		Description: fmt.Sprintf("<@%s> just hit **level %d**. Congratulations!", userID, level),
		Color:       config.EmbedDefaultColor,
	})
}

func (n *DiscordNotifier) OnDoubleExpChanged(cfg progression.DoubleExpConfig, expired bool) {
	var description string
	switch {
	case expired:
		description = "Double EXP has ended."
	case !cfg.Enabled:
		description = "Double EXP has been turned off."
	case cfg.EndTime == nil:
		description = "✨ Double EXP is now active until further notice!"
	default:
		description = fmt.Sprintf("✨ Double EXP is now active until <t:%d:f>!", cfg.EndTime.Unix())
	}
	n.send(n.announceChannel, discord.Embed{
		Description: description,
		Color:       config.WarningColor,
	})
}

func (n *DiscordNotifier) sendToUserChannel(userID string, embed discord.Embed) {
	raw, ok := n.channels.LastChannel(userID)
	if !ok {
		return
	}
	channelID, err := snowflake.Parse(raw)
	if err != nil {
		slog.Warn("Invalid notification channel",
			slog.String("type", "sys"),
			slog.String("channel_id", raw),
			slog.Any("error", err))
		return
	}
	n.send(channelID, embed)
}

func (n *DiscordNotifier) send(channelID snowflake.ID, embed discord.Embed) {
	if channelID == 0 || n.sender == nil {
		return
	}
	_, err := n.sender.CreateMessage(channelID, discord.MessageCreate{
		Embeds: []discord.Embed{embed},
		AllowedMentions: &discord.AllowedMentions{
			Parse: []discord.AllowedMentionType{discord.AllowedMentionTypeUsers},
		},
	})
	if err != nil {
		slog.Error("Failed to send notification",
			slog.String("type", "sys"),
			slog.String("channel_id", channelID.String()),
			slog.Any("error", err))
	}
}
