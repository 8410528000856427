package listeners

import (
	"log/slog"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
	"github.com/impulse/expbot/expbot/progression"
)

// MessageListener pays the chat grant for every guild message from a human.
func MessageListener(engine *progression.Engine) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.GuildMessageCreate) {
		author := e.Message.Author
		if author.Bot || author.System {
			return
		}

		result, err := engine.HandleChatMessage(author.ID.String(), e.ChannelID.String())
		if err != nil {
			slog.Error("Chat grant failed",
				slog.String("type", "exp"),
				slog.String("user_id", author.ID.String()),
				slog.Any("error", err))
			return
		}
		if !result.Throttled {
			slog.Debug("Chat grant",
				slog.String("type", "exp"),
				slog.String("user_id", result.UserID),
				slog.Int64("exp", result.Exp))
		}
	})
}
