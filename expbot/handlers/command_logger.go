package handlers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/handler"
	"github.com/impulse/expbot/expbot/config"
	"github.com/impulse/expbot/expbot/logger"
)

const slowCommandThreshold = 2 * time.Second

// WrapWithLogging wraps a command handler with logging functionality
func WrapWithLogging(name string, h handler.CommandHandler) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		start := time.Now()

		slog.Info("Command started",
			slog.String("type", "cmd"),
			slog.String("name", name),
			slog.String("user_id", e.User().ID.String()),
			slog.String("user_name", e.User().Username),
			slog.String("channel_id", e.ChannelID().String()),
		)

		done := make(chan error, 1)
		go func() {
			done <- h(e)
		}()

		select {
		case err := <-done:
			duration := time.Since(start)
			logger.LogCommand(name, duration, err)
			if err == nil && duration > slowCommandThreshold {
				slog.Warn("Command executed slowly",
					slog.String("type", "cmd"),
					slog.String("name", name),
					slog.String("user_name", e.User().Username),
					slog.String("status", "slow"),
					slog.Duration("took", duration),
				)
			}
			return err

		case <-time.After(config.CommandTimeout):
			slog.Error("Command timed out",
				slog.String("type", "cmd"),
				slog.String("name", name),
				slog.String("user_id", e.User().ID.String()),
				slog.String("user_name", e.User().Username),
				slog.String("status", "timeout"),
				slog.Duration("timeout", config.CommandTimeout),
			)
			return fmt.Errorf("command %s timed out after %s", name, config.CommandTimeout)
		}
	}
}
