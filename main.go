package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/impulse/expbot/expbot"
	"github.com/impulse/expbot/expbot/commands"
	"github.com/impulse/expbot/expbot/config"
	"github.com/impulse/expbot/expbot/handlers"
	"github.com/impulse/expbot/expbot/listeners"
	"github.com/impulse/expbot/expbot/logger"
	"github.com/impulse/expbot/expbot/progression"
	"golang.org/x/sync/errgroup"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	slog.SetDefault(slog.New(logger.NewHandler()))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config (.toml or .yaml)")
	flag.Parse()

	cfg, err := expbot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(-1)
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Log.AddSource)

	slog.Info("Starting ExpBot",
		slog.String("type", "sys"),
		slog.String("version", version),
		slog.String("commit", commit),
		slog.String("storage", cfg.Storage.Driver))

	if err := run(*cfg, *shouldSyncCommands); err != nil {
		slog.Error("ExpBot stopped with an error", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("ExpBot stopped", slog.String("type", "sys"))
}

func run(cfg expbot.Config, syncCommands bool) error {
	setupCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, closeStore, err := expbot.OpenStore(setupCtx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	opts, err := cfg.EngineOptions()
	if err != nil {
		return fmt.Errorf("engine options: %w", err)
	}
	engine, err := progression.NewEngine(store, opts)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	if err := engine.Load(setupCtx); err != nil {
		return fmt.Errorf("load engine: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownFlushTimeout)
		defer cancel()
		if err := engine.Close(ctx); err != nil {
			slog.Error("Failed to flush EXP on shutdown", slog.String("type", "db"), slog.Any("error", err))
		}
	}()

	b := expbot.New(cfg, engine, version, commit)

	h := handler.New()
	h.Command("/exp", handlers.WrapWithLogging("exp", commands.ExpHandler(b)))
	h.Command("/expladder", handlers.WrapWithLogging("expladder", commands.ExpLadderHandler(b)))
	h.Command("/exphelp", handlers.WrapWithLogging("exphelp", commands.ExpHelpHandler(b)))
	// Admin commands
	h.Command("/giveexp", handlers.WrapWithLogging("giveexp", commands.GiveExpHandler(b)))
	h.Command("/takeexp", handlers.WrapWithLogging("takeexp", commands.TakeExpHandler(b)))
	h.Command("/resetexp", handlers.WrapWithLogging("resetexp", commands.ResetExpHandler(b)))
	h.Command("/resetexpall", handlers.WrapWithLogging("resetexpall", commands.ResetExpAllHandler(b)))
	h.Command("/toggledoubleexp", handlers.WrapWithLogging("toggledoubleexp", commands.ToggleDoubleExpHandler(b)))

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady), listeners.MessageListener(engine)); err != nil {
		return fmt.Errorf("setup bot: %w", err)
	}
	engine.SetNotifier(listeners.NewDiscordNotifier(b.Client.Rest(), engine, cfg.Bot.AnnounceChannel))

	if syncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds),
		)
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err),
				slog.String("component", "command_sync"),
				slog.String("status", "failed"),
			)
		}
	}

	gatewayCtx, gatewayCancel := context.WithTimeout(context.Background(), config.GatewayConnectTimeout)
	defer gatewayCancel()
	if err = b.Client.OpenGateway(gatewayCtx); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.RunActivityTicker(gctx, cfg.TickPeriod())
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down bot...", slog.String("type", "sys"))

		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(closeCtx)
		return nil
	})

	slog.Info("Bot is running. Press CTRL-C to exit.", slog.String("type", "sys"))
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
