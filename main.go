package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GenshikenITB/SideQuestGST/sidequest"
	"github.com/GenshikenITB/SideQuestGST/sidequest/api"
	"github.com/GenshikenITB/SideQuestGST/sidequest/commands"
	"github.com/GenshikenITB/SideQuestGST/sidequest/logger"
	"github.com/GenshikenITB/SideQuestGST/sidequest/producer"
	"github.com/GenshikenITB/SideQuestGST/sidequest/qcache"
	"github.com/GenshikenITB/SideQuestGST/sidequest/sheetstore"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	slog.SetDefault(slog.New(logger.NewHandler("SideQuest")))

	slog.Info("Starting SideQuest gateway",
		slog.String("version", version),
		slog.String("commit", commit))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := sidequest.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := sheetstore.NewGoogleStore(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.CredentialsFile)
	if err != nil {
		slog.Error("Failed to connect to the sheet store", slog.Any("error", err))
		os.Exit(-1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Failed to connect to redis", slog.Any("error", err))
		os.Exit(-1)
	}
	defer rdb.Close()

	cache := qcache.New(rdb, store)

	bus := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Kafka.Brokers...),
		Topic:                  cfg.Kafka.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	defer bus.Close()

	b := sidequest.New(*cfg, version, commit)
	b.Cache = cache
	b.Producer = producer.New(bus, cache)

	h := handler.New()
	commands.Register(b, h)

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds))
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err))
		}
	}

	gwCtx, gwCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer gwCancel()
	if err = b.Client.OpenGateway(gwCtx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	apiServer := api.New(b.Producer, cache)
	g, gctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		return apiServer.Listen(cfg.API.Address)
	})

	slog.Info("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-s:
		slog.Info("Shutting down bot...")
	case <-gctx.Done():
		slog.Error("API server stopped unexpectedly")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("API shutdown failed", slog.Any("error", err))
	}
	if err := g.Wait(); err != nil {
		slog.Error("API server exited with error", slog.Any("error", err))
	}
}
