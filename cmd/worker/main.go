package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GenshikenITB/SideQuestGST/sidequest"
	"github.com/GenshikenITB/SideQuestGST/sidequest/ledger"
	"github.com/GenshikenITB/SideQuestGST/sidequest/logger"
	"github.com/GenshikenITB/SideQuestGST/sidequest/sheetstore"
	"github.com/GenshikenITB/SideQuestGST/sidequest/sweeper"
)

var (
	version = "dev"
	commit  = "unknown"
)

// The worker is the single writer: one consumer group member applying bus
// events to the sheet, plus the deadline sweeper. Run exactly one instance.
func main() {
	slog.SetDefault(slog.New(logger.NewHandler("SheetWorker")))

	slog.Info("Starting SideQuest sheet worker",
		slog.String("version", version),
		slog.String("commit", commit))

	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := sidequest.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	setupCtx, setupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer setupCancel()

	store, err := sheetstore.NewGoogleStore(setupCtx, cfg.Sheets.SpreadsheetID, cfg.Sheets.CredentialsFile)
	if err != nil {
		slog.Error("Failed to connect to the sheet store", slog.Any("error", err))
		os.Exit(-1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	interval := time.Duration(cfg.Sweeper.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go sweeper.New(store).Run(ctx, interval)

	consumer := ledger.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Group, ledger.NewWriter(store))
	defer func() {
		if err := consumer.Close(); err != nil {
			slog.Error("Consumer close failed", slog.Any("error", err))
		}
	}()

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Consumer stopped", slog.Any("error", err))
		os.Exit(-1)
	}

	slog.Info("Sheet worker shut down cleanly")
}
