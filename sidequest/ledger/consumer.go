package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/GenshikenITB/SideQuestGST/sidequest/event"
	"github.com/GenshikenITB/SideQuestGST/sidequest/logger"
	"github.com/segmentio/kafka-go"
)

// Consumer drains the topic through the single writer. Offsets are
// committed after the apply, never atomically with it, so a crash between
// the store write and the commit re-delivers the event; appends then
// duplicate and status overwrites are idempotent.
type Consumer struct {
	reader *kafka.Reader
	writer *Writer
}

func NewConsumer(brokers []string, topic, group string, writer *Writer) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        brokers,
			Topic:          topic,
			GroupID:        group,
			StartOffset:    kafka.FirstOffset,
			MinBytes:       1,
			MaxBytes:       1 << 20,
			CommitInterval: 0, // synchronous commits
		}),
		writer: writer,
	}
}

// Run processes events one at a time until the context is canceled. No
// single event failure stops the loop: decode errors and apply errors are
// logged, and the offset advances regardless. Store outages therefore drop
// mutations silently; that weakness is part of the contract.
func (c *Consumer) Run(ctx context.Context) error {
	slog.Info("Ledger consumer ready",
		slog.String("type", "bus"),
		slog.String("topic", c.reader.Config().Topic))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			slog.Error("Fetch failed",
				slog.String("type", "bus"),
				slog.Any("error", err))
			continue
		}

		c.process(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			slog.Error("Offset commit failed",
				slog.String("type", "bus"),
				slog.Any("error", err))
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	env, err := event.Unmarshal(msg.Value)
	if err != nil {
		slog.Error("Dropping malformed envelope",
			slog.String("type", "bus"),
			slog.Int64("offset", msg.Offset),
			slog.Any("error", err))
		return
	}

	start := time.Now()
	err = c.writer.Apply(ctx, env)
	logger.LogEvent(env.EventType, time.Since(start), err)
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
