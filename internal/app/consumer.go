package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/anand05ms/Employee-tracker/internal/events"
	"github.com/anand05ms/Employee-tracker/internal/shared/connection"
)

const statsCounterTTL = 48 * time.Hour

// RunConsumer tails the status topic and maintains per-day counters of
// each transition type in redis. Dashboards read these without touching
// the API process.
func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.StatusChangedTopic,
		GroupID:        "employee-tracker-daily-stats",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumeStatusEvents(ctx, reader, redisClient, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}

func consumeStatusEvents(ctx context.Context, reader *kafkago.Reader, rdb *redis.Client, logger *zap.Logger) {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("fetch message failed", zap.Error(err))
			continue
		}

		var evt events.StatusChangedEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			// Poison messages get committed so the group moves on.
			logger.Warn("skip undecodable message",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		day := evt.Timestamp.Format("2006-01-02")
		key := "attendance:stats:" + day
		if err := rdb.HIncrBy(ctx, key, evt.Type, 1).Err(); err != nil {
			logger.Error("increment counter failed", zap.String("key", key), zap.Error(err))
			// Leave uncommitted; redis may be back on redelivery.
			continue
		}
		rdb.Expire(ctx, key, statsCounterTTL)

		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.Error("commit failed", zap.Error(err))
		}
	}
}
