package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/mnaeem99/econceptions-assignment/pkg/cache"
	"github.com/mnaeem99/econceptions-assignment/pkg/logger"
	"github.com/mnaeem99/econceptions-assignment/pkg/queue"
)

const (
	maxActivityEntries = 100
	activityTTL        = 30 * 24 * time.Hour
)

// ActivityWorker consumes the social events topic and maintains a capped
// per-user recent-activity sorted set in Redis, scored by event time.
type ActivityWorker struct {
	consumer *queue.KafkaConsumer
	redis    *cache.RedisClient
	logger   *logger.Logger
	cancel   context.CancelFunc
}

func NewActivityWorker(consumer *queue.KafkaConsumer, redis *cache.RedisClient, logger *logger.Logger) *ActivityWorker {
	return &ActivityWorker{
		consumer: consumer,
		redis:    redis,
		logger:   logger,
	}
}

func (w *ActivityWorker) Start(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	w.logger.Info("Activity worker started")

	return w.consumer.Subscribe(ctx, func(key string, value []byte) error {
		var event queue.Event
		if err := json.Unmarshal(value, &event); err != nil {
			w.logger.WithError(err).Warn("Skipping malformed event")
			return nil
		}
		if err := w.record(ctx, &event); err != nil {
			w.logger.WithError(err).WithField("event_type", event.Type).Error("Failed to record activity")
		}
		return nil
	})
}

func (w *ActivityWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
}

func (w *ActivityWorker) record(ctx context.Context, event *queue.Event) error {
	if event.ActorID == 0 {
		return nil
	}

	entry, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal activity entry: %w", err)
	}

	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	key := activityKey(event.ActorID)
	if err := w.redis.ZAdd(ctx, key, &redis.Z{
		Score:  float64(ts.UnixNano()),
		Member: string(entry),
	}); err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}

	// Keep only the newest entries and refresh the expiry.
	if err := w.redis.ZRemRangeByRank(ctx, key, 0, int64(-maxActivityEntries-1)); err != nil {
		return fmt.Errorf("failed to trim activity: %w", err)
	}
	if err := w.redis.Expire(ctx, key, activityTTL); err != nil {
		return fmt.Errorf("failed to refresh activity expiry: %w", err)
	}
	return nil
}

func activityKey(userID uint) string {
	return fmt.Sprintf("activity:user:%d", userID)
}
