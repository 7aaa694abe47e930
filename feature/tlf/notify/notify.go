package notify

import (
	"context"
	"encoding/json"
	"time"

	"tlf-sync/core/reconcile"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const publishTimeout = 2 * time.Second

// Publisher is the part of a Redis client the notifier uses.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Channels names the pub/sub channels of each notification.
type Channels struct {
	Snapshot  string
	Aggregate string
	Error     string
}

// ChannelsFor derives the channel names from a prefix such as "tlf:".
func ChannelsFor(prefix string) Channels {
	return Channels{
		Snapshot:  prefix + "snapshot",
		Aggregate: prefix + "snapshot:aggregate",
		Error:     prefix + "sync:error",
	}
}

// Redis publishes JSON payloads on Redis channels. Failures are logged and
// swallowed.
type Redis struct {
	client   Publisher
	channels Channels
	logger   *zap.Logger
}

// NewRedis creates a Redis notifier.
func NewRedis(client Publisher, channels Channels, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, channels: channels, logger: logger}
}

func (r *Redis) PublishSnapshot(ctx context.Context, snapshot reconcile.Snapshot) {
	if snapshot.Boards == nil {
		snapshot.Boards = []reconcile.BoardStock{}
	}
	r.publish(ctx, r.channels.Snapshot, snapshot)
}

func (r *Redis) PublishAggregate(ctx context.Context, aggregate reconcile.AggregateSnapshot) {
	r.publish(ctx, r.channels.Aggregate, aggregate)
}

func (r *Redis) PublishError(ctx context.Context, syncErr reconcile.SyncError) {
	r.publish(ctx, r.channels.Error, syncErr)
}

func (r *Redis) publish(ctx context.Context, channel string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		r.logger.Warn("Failed to encode notification", zap.String("channel", channel), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	receivers, err := r.client.Publish(ctx, channel, data).Result()
	if err != nil {
		r.logger.Warn("Failed to publish notification", zap.String("channel", channel), zap.Error(err))
		return
	}
	r.logger.Debug("Notification published", zap.String("channel", channel), zap.Int64("receivers", receivers))
}

// Log writes notifications to the log only.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a log-only notifier.
func NewLog(logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{logger: logger}
}

func (l *Log) PublishSnapshot(_ context.Context, snapshot reconcile.Snapshot) {
	l.logger.Info("Snapshot updated",
		zap.Time("fetched_at", snapshot.FetchedAt),
		zap.Int("boards", len(snapshot.Boards)),
	)
}

func (l *Log) PublishAggregate(_ context.Context, aggregate reconcile.AggregateSnapshot) {
	l.logger.Debug("Aggregate updated", zap.Int("keys", len(aggregate.QuantityByKey)))
}

func (l *Log) PublishError(_ context.Context, syncErr reconcile.SyncError) {
	l.logger.Error("Sync failed", zap.Time("timestamp", syncErr.Timestamp), zap.String("message", syncErr.Message))
}

// Multi fans a notification out to several notifiers in order.
type Multi []reconcile.Notifier

func (m Multi) PublishSnapshot(ctx context.Context, snapshot reconcile.Snapshot) {
	for _, n := range m {
		n.PublishSnapshot(ctx, snapshot)
	}
}

func (m Multi) PublishAggregate(ctx context.Context, aggregate reconcile.AggregateSnapshot) {
	for _, n := range m {
		n.PublishAggregate(ctx, aggregate)
	}
}

func (m Multi) PublishError(ctx context.Context, syncErr reconcile.SyncError) {
	for _, n := range m {
		n.PublishError(ctx, syncErr)
	}
}
