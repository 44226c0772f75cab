package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"liyu1981.xyz/ward-alert-service/pkg/common"
	"liyu1981.xyz/ward-alert-service/pkg/models"
)

const (
	GlobalChannel = "ward:alerts"

	// Filters with more beds than this listen on GlobalChannel and filter locally.
	MaxBedChannels = 10
)

func BedChannel(bedID string) string {
	return GlobalChannel + ":bed:" + bedID
}

// RedisChannel is the live strategy. It is also the alert bus the lifecycle
// manager publishes to.
type RedisChannel struct {
	Client *redis.Client
	// Snapshot, when set, seeds each subscription with the current pending alerts.
	Snapshot AlertLister

	logger *zap.Logger
}

func NewRedisChannel(client *redis.Client, snapshot AlertLister) *RedisChannel {
	return &RedisChannel{
		Client:   client,
		Snapshot: snapshot,
		logger:   common.GetCategoryLogger(common.LoggerNameRealtime, common.LoggerCategoryLive),
	}
}

func (r *RedisChannel) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = r.Client.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Publish(ctx, GlobalChannel, payload)
		p.Publish(ctx, BedChannel(ev.Alert.BedID), payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish alert %s: %w", ev.Alert.ID, err)
	}
	return nil
}

func channelsFor(filter Filter) []string {
	if n := len(filter.BedIDs); n == 0 || n > MaxBedChannels {
		return []string{GlobalChannel}
	}
	return common.Mapper(filter.BedIDs, BedChannel)
}

func (r *RedisChannel) Watch(ctx context.Context, filter Filter) (Subscription, error) {
	channels := channelsFor(filter)
	pubsub := r.Client.Subscribe(ctx, channels...)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %v: %w", channels, err)
	}

	sub, ctx := newSubscription(ctx)
	messages := pubsub.Channel()

	go func() {
		defer sub.finish()
		defer pubsub.Close()

		if r.Snapshot != nil {
			pending, err := r.Snapshot.ListPending(ctx, filter.BedIDs)
			if err != nil {
				r.logger.Warn("Pending snapshot failed", zap.Error(err))
			}
			for _, a := range pending {
				if !sub.send(ctx, Event{Kind: models.AlertEventAdded, Alert: a}) {
					return
				}
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					r.logger.Warn("Dropping malformed alert event", zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				if !filter.Match(ev.Alert) {
					continue
				}
				if !sub.send(ctx, ev) {
					return
				}
			}
		}
	}()

	r.logger.Debug("Live subscription started", zap.Strings("channels", channels))
	return sub, nil
}
