package realtime

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"liyu1981.xyz/ward-alert-service/pkg/common"
)

type Strategy string

const (
	StrategyLive    Strategy = "live"
	StrategyPolling Strategy = "polling"
	StrategyDemo    Strategy = "demo"
)

type Options struct {
	Redis        *redis.Client
	Source       AlertLister
	PollInterval time.Duration
	DemoBeds     BedSource
}

// Select prefers Redis when it answers PING, then polling Source, then the
// demo generator when DemoBeds is set.
func Select(ctx context.Context, opts Options) (Channel, Strategy, error) {
	logger := common.GetLoggerWith(common.LoggerNameRealtime)

	if opts.Redis != nil {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := opts.Redis.Ping(pctx).Err()
		cancel()
		if err == nil {
			logger.Info("Realtime channel selected", zap.String("strategy", string(StrategyLive)))
			return NewRedisChannel(opts.Redis, opts.Source), StrategyLive, nil
		}
		logger.Warn("Redis unavailable, falling back", zap.Error(err))
	}

	if opts.Source != nil {
		logger.Info("Realtime channel selected", zap.String("strategy", string(StrategyPolling)))
		return NewPoller(opts.Source, opts.PollInterval), StrategyPolling, nil
	}

	if opts.DemoBeds != nil {
		demo, err := NewDemoChannel(opts.DemoBeds)
		if err != nil {
			return nil, "", err
		}
		logger.Info("Realtime channel selected", zap.String("strategy", string(StrategyDemo)))
		return demo, StrategyDemo, nil
	}

	return nil, "", ErrNoChannel
}
