package realtime

import (
	"context"
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/ward-alert-service/pkg/common"
	"liyu1981.xyz/ward-alert-service/pkg/models"
)

const DefaultPollInterval = 3 * time.Second

// Poller re-reads the pending alerts every Interval and emits the difference
// with what it delivered last. The first poll runs immediately.
type Poller struct {
	Source   AlertLister
	Interval time.Duration

	logger *zap.Logger
}

func NewPoller(source AlertLister, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		Source:   source,
		Interval: interval,
		logger:   common.GetCategoryLogger(common.LoggerNameRealtime, common.LoggerCategoryPolling),
	}
}

func (p *Poller) Watch(ctx context.Context, filter Filter) (Subscription, error) {
	sub, ctx := newSubscription(ctx)

	go func() {
		defer sub.finish()

		delivered := map[string]models.Alert{}
		if !p.poll(ctx, sub, filter, delivered) {
			return
		}

		ticker := time.NewTicker(p.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !p.poll(ctx, sub, filter, delivered) {
					return
				}
			}
		}
	}()

	return sub, nil
}

// poll updates delivered in place. It returns false once the subscription is gone.
func (p *Poller) poll(ctx context.Context, sub *subscription, filter Filter, delivered map[string]models.Alert) bool {
	alerts, err := p.Source.ListPending(ctx, filter.BedIDs)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Warn("Poll failed, keeping last state", zap.Error(err))
		return true
	}

	current := make(map[string]bool, len(alerts))
	for _, a := range alerts {
		if !filter.Match(a) || !a.Pending() {
			continue
		}
		current[a.ID] = true

		prev, seen := delivered[a.ID]
		switch {
		case !seen:
			if !sub.send(ctx, Event{Kind: models.AlertEventAdded, Alert: a}) {
				return false
			}
		case !prev.Same(a):
			if !sub.send(ctx, Event{Kind: models.AlertEventModified, Alert: a}) {
				return false
			}
		}
		delivered[a.ID] = a
	}

	for id, a := range delivered {
		if current[id] {
			continue
		}
		a.Confirmed = true
		if !sub.send(ctx, Event{Kind: models.AlertEventRemoved, Alert: a}) {
			return false
		}
		delete(delivered, id)
	}
	return true
}
