package realtime

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"liyu1981.xyz/ward-alert-service/pkg/common"
	"liyu1981.xyz/ward-alert-service/pkg/models"
)

const (
	DefaultDemoInterval    = 15 * time.Second
	DefaultDemoProbability = 0.5
)

var ErrDemoInProduction = errors.New("demo alerts are disabled in production")

// BedSource lists the beds demo alerts may be raised on.
type BedSource func(ctx context.Context) ([]string, error)

// DemoChannel invents help requests so dashboards can be exercised without a
// backend. Every Interval, with Probability, one alert on a random known bed.
type DemoChannel struct {
	Beds        BedSource
	Interval    time.Duration
	Probability float64
	Seed        int64

	logger *zap.Logger
}

func NewDemoChannel(beds BedSource) (*DemoChannel, error) {
	if common.IsProduction() {
		return nil, ErrDemoInProduction
	}
	return &DemoChannel{
		Beds:        beds,
		Interval:    DefaultDemoInterval,
		Probability: DefaultDemoProbability,
		logger:      common.GetCategoryLogger(common.LoggerNameRealtime, common.LoggerCategoryDemo),
	}, nil
}

func (d *DemoChannel) Watch(ctx context.Context, filter Filter) (Subscription, error) {
	seed := d.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	sub, ctx := newSubscription(ctx)

	go func() {
		defer sub.finish()

		ticker := time.NewTicker(d.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if rng.Float64() >= d.Probability {
					continue
				}
				beds := filter.BedIDs
				if len(beds) == 0 && d.Beds != nil {
					var err error
					if beds, err = d.Beds(ctx); err != nil {
						d.logger.Warn("Demo bed lookup failed", zap.Error(err))
						continue
					}
				}
				if len(beds) == 0 {
					continue
				}
				alert := models.Alert{
					ID:          "demo-" + uuid.NewString(),
					BedID:       beds[rng.Intn(len(beds))],
					PatientName: "Demo patient",
					Kind:        models.AlertKindHelpRequest,
					CreatedAt:   time.Now().UTC(),
				}
				if !sub.send(ctx, Event{Kind: models.AlertEventAdded, Alert: alert}) {
					return
				}
			}
		}
	}()

	return sub, nil
}
