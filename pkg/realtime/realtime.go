// Package realtime surfaces alert changes to nurse dashboards. Three channels
// share one contract: Redis pub/sub when available, polling the store
// otherwise, and a demo generator for running without a backend.
package realtime

import (
	"context"
	"errors"
	"sort"
	"sync"

	"liyu1981.xyz/ward-alert-service/pkg/models"
)

type Event = models.AlertEvent

// Filter restricts a subscription to a set of beds. Empty means every bed.
type Filter struct {
	BedIDs []string
}

func (f Filter) Match(alert models.Alert) bool {
	if len(f.BedIDs) == 0 {
		return true
	}
	for _, id := range f.BedIDs {
		if id == alert.BedID {
			return true
		}
	}
	return false
}

// Subscription delivers events until Stop is called or the Watch context ends.
// Events is closed once the subscription has released its resources.
type Subscription interface {
	Events() <-chan Event
	Stop()
}

type Channel interface {
	Watch(ctx context.Context, filter Filter) (Subscription, error)
}

// AlertLister is the pending-alert query the channels read snapshots from.
type AlertLister interface {
	ListPending(ctx context.Context, bedIDs []string) ([]models.Alert, error)
}

var ErrNoChannel = errors.New("no realtime channel available")

type subscription struct {
	events chan Event
	done   chan struct{}
	cancel context.CancelFunc
	once   sync.Once
}

func newSubscription(ctx context.Context) (*subscription, context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	return &subscription{
		events: make(chan Event, 16),
		done:   make(chan struct{}),
		cancel: cancel,
	}, ctx
}

func (s *subscription) Events() <-chan Event {
	return s.events
}

// Stop is idempotent and returns after the delivery goroutine has exited.
func (s *subscription) Stop() {
	s.once.Do(s.cancel)
	<-s.done
}

func (s *subscription) send(ctx context.Context, ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// finish is deferred by the delivery goroutine.
func (s *subscription) finish() {
	s.cancel()
	close(s.events)
	close(s.done)
}

// PendingSet is a dashboard's local view: events are applied by alert id.
type PendingSet struct {
	mu     sync.RWMutex
	alerts map[string]models.Alert
}

func NewPendingSet() *PendingSet {
	return &PendingSet{alerts: map[string]models.Alert{}}
}

func (p *PendingSet) Apply(ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ev.Kind == models.AlertEventRemoved || !ev.Alert.Pending() {
		delete(p.alerts, ev.Alert.ID)
		return
	}
	p.alerts[ev.Alert.ID] = ev.Alert
}

// List returns the pending alerts, oldest first.
func (p *PendingSet) List() []models.Alert {
	p.mu.RLock()
	defer p.mu.RUnlock()

	alerts := make([]models.Alert, 0, len(p.alerts))
	for _, a := range p.alerts {
		alerts = append(alerts, a)
	}
	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].CreatedAt.Before(alerts[j].CreatedAt)
	})
	return alerts
}

func (p *PendingSet) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.alerts)
}
