package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"liyu1981.xyz/ward-alert-service/pkg/models"
)

// fakeLister serves a mutable pending list.
type fakeLister struct {
	mu     sync.Mutex
	alerts []models.Alert
	err    error
}

func (f *fakeLister) set(alerts ...models.Alert) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = alerts
}

func (f *fakeLister) ListPending(_ context.Context, bedIDs []string) ([]models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	filter := Filter{BedIDs: bedIDs}
	var out []models.Alert
	for _, a := range f.alerts {
		if filter.Match(a) && a.Pending() {
			out = append(out, a)
		}
	}
	return out, nil
}

func nextEvent(t *testing.T, sub Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		if !ok {
			t.Fatal("subscription closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func expectQuiet(t *testing.T, sub Subscription, wait time.Duration) {
	t.Helper()
	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(wait):
	}
}

func alertOn(id, bedID string) models.Alert {
	return models.Alert{ID: id, BedID: bedID, Kind: models.AlertKindHelpRequest, CreatedAt: time.Now()}
}
