package realtime

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liyu1981.xyz/ward-alert-service/pkg/common"
	"liyu1981.xyz/ward-alert-service/pkg/models"
	_ "liyu1981.xyz/ward-alert-service/pkg/testing"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisChannelPerBedSubscription(t *testing.T) {
	common.SetTestLoggerNop()
	ctx := context.Background()
	_, client := setupTestRedis(t)

	ch := NewRedisChannel(client, nil)
	sub, err := ch.Watch(ctx, Filter{BedIDs: []string{"101"}})
	require.NoError(t, err)
	defer sub.Stop()

	require.NoError(t, ch.Publish(ctx, Event{Kind: models.AlertEventAdded, Alert: alertOn("a0", "102")}))
	require.NoError(t, ch.Publish(ctx, Event{Kind: models.AlertEventAdded, Alert: alertOn("a1", "101")}))

	ev := nextEvent(t, sub)
	assert.Equal(t, models.AlertEventAdded, ev.Kind)
	assert.Equal(t, "a1", ev.Alert.ID)

	resolved := alertOn("a1", "101")
	resolved.Confirmed = true
	require.NoError(t, ch.Publish(ctx, Event{Kind: models.AlertEventRemoved, Alert: resolved}))
	ev = nextEvent(t, sub)
	assert.Equal(t, models.AlertEventRemoved, ev.Kind)
	assert.True(t, ev.Alert.Confirmed)
}

func TestRedisChannelWideFilterUsesGlobalChannel(t *testing.T) {
	common.SetTestLoggerNop()
	ctx := context.Background()
	_, client := setupTestRedis(t)

	var beds []string
	for i := range MaxBedChannels + 1 {
		beds = append(beds, fmt.Sprintf("bed-%d", i))
	}
	assert.Equal(t, []string{GlobalChannel}, channelsFor(Filter{BedIDs: beds}))
	assert.Equal(t, []string{GlobalChannel}, channelsFor(Filter{}))
	assert.Equal(t, []string{BedChannel("bed-0")}, channelsFor(Filter{BedIDs: beds[:1]}))

	ch := NewRedisChannel(client, nil)
	sub, err := ch.Watch(ctx, Filter{BedIDs: beds})
	require.NoError(t, err)
	defer sub.Stop()

	require.NoError(t, ch.Publish(ctx, Event{Kind: models.AlertEventAdded, Alert: alertOn("x", "elsewhere")}))
	require.NoError(t, ch.Publish(ctx, Event{Kind: models.AlertEventAdded, Alert: alertOn("y", "bed-10")}))

	assert.Equal(t, "y", nextEvent(t, sub).Alert.ID)
}

func TestRedisChannelSeedsSnapshot(t *testing.T) {
	common.SetTestLoggerNop()
	ctx := context.Background()
	_, client := setupTestRedis(t)

	lister := &fakeLister{}
	lister.set(alertOn("old", "101"))

	sub, err := NewRedisChannel(client, lister).Watch(ctx, Filter{BedIDs: []string{"101"}})
	require.NoError(t, err)
	defer sub.Stop()

	ev := nextEvent(t, sub)
	assert.Equal(t, models.AlertEventAdded, ev.Kind)
	assert.Equal(t, "old", ev.Alert.ID)
}

func TestRedisChannelStop(t *testing.T) {
	common.SetTestLoggerNop()
	_, client := setupTestRedis(t)

	sub, err := NewRedisChannel(client, nil).Watch(context.Background(), Filter{})
	require.NoError(t, err)

	sub.Stop()
	sub.Stop()

	_, ok := <-sub.Events()
	assert.False(t, ok)
}

func TestRedisChannelWatchFailsWhenDown(t *testing.T) {
	common.SetTestLoggerNop()
	mr, client := setupTestRedis(t)
	mr.Close()

	_, err := NewRedisChannel(client, nil).Watch(context.Background(), Filter{})
	assert.Error(t, err)
}
