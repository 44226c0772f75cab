package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liyu1981.xyz/ward-alert-service/pkg/common"
	"liyu1981.xyz/ward-alert-service/pkg/db"
	"liyu1981.xyz/ward-alert-service/pkg/models"
	_ "liyu1981.xyz/ward-alert-service/pkg/testing"
)

func newSQLiteKVBackend(t *testing.T) *KVBackend {
	kv, err := OpenSQLiteKV(db.UseNamedMemorySqliteDialector("kv-" + uuid.NewString()))
	require.NoError(t, err)
	return NewKVBackend(kv)
}

func TestKVBackendCRUD(t *testing.T) {
	common.SetTestLoggerNop()
	ctx := context.Background()

	backends := map[string]*KVBackend{
		"memory": NewKVBackend(NewMemoryKV()),
		"sqlite": newSQLiteKVBackend(t),
	}

	for name, b := range backends {
		t.Run(name, func(t *testing.T) {
			first := &models.Alert{ID: "a1", BedID: "101", WardID: "w1", CreatedAt: time.Now()}
			second := &models.Alert{ID: "a2", BedID: "102", WardID: "w1", CreatedAt: time.Now()}
			require.NoError(t, b.Create(ctx, Alerts, first))
			require.NoError(t, b.Create(ctx, Alerts, second))
			assert.Error(t, b.Create(ctx, Alerts, first))

			var all []models.Alert
			require.NoError(t, b.List(ctx, Alerts, nil, &all))
			require.Len(t, all, 2)
			assert.Equal(t, "a2", all[0].ID, "newest first")

			require.NoError(t, b.Update(ctx, Alerts, "a1", map[string]any{"confirmed": true}))

			var pending []models.Alert
			require.NoError(t, b.List(ctx, Alerts, Filter{"ward_id": "w1", "confirmed": false}, &pending))
			require.Len(t, pending, 1)
			assert.Equal(t, "a2", pending[0].ID)

			var got models.Alert
			require.NoError(t, b.Get(ctx, Alerts, "a1", &got))
			assert.True(t, got.Confirmed)
			assert.Equal(t, "101", got.BedID)

			require.NoError(t, b.Delete(ctx, Alerts, "a1"))
			assert.ErrorIs(t, b.Get(ctx, Alerts, "a1", &got), ErrNotFound)
			assert.ErrorIs(t, b.Delete(ctx, Alerts, "a1"), ErrNotFound)
			assert.ErrorIs(t, b.Update(ctx, Alerts, "a1", map[string]any{}), ErrNotFound)
			assert.NoError(t, b.Ping(ctx))
		})
	}
}

func TestKVBackendPut(t *testing.T) {
	ctx := context.Background()
	b := NewKVBackend(NewMemoryKV())

	nurse := &models.Nurse{ID: "n1", Name: "Ana", BedIDs: []string{"101"}}
	require.NoError(t, b.Put(ctx, Nurses, nurse))
	nurse.BedIDs = []string{"101", "102"}
	require.NoError(t, b.Put(ctx, Nurses, nurse))

	var nurses []models.Nurse
	require.NoError(t, b.List(ctx, Nurses, nil, &nurses))
	require.Len(t, nurses, 1)
	assert.Equal(t, []string{"101", "102"}, nurses[0].BedIDs)

	assert.Error(t, b.Put(ctx, Nurses, &models.Nurse{Name: "no id"}))
}

func TestSQLiteKVLoadMissing(t *testing.T) {
	common.SetTestLoggerNop()
	kv, err := OpenSQLiteKV(db.UseNamedMemorySqliteDialector("kv-" + uuid.NewString()))
	require.NoError(t, err)

	raw, err := kv.Load(context.Background(), "nothing")
	assert.NoError(t, err)
	assert.Nil(t, raw)

	require.NoError(t, kv.Store(context.Background(), "k", []byte("v1")))
	require.NoError(t, kv.Store(context.Background(), "k", []byte("v2")))
	raw, err = kv.Load(context.Background(), "k")
	assert.NoError(t, err)
	assert.Equal(t, "v2", string(raw))
}
