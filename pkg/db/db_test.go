package db

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"liyu1981.xyz/ward-alert-service/pkg/common"
	"liyu1981.xyz/ward-alert-service/pkg/models"
	_ "liyu1981.xyz/ward-alert-service/pkg/testing"

	"gorm.io/gorm"
)

func tableExists(db *gorm.DB, tableName string) bool {
	var count int64
	err := db.Raw(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?`, tableName,
	).Scan(&count).Error
	return err == nil && count > 0
}

func TestWithMemorySqlite(t *testing.T) {
	common.SetTestLoggerNop()

	instance := GetInstance(UseMemorySqliteDialector())
	if instance == nil {
		t.Fatal("Expected non-nil DB instance")
	}

	var tables = []string{"wards", "beds", "nurses", "patients", "alerts", "access_tokens"}
	for _, table := range tables {
		if !tableExists(instance.Conn, table) {
			t.Errorf("Expected table %q to exist after migration", table)
		}
	}
}

func TestSingletonConcurrency(t *testing.T) {
	common.SetTestLoggerNop()

	const goroutineCount = 20

	var wg sync.WaitGroup
	instances := make(chan *DB, goroutineCount)

	for range goroutineCount {
		wg.Add(1)
		go func() {
			defer wg.Done()
			instances <- GetInstance(UseMemorySqliteDialector())
		}()
	}

	wg.Wait()
	close(instances)

	var first *DB
	for inst := range instances {
		if first == nil {
			first = inst
			continue
		}
		if inst != first {
			t.Error("Expected all instances to be the same (singleton), but found different ones")
		}
	}
}

func TestOpenIsolatedLocalStore(t *testing.T) {
	common.SetTestLoggerNop()

	local, err := Open(UseNamedMemorySqliteDialector("local_"+uuid.NewString()), &models.KVRecord{})
	require.NoError(t, err)

	assert.True(t, tableExists(local.Conn, "kv_records"))
	assert.False(t, tableExists(local.Conn, "alerts"), "local store must not carry the domain tables")
	assert.NotSame(t, GetInstance(UseMemorySqliteDialector()), local)
}

func TestNurseBedIDsRoundTripThroughSerializer(t *testing.T) {
	common.SetTestLoggerNop()

	conn := GetInstance(UseMemorySqliteDialector()).Conn
	nurse := models.Nurse{ID: uuid.NewString(), WardID: "w", Name: "Ana", BedIDs: []string{"101", "102"}}
	require.NoError(t, conn.Create(&nurse).Error)

	var saved models.Nurse
	require.NoError(t, conn.First(&saved, "id = ?", nurse.ID).Error)
	assert.Equal(t, []string{"101", "102"}, saved.BedIDs)
}
