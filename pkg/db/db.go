package db

import (
	"fmt"
	"log"
	"os"
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"liyu1981.xyz/ward-alert-service/pkg/common"
	"liyu1981.xyz/ward-alert-service/pkg/models"
)

type DB struct {
	Conn *gorm.DB
}

var (
	instance *DB
	once     sync.Once
)

// DomainModels are migrated on the primary database.
var DomainModels = []any{
	&models.Ward{},
	&models.Bed{},
	&models.Nurse{},
	&models.Patient{},
	&models.Alert{},
	&models.AccessToken{},
}

// GetInstance opens the process-wide primary database on first use.
func GetInstance(dialector gorm.Dialector) *DB {
	once.Do(func() {
		conn, err := Open(dialector, DomainModels...)
		if err != nil {
			log.Fatal("Failed to open primary database: ", err)
		}
		instance = conn
	})
	return instance
}

// Open connects and migrates the given models. Unlike GetInstance every call
// returns a fresh handle, which is what the local fallback store needs.
func Open(dialector gorm.Dialector, migrate ...any) (*DB, error) {
	lg := common.GetLoggerWith(common.LoggerNameStore)

	conn, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", dialector.Name(), err)
	}

	lg.Info("Connected to database with dialector:", zap.String("dialector", dialector.Name()))

	if dialector.Name() == "sqlite" {
		if err := conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
		if err := conn.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
			return nil, fmt.Errorf("set sqlite journal mode: %w", err)
		}
	}

	if err := conn.AutoMigrate(migrate...); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	lg.Info("Database migration completed", zap.Int("models", len(migrate)))

	return &DB{Conn: conn}, nil
}

func UseSqliteDialector() gorm.Dialector {
	var dbPath string
	var found bool
	if dbPath, found = os.LookupEnv(common.EnvKeyWardDbPath); !found {
		dbPath = "ward.db"
	}
	return sqlite.Open(dbPath)
}

func UseMemorySqliteDialector() gorm.Dialector {
	return sqlite.Open("file::memory:?cache=shared")
}

// UseNamedMemorySqliteDialector gives an in-memory database isolated from the
// shared one, keyed by name.
func UseNamedMemorySqliteDialector(name string) gorm.Dialector {
	return sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
}

// UseLocalSqliteDialector opens the local fallback file.
func UseLocalSqliteDialector() gorm.Dialector {
	return sqlite.Open(common.EnvOr(common.EnvKeyWardFallbackPath, "ward-local.db"))
}

func UseMySQLDialector() gorm.Dialector {
	return mysql.Open(os.Getenv(common.EnvKeyWardMySQLDSN))
}
