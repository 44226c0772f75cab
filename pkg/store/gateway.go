package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"liyu1981.xyz/ward-alert-service/pkg/common"
)

const DefaultTimeout = 10 * time.Second

// ErrUnavailable can be wrapped by a backend to say it could not be reached.
var ErrUnavailable = errors.New("store unavailable")

// Unavailable reports whether err means the backend could not be reached, as
// opposed to the backend refusing the call.
func Unavailable(err error) bool {
	var netErr net.Error
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, mysql.ErrInvalidConn),
		errors.Is(err, mongo.ErrClientDisconnected),
		errors.As(err, &netErr):
		return true
	}
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}

type Source string

const (
	SourcePrimary Source = "primary"
	SourceLocal   Source = "local"
)

// Result tells the caller which backend served the call.
type Result struct {
	Source Source
}

func (r Result) SavedLocally() bool {
	return r.Source == SourceLocal
}

type syncKey struct {
	res Resource
	id  string
}

// Gateway sends every call to Primary under Timeout. When the primary cannot
// be reached the call is served by Fallback instead; any other primary error,
// ErrNotFound and constraint violations included, is final. A nil Primary
// runs local only.
//
// Writes served locally are remembered and replayed to the primary once it
// answers again, when the primary is an Upserter.
type Gateway struct {
	Primary  Backend
	Fallback Backend
	Timeout  time.Duration

	logger *zap.Logger

	mu       sync.Mutex
	unsynced map[syncKey]uint64
	seq      uint64
	retryAt  time.Time
}

func NewGateway(primary, fallback Backend, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{
		Primary:  primary,
		Fallback: fallback,
		Timeout:  timeout,
		logger:   common.GetCategoryLogger(common.LoggerNameStore, common.LoggerCategoryGateway),
		unsynced: map[syncKey]uint64{},
	}
}

func (g *Gateway) primary(ctx context.Context, op string, res Resource, call func(context.Context, Backend) error) (Result, error) {
	if g.Primary == nil {
		return Result{Source: SourceLocal}, call(ctx, g.Fallback)
	}
	g.syncIfDue(ctx)

	pctx, cancel := context.WithTimeout(ctx, g.Timeout)
	err := call(pctx, g.Primary)
	cancel()
	if !Unavailable(err) {
		return Result{Source: SourcePrimary}, err
	}
	g.backOff()

	g.logger.Warn("Primary store failed, using local fallback",
		zap.String("op", op),
		zap.String("resource", string(res)),
		zap.Error(err))
	return Result{Source: SourceLocal}, call(ctx, g.Fallback)
}

// backOff holds replays back for one Timeout after the primary failed.
func (g *Gateway) backOff() {
	g.mu.Lock()
	g.retryAt = time.Now().Add(g.Timeout)
	g.mu.Unlock()
}

func (g *Gateway) markUnsynced(res Resource, id string) {
	if _, ok := g.Primary.(Upserter); !ok || id == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	g.unsynced[syncKey{res, id}] = g.seq
}

func (g *Gateway) isUnsynced(res Resource, id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.unsynced[syncKey{res, id}]
	return ok
}

// Unsynced counts the local writes the primary has not seen yet.
func (g *Gateway) Unsynced() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.unsynced)
}

func (g *Gateway) syncIfDue(ctx context.Context) {
	g.mu.Lock()
	due := len(g.unsynced) > 0 && !time.Now().Before(g.retryAt)
	g.mu.Unlock()
	if !due {
		return
	}
	if _, err := g.Sync(ctx); err != nil {
		g.backOff()
		g.logger.Warn("Local changes not synced yet", zap.Int("pending", g.Unsynced()), zap.Error(err))
	}
}

// Sync replays records written locally while the primary was away. A record
// since deleted locally is deleted on the primary. It stops at the first
// failure and keeps the rest for the next call.
func (g *Gateway) Sync(ctx context.Context) (int, error) {
	up, ok := g.Primary.(Upserter)
	if !ok {
		return 0, nil
	}

	g.mu.Lock()
	pending := make(map[syncKey]uint64, len(g.unsynced))
	for k, v := range g.unsynced {
		pending[k] = v
	}
	g.mu.Unlock()

	synced := 0
	for key, version := range pending {
		record, err := key.res.NewRecord()
		if err != nil {
			return synced, err
		}

		pctx, cancel := context.WithTimeout(ctx, g.Timeout)
		err = g.Fallback.Get(ctx, key.res, key.id, record)
		switch {
		case errors.Is(err, ErrNotFound):
			err = g.Primary.Delete(pctx, key.res, key.id)
			if errors.Is(err, ErrNotFound) {
				err = nil
			}
		case err == nil:
			err = up.Put(pctx, key.res, record)
		}
		cancel()
		if err != nil {
			return synced, err
		}

		g.mu.Lock()
		if g.unsynced[key] == version {
			delete(g.unsynced, key)
		}
		g.mu.Unlock()
		synced++
	}

	if synced > 0 {
		g.logger.Info("Local changes synced to primary", zap.Int("records", synced))
	}
	return synced, nil
}

// Get answers from the local copy when the primary has not seen the record yet.
func (g *Gateway) Get(ctx context.Context, res Resource, id string, out any) (Result, error) {
	result, err := g.primary(ctx, "get", res, func(ctx context.Context, b Backend) error {
		return b.Get(ctx, res, id, out)
	})
	if errors.Is(err, ErrNotFound) && result.Source == SourcePrimary && g.isUnsynced(res, id) {
		return Result{Source: SourceLocal}, g.Fallback.Get(ctx, res, id, out)
	}
	return result, err
}

func (g *Gateway) List(ctx context.Context, res Resource, filter Filter, out any) (Result, error) {
	return g.primary(ctx, "list", res, func(ctx context.Context, b Backend) error {
		return b.List(ctx, res, filter, out)
	})
}

func (g *Gateway) Create(ctx context.Context, res Resource, record any) (Result, error) {
	result, err := g.primary(ctx, "create", res, func(ctx context.Context, b Backend) error {
		return b.Create(ctx, res, record)
	})
	if err == nil && result.Source == SourcePrimary {
		g.mirror(ctx, res, record)
	}
	if err == nil && result.SavedLocally() && g.Primary != nil {
		id, _ := recordID(record)
		g.markUnsynced(res, id)
	}
	return result, err
}

func (g *Gateway) Update(ctx context.Context, res Resource, id string, fields map[string]any) (Result, error) {
	result, err := g.primary(ctx, "update", res, func(ctx context.Context, b Backend) error {
		return b.Update(ctx, res, id, fields)
	})
	if err == nil && result.Source == SourcePrimary {
		record, rerr := res.NewRecord()
		if rerr == nil {
			pctx, cancel := context.WithTimeout(ctx, g.Timeout)
			rerr = g.Primary.Get(pctx, res, id, record)
			cancel()
		}
		if rerr != nil {
			g.logger.Warn("Reload after update failed, local copy not refreshed",
				zap.String("resource", string(res)), zap.String("id", id), zap.Error(rerr))
		} else {
			g.mirror(ctx, res, record)
		}
	}
	if err == nil && result.SavedLocally() && g.Primary != nil {
		g.markUnsynced(res, id)
	}
	return result, err
}

func (g *Gateway) Delete(ctx context.Context, res Resource, id string) (Result, error) {
	result, err := g.primary(ctx, "delete", res, func(ctx context.Context, b Backend) error {
		return b.Delete(ctx, res, id)
	})
	if err == nil && result.Source == SourcePrimary {
		if ferr := g.Fallback.Delete(ctx, res, id); ferr != nil && !errors.Is(ferr, ErrNotFound) {
			g.logger.Warn("Local copy delete failed",
				zap.String("resource", string(res)), zap.String("id", id), zap.Error(ferr))
		}
	}
	if err == nil && result.SavedLocally() && g.Primary != nil {
		g.markUnsynced(res, id)
	}
	return result, err
}

// Ping reports the primary's health; local only mode pings the fallback.
func (g *Gateway) Ping(ctx context.Context) error {
	if g.Primary == nil {
		return g.Fallback.Ping(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()
	return g.Primary.Ping(ctx)
}

func (g *Gateway) mirror(ctx context.Context, res Resource, record any) {
	up, ok := g.Fallback.(Upserter)
	if !ok {
		return
	}
	if err := up.Put(ctx, res, record); err != nil {
		g.logger.Warn("Local copy write failed",
			zap.String("resource", string(res)), zap.Error(err))
	}
}
