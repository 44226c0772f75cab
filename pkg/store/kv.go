package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"liyu1981.xyz/ward-alert-service/pkg/db"
	"liyu1981.xyz/ward-alert-service/pkg/models"
)

// KV is a flat key-value store. Load of a missing key returns nil, nil.
type KV interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Store(ctx context.Context, key string, value []byte) error
}

// KVBackend keeps every resource as one JSON array under the resource name.
// Newest records come first.
type KVBackend struct {
	KV KV

	mu sync.Mutex
}

func NewKVBackend(kv KV) *KVBackend {
	return &KVBackend{KV: kv}
}

type document = map[string]any

func (k *KVBackend) load(ctx context.Context, res Resource) ([]document, error) {
	raw, err := k.KV.Load(ctx, string(res))
	if err != nil {
		return nil, err
	}
	docs := []document{}
	if len(raw) == 0 {
		return docs, nil
	}
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", res, err)
	}
	return docs, nil
}

func (k *KVBackend) save(ctx context.Context, res Resource, docs []document) error {
	raw, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	return k.KV.Store(ctx, string(res), raw)
}

func indexOf(docs []document, id string) int {
	for i, d := range docs {
		if fmt.Sprint(d["id"]) == id {
			return i
		}
	}
	return -1
}

func toDocument(record any) (document, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	doc := document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func recordID(record any) (string, error) {
	doc, err := toDocument(record)
	if err != nil {
		return "", err
	}
	id, _ := doc["id"].(string)
	if id == "" {
		return "", errors.New("record has no id")
	}
	return id, nil
}

func decodeInto(v any, out any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (k *KVBackend) Get(ctx context.Context, res Resource, id string, out any) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	docs, err := k.load(ctx, res)
	if err != nil {
		return err
	}
	i := indexOf(docs, id)
	if i < 0 {
		return fmt.Errorf("%s/%s: %w", res, id, ErrNotFound)
	}
	return decodeInto(docs[i], out)
}

func (k *KVBackend) List(ctx context.Context, res Resource, filter Filter, out any) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	docs, err := k.load(ctx, res)
	if err != nil {
		return err
	}
	matched := make([]document, 0, len(docs))
	for _, d := range docs {
		if matches(d, filter) {
			matched = append(matched, d)
		}
	}
	return decodeInto(matched, out)
}

func matches(d document, filter Filter) bool {
	for key, want := range filter {
		if fmt.Sprint(d[key]) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func (k *KVBackend) Create(ctx context.Context, res Resource, record any) error {
	doc, err := toDocument(record)
	if err != nil {
		return err
	}
	id, _ := doc["id"].(string)
	if id == "" {
		return errors.New("record has no id")
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	docs, err := k.load(ctx, res)
	if err != nil {
		return err
	}
	if indexOf(docs, id) >= 0 {
		return fmt.Errorf("%s/%s already exists", res, id)
	}
	return k.save(ctx, res, append([]document{doc}, docs...))
}

// Put inserts record or replaces the stored one with the same id.
func (k *KVBackend) Put(ctx context.Context, res Resource, record any) error {
	doc, err := toDocument(record)
	if err != nil {
		return err
	}
	id, _ := doc["id"].(string)
	if id == "" {
		return errors.New("record has no id")
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	docs, err := k.load(ctx, res)
	if err != nil {
		return err
	}
	if i := indexOf(docs, id); i >= 0 {
		docs[i] = doc
	} else {
		docs = append([]document{doc}, docs...)
	}
	return k.save(ctx, res, docs)
}

func (k *KVBackend) Update(ctx context.Context, res Resource, id string, fields map[string]any) error {
	patch, err := toDocument(fields)
	if err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	docs, err := k.load(ctx, res)
	if err != nil {
		return err
	}
	i := indexOf(docs, id)
	if i < 0 {
		return fmt.Errorf("%s/%s: %w", res, id, ErrNotFound)
	}
	for key, v := range patch {
		docs[i][key] = v
	}
	return k.save(ctx, res, docs)
}

func (k *KVBackend) Delete(ctx context.Context, res Resource, id string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	docs, err := k.load(ctx, res)
	if err != nil {
		return err
	}
	i := indexOf(docs, id)
	if i < 0 {
		return fmt.Errorf("%s/%s: %w", res, id, ErrNotFound)
	}
	return k.save(ctx, res, append(docs[:i], docs[i+1:]...))
}

func (k *KVBackend) Ping(ctx context.Context) error {
	_, err := k.KV.Load(ctx, string(Wards))
	return err
}

// SQLiteKV persists KV entries in a local sqlite file.
type SQLiteKV struct {
	Db *db.DB
}

func OpenSQLiteKV(dialector gorm.Dialector) (*SQLiteKV, error) {
	conn, err := db.Open(dialector, &models.KVRecord{})
	if err != nil {
		return nil, err
	}
	return &SQLiteKV{Db: conn}, nil
}

func (s *SQLiteKV) Load(ctx context.Context, key string) ([]byte, error) {
	var record models.KVRecord
	err := s.Db.Conn.WithContext(ctx).Where(&models.KVRecord{Key: key}).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(record.Value), nil
}

func (s *SQLiteKV) Store(ctx context.Context, key string, value []byte) error {
	record := models.KVRecord{Key: key, Value: string(value), UpdatedAt: time.Now()}
	return s.Db.Conn.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&record).Error
}

// MemoryKV is a process-local KV, used when no fallback file is wanted.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: map[string][]byte{}}
}

func (m *MemoryKV) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[key], nil
}

func (m *MemoryKV) Store(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}
