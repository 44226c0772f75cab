package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"liyu1981.xyz/ward-alert-service/pkg/db"
)

// SQLBackend stores each resource in its own gorm table (sqlite or mysql).
type SQLBackend struct {
	Db *db.DB
}

func NewSQLBackend(d *db.DB) *SQLBackend {
	return &SQLBackend{Db: d}
}

func (s *SQLBackend) Get(ctx context.Context, res Resource, id string, out any) error {
	err := s.Db.Conn.WithContext(ctx).Where("id = ?", id).First(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s/%s: %w", res, id, ErrNotFound)
	}
	return err
}

func (s *SQLBackend) List(ctx context.Context, res Resource, filter Filter, out any) error {
	q := s.Db.Conn.WithContext(ctx)
	if len(filter) > 0 {
		q = q.Where(map[string]any(filter))
	}
	return q.Find(out).Error
}

func (s *SQLBackend) Create(ctx context.Context, res Resource, record any) error {
	return s.Db.Conn.WithContext(ctx).Create(record).Error
}

func (s *SQLBackend) Put(ctx context.Context, res Resource, record any) error {
	return s.Db.Conn.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(record).Error
}

// Update loads the row, merges fields and saves the whole row back so that
// serialized columns (nurse bed ids) go through their serializer.
func (s *SQLBackend) Update(ctx context.Context, res Resource, id string, fields map[string]any) error {
	record, err := res.NewRecord()
	if err != nil {
		return err
	}
	return s.Db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%s/%s: %w", res, id, ErrNotFound)
			}
			return err
		}
		if err := mergeFields(record, fields); err != nil {
			return err
		}
		return tx.Save(record).Error
	})
}

func (s *SQLBackend) Delete(ctx context.Context, res Resource, id string) error {
	record, err := res.NewRecord()
	if err != nil {
		return err
	}
	result := s.Db.Conn.WithContext(ctx).Where("id = ?", id).Delete(record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s/%s: %w", res, id, ErrNotFound)
	}
	return nil
}

func (s *SQLBackend) Ping(ctx context.Context) error {
	sqlDB, err := s.Db.Conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
