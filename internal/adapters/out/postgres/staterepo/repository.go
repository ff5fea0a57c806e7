package staterepo

import (
	"context"
	"errors"
	"time"

	"pizzaworkflow/internal/core/ports"
	"pizzaworkflow/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ ports.StateStore = (*GormStateStore)(nil)

// GormStateStore implements ports.StateStore on the state_entries table.
type GormStateStore struct {
	db *gorm.DB
}

func NewGormStateStore(db *gorm.DB) *GormStateStore {
	return &GormStateStore{db: db}
}

func (s *GormStateStore) Get(ctx context.Context, storeName, key string) ([]byte, bool, error) {
	var dto StateEntryDTO
	err := s.db.WithContext(ctx).First(&dto, "store_name = ? AND key = ?", storeName, key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, errs.NewStoreUnavailableError(storeName, key, err)
	}
	return dto.Value, true, nil
}

// Set upserts the entry; the last writer wins.
func (s *GormStateStore) Set(ctx context.Context, storeName, key string, value []byte) error {
	dto := StateEntryDTO{
		StoreName: storeName,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_name"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&dto).Error
	if err != nil {
		return errs.NewStoreUnavailableError(storeName, key, err)
	}
	return nil
}

func (s *GormStateStore) Delete(ctx context.Context, storeName, key string) error {
	err := s.db.WithContext(ctx).
		Where("store_name = ? AND key = ?", storeName, key).
		Delete(&StateEntryDTO{}).Error
	if err != nil {
		return errs.NewStoreUnavailableError(storeName, key, err)
	}
	return nil
}
