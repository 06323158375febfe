package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"voxadmin/internal/model"
)

// ExcludedRepository defines tombstone persistence operations.
type ExcludedRepository interface {
	List(ctx context.Context) ([]model.ExcludedItem, error)
	Create(ctx context.Context, item *model.ExcludedItem) error
	FindOrCreate(ctx context.Context, item *model.ExcludedItem) (*model.ExcludedItem, bool, error)
	Find(ctx context.Context, itemType model.ExcludedItemType, itemID uuid.UUID) (*model.ExcludedItem, error)
	DeleteByTypeAndID(ctx context.Context, itemType model.ExcludedItemType, itemID uuid.UUID) (int64, error)
}

type excludedRepository struct {
	db *gorm.DB
}

// NewExcludedRepository creates a new tombstone repository.
func NewExcludedRepository(db *gorm.DB) ExcludedRepository {
	return &excludedRepository{db: db}
}

func (r *excludedRepository) List(ctx context.Context) ([]model.ExcludedItem, error) {
	var items []model.ExcludedItem
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *excludedRepository) Create(ctx context.Context, item *model.ExcludedItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// FindOrCreate returns the existing tombstone for (type, id) or creates one.
// The bool reports whether a new row was created. Deduplication keeps
// repeated deletes idempotent.
func (r *excludedRepository) FindOrCreate(ctx context.Context, item *model.ExcludedItem) (*model.ExcludedItem, bool, error) {
	existing, err := r.Find(ctx, item.ItemType, item.ItemID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		// A concurrent create may have won the unique index race.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, findErr := r.Find(ctx, item.ItemType, item.ItemID)
			if findErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}
	return item, true, nil
}

func (r *excludedRepository) Find(ctx context.Context, itemType model.ExcludedItemType, itemID uuid.UUID) (*model.ExcludedItem, error) {
	var item model.ExcludedItem
	if err := r.db.WithContext(ctx).
		Where("item_type = ? AND item_id = ?", itemType, itemID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *excludedRepository) DeleteByTypeAndID(ctx context.Context, itemType model.ExcludedItemType, itemID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("item_type = ? AND item_id = ?", itemType, itemID).
		Delete(&model.ExcludedItem{})
	return res.RowsAffected, res.Error
}
