package mysql

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/domain"
)

type blockRepository struct {
	db *gorm.DB
}

// NewBlockRepository 创建区块水位仓储
func NewBlockRepository(db *gorm.DB) domain.BlockRepository {
	return &blockRepository{db: db}
}

func (r *blockRepository) Watermark(ctx context.Context) (int64, error) {
	var height sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&domain.Block{}).
		Select("MAX(height)").
		Scan(&height).Error
	if err != nil {
		return 0, err
	}
	if !height.Valid {
		return -1, nil
	}
	return height.Int64, nil
}

func (r *blockRepository) SaveBlock(ctx context.Context, block *domain.Block, orders []*domain.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(block).Error; err != nil {
			return err
		}
		if len(orders) > 0 {
			if err := tx.Create(orders).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
