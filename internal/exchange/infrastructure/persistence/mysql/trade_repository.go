package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/domain"
)

type tradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository 创建成交仓储
func NewTradeRepository(db *gorm.DB) domain.TradeRepository {
	return &tradeRepository{db: db}
}

// CommitMatch 一轮撮合的全部写入在一个事务内落地。
// 成交按切片顺序逐条创建，保证自增 ID 与撮合顺序一致。
func (r *tradeRepository) CommitMatch(ctx context.Context, orders []*domain.Order, trades []*domain.Trade) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for _, o := range orders {
			err := tx.Model(&domain.Order{}).
				Where("id = ?", o.ID).
				Updates(map[string]any{
					"remaining_quantity": o.RemainingQuantity,
					"notional":           o.Notional,
					"status":             o.Status,
					"updated_at":         now,
				}).Error
			if err != nil {
				return err
			}
		}
		for _, t := range trades {
			if err := tx.Create(t).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *tradeRepository) OldestUnsettled(ctx context.Context) (*domain.Trade, error) {
	var trade domain.Trade
	err := r.db.WithContext(ctx).
		Where("settled = ?", false).
		Order("id asc").
		First(&trade).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trade, nil
}

func (r *tradeRepository) MarkSettled(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Trade{}).
		Where("id = ?", id).
		Update("settled", true).Error
}

func (r *tradeRepository) List(ctx context.Context, filter domain.TradeFilter) ([]*domain.Trade, error) {
	query := r.db.WithContext(ctx).Model(&domain.Trade{})
	if filter.TokenID != nil {
		query = query.Where("token_id = ?", *filter.TokenID)
	}
	if filter.Settled != nil {
		query = query.Where("settled = ?", *filter.Settled)
	}
	if filter.OrderID != nil {
		query = query.Where("maker_order_id = ? OR taker_order_id = ?", *filter.OrderID, *filter.OrderID)
	}
	if filter.Address != "" {
		query = query.Where(
			"EXISTS (SELECT 1 FROM orders o WHERE o.id IN (maker_order_id, taker_order_id) AND o.address = ?)",
			filter.Address,
		)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var trades []*domain.Trade
	err := query.Order("id asc").Find(&trades).Error
	return trades, err
}
