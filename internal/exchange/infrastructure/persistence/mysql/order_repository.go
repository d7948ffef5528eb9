package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/domain"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) domain.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Get(ctx context.Context, id uint64) (*domain.Order, error) {
	var order domain.Order
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByIDs(ctx context.Context, ids []uint64) ([]*domain.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var orders []*domain.Order
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id asc").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) ListPending(ctx context.Context, tokenID uint64) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := r.db.WithContext(ctx).
		Where("token_id = ? AND status = ?", tokenID, domain.OrderStatusTodo).
		Order("id asc").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	query := r.db.WithContext(ctx).Model(&domain.Order{})
	if filter.TokenID != nil {
		query = query.Where("token_id = ?", *filter.TokenID)
	}
	if filter.Side != "" {
		query = query.Where("side = ?", filter.Side)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Address != "" {
		query = query.Where("address = ?", filter.Address)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var orders []*domain.Order
	err := query.Order("id asc").Find(&orders).Error
	return orders, err
}
