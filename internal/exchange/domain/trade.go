package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Trade 成交记录，由撮合引擎按成交顺序创建；settled 是唯一可变字段
type Trade struct {
	// 成交 ID，自增主键，创建顺序即结算顺序
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	// 交易对 ID
	TokenID uint64 `gorm:"column:token_id;index;not null" json:"token_id"`
	// 成交价（挂单方限价）
	Price decimal.Decimal `gorm:"column:price;type:decimal(20,8);not null" json:"price"`
	// 成交数量
	Quantity int64 `gorm:"column:quantity;not null" json:"quantity"`
	// 挂单方订单 ID
	MakerOrderID uint64 `gorm:"column:maker_order_id;index;not null" json:"maker_order_id"`
	// 吃单方订单 ID
	TakerOrderID uint64 `gorm:"column:taker_order_id;index;not null" json:"taker_order_id"`
	// 是否已上链结算
	Settled bool `gorm:"column:settled;index;not null;default:false" json:"settled"`
	// 成交时间
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName 指定表名
func (Trade) TableName() string {
	return "trades"
}

// TradeFilter 成交查询条件
type TradeFilter struct {
	TokenID *uint64
	Settled *bool
	Address string
	OrderID *uint64
	From    *time.Time
	To      *time.Time
}

// TradeRepository 成交仓储接口
type TradeRepository interface {
	// CommitMatch 在一个事务内落地一轮撮合的全部写入：
	// 被触达订单的状态更新与按顺序创建的成交记录
	CommitMatch(ctx context.Context, orders []*Order, trades []*Trade) error
	// OldestUnsettled 返回最早的未结算成交，没有时返回 nil
	OldestUnsettled(ctx context.Context) (*Trade, error)
	// MarkSettled 将成交标记为已结算
	MarkSettled(ctx context.Context, id uint64) error
	// List 条件查询成交，按 ID 升序
	List(ctx context.Context, filter TradeFilter) ([]*Trade, error)
}
