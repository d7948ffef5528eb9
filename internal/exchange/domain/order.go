package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrOrderNotFound 订单不存在
var ErrOrderNotFound = errors.New("order not found")

// OrderSide 订单方向
type OrderSide string

const (
	OrderSideAsk OrderSide = "ask"
	OrderSideBid OrderSide = "bid"
)

// OrderKind 订单类型
type OrderKind string

const (
	OrderKindLimit  OrderKind = "limit"
	OrderKindMarket OrderKind = "market"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusTodo   OrderStatus = "todo"
	OrderStatusDone   OrderStatus = "done"
	OrderStatusCancel OrderStatus = "cancel"
)

// Order 订单实体
// 由区块摄取创建，仅由撮合引擎更新；ID 按创建顺序递增，作为时间优先的平手裁决
type Order struct {
	// 订单 ID，自增主键
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	// 交易对 ID
	TokenID uint64 `gorm:"column:token_id;index;not null" json:"token_id"`
	// 方向
	Side OrderSide `gorm:"column:side;type:varchar(10);not null" json:"side"`
	// 类型
	Kind OrderKind `gorm:"column:kind;type:varchar(10);not null;default:limit" json:"kind"`
	// 限价
	Price decimal.Decimal `gorm:"column:price;type:decimal(20,8);not null" json:"price"`
	// 剩余数量
	RemainingQuantity int64 `gorm:"column:remaining_quantity;not null" json:"remaining_quantity"`
	// 原始数量
	OriginQuantity int64 `gorm:"column:origin_quantity;not null" json:"origin_quantity"`
	// 累计成交金额
	Notional decimal.Decimal `gorm:"column:notional;type:decimal(30,8);not null;default:0" json:"notional"`
	// 状态
	Status OrderStatus `gorm:"column:status;type:varchar(10);index;not null;default:todo" json:"status"`
	// 下单地址
	Address string `gorm:"column:address;type:varchar(100);index" json:"address"`
	// 来源区块高度
	Height int64 `gorm:"column:height;not null;default:0" json:"height"`
	// 创建时间（取区块时间）
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	// 更新时间
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// ApplyFill 按成交价与数量更新剩余量和累计成交金额，成交完立即标记 done
func (o *Order) ApplyFill(price decimal.Decimal, quantity int64) {
	o.RemainingQuantity -= quantity
	o.Notional = o.Notional.Add(price.Mul(decimal.NewFromInt(quantity)))
	if o.RemainingQuantity <= 0 {
		o.RemainingQuantity = 0
		o.Status = OrderStatusDone
	}
}

// FilledQuantity 已成交数量
func (o *Order) FilledQuantity() int64 {
	return o.OriginQuantity - o.RemainingQuantity
}

// AverageFillPrice 平均成交价，未成交时返回零值
func (o *Order) AverageFillPrice() decimal.Decimal {
	filled := o.FilledQuantity()
	if filled <= 0 {
		return decimal.Zero
	}
	return o.Notional.Div(decimal.NewFromInt(filled))
}

// OrderFilter 订单查询条件
type OrderFilter struct {
	TokenID *uint64
	Side    OrderSide
	Status  OrderStatus
	Address string
	From    *time.Time
	To      *time.Time
}

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// Get 按 ID 获取订单
	Get(ctx context.Context, id uint64) (*Order, error)
	// ListByIDs 按 ID 集合批量获取订单
	ListByIDs(ctx context.Context, ids []uint64) ([]*Order, error)
	// ListPending 获取一个交易对的全部待撮合订单，按 ID 升序
	ListPending(ctx context.Context, tokenID uint64) ([]*Order, error)
	// List 条件查询订单，按 ID 升序
	List(ctx context.Context, filter OrderFilter) ([]*Order, error)
}
