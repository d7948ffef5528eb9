package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TradeMatchedEvent 撮合成交领域事件，在撮合事务提交后对外发布
type TradeMatchedEvent struct {
	TradeID      uint64          `json:"trade_id"`
	TokenID      uint64          `json:"token_id"`
	Symbol       string          `json:"symbol"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int64           `json:"quantity"`
	MakerOrderID uint64          `json:"maker_order_id"`
	TakerOrderID uint64          `json:"taker_order_id"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// TradePublisher 成交事件发布接口
type TradePublisher interface {
	PublishTradeMatched(ctx context.Context, events []TradeMatchedEvent) error
}
