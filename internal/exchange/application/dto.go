package application

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/domain"
)

// HistoryDTO K 线序列，TradingView UDF 风格的列数组
type HistoryDTO struct {
	Status  string            `json:"s"`
	Times   []int64           `json:"t"`
	Opens   []decimal.Decimal `json:"o"`
	Highs   []decimal.Decimal `json:"h"`
	Lows    []decimal.Decimal `json:"l"`
	Closes  []decimal.Decimal `json:"c"`
	Volumes []int64           `json:"v"`
}

// TradeLegDTO 成交一条腿的订单信息
type TradeLegDTO struct {
	OrderID           uint64           `json:"order_id"`
	Side              domain.OrderSide `json:"side"`
	Price             decimal.Decimal  `json:"price"`
	Address           string           `json:"address"`
	RemainingQuantity int64            `json:"remaining_quantity"`
	OriginQuantity    int64            `json:"origin_quantity"`
}

// TradeDTO 成交记录及其双边订单信息
type TradeDTO struct {
	ID        uint64          `json:"id"`
	TokenID   uint64          `json:"token_id"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Settled   bool            `json:"settled"`
	CreatedAt time.Time       `json:"created_at"`
	Maker     *TradeLegDTO    `json:"maker,omitempty"`
	Taker     *TradeLegDTO    `json:"taker,omitempty"`
}

// SymbolInfoDTO 图表端使用的交易对描述
type SymbolInfoDTO struct {
	Name                 string   `json:"name"`
	Timezone             string   `json:"timezone"`
	PriceScale           int      `json:"pricescale"`
	Session              string   `json:"session"`
	SupportedResolutions []string `json:"supported_resolutions"`
}

// OrderQuery 订单列表查询参数
type OrderQuery struct {
	Symbol  string
	Side    string
	Status  string
	Address string
	From    *time.Time
	To      *time.Time
}

// TradeQuery 成交列表查询参数
type TradeQuery struct {
	Symbol  string
	TokenID *uint64
	Settled *bool
	Address string
	OrderID *uint64
	From    *time.Time
	To      *time.Time
}
