package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/domain"
)

// ErrInvalidQuery 查询参数非法
var ErrInvalidQuery = errors.New("invalid query")

// MarketDataQueryService 读侧聚合查询，完全无状态
type MarketDataQueryService struct {
	tokens domain.TokenRepository
	orders domain.OrderRepository
	trades domain.TradeRepository
}

// NewMarketDataQueryService 创建读侧查询服务
func NewMarketDataQueryService(
	tokens domain.TokenRepository,
	orders domain.OrderRepository,
	trades domain.TradeRepository,
) *MarketDataQueryService {
	return &MarketDataQueryService{tokens: tokens, orders: orders, trades: trades}
}

// Depth 按交易对聚合盘口深度
func (s *MarketDataQueryService) Depth(ctx context.Context, symbol string) (*domain.Depth, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrInvalidQuery)
	}
	token, err := s.tokens.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}

	pending, err := s.orders.ListPending(ctx, token.ID)
	if err != nil {
		return nil, err
	}
	depth := domain.BuildDepth(token.Symbol, pending)
	return &depth, nil
}

// History 按固定时长分桶返回 OHLCV 序列，无成交时返回 no_data
func (s *MarketDataQueryService) History(ctx context.Context, symbol string, from, to time.Time, bucket time.Duration) (*HistoryDTO, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrInvalidQuery)
	}
	if bucket <= 0 {
		return nil, fmt.Errorf("%w: invalid resolution", ErrInvalidQuery)
	}
	token, err := s.tokens.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}

	filter := domain.TradeFilter{TokenID: &token.ID}
	if !from.IsZero() {
		filter.From = &from
	}
	if !to.IsZero() {
		filter.To = &to
	}
	trades, err := s.trades.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(trades) == 0 {
		return &HistoryDTO{Status: "no_data"}, nil
	}

	candles := domain.BuildCandles(trades, to, bucket)
	dto := &HistoryDTO{Status: "ok"}
	for _, c := range candles {
		dto.Times = append(dto.Times, c.Time)
		dto.Opens = append(dto.Opens, c.Open)
		dto.Highs = append(dto.Highs, c.High)
		dto.Lows = append(dto.Lows, c.Low)
		dto.Closes = append(dto.Closes, c.Close)
		dto.Volumes = append(dto.Volumes, c.Volume)
	}
	return dto, nil
}

// Summary 过去 24 小时的滚动聚合，symbol 为空时跨全部交易对
func (s *MarketDataQueryService) Summary(ctx context.Context, symbol string) (*domain.Summary, error) {
	from := time.Now().Add(-24 * time.Hour)
	filter := domain.TradeFilter{From: &from}
	if symbol != "" {
		token, err := s.tokens.GetBySymbol(ctx, symbol)
		if err != nil {
			return nil, err
		}
		filter.TokenID = &token.ID
	}

	trades, err := s.trades.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	summary := domain.BuildSummary(trades)
	return &summary, nil
}

// Orders 订单列表查询
func (s *MarketDataQueryService) Orders(ctx context.Context, q OrderQuery) ([]*domain.Order, error) {
	filter := domain.OrderFilter{Address: q.Address, From: q.From, To: q.To}

	switch q.Side {
	case "":
	case string(domain.OrderSideAsk), string(domain.OrderSideBid):
		filter.Side = domain.OrderSide(q.Side)
	default:
		return nil, fmt.Errorf("%w: unknown side %q", ErrInvalidQuery, q.Side)
	}

	switch q.Status {
	case "":
	case string(domain.OrderStatusTodo), string(domain.OrderStatusDone), string(domain.OrderStatusCancel):
		filter.Status = domain.OrderStatus(q.Status)
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidQuery, q.Status)
	}

	if q.Symbol != "" {
		token, err := s.tokens.GetBySymbol(ctx, q.Symbol)
		if err != nil {
			return nil, err
		}
		filter.TokenID = &token.ID
	}

	return s.orders.List(ctx, filter)
}

// Trades 成交列表查询，结果带双边订单信息
func (s *MarketDataQueryService) Trades(ctx context.Context, q TradeQuery) ([]*TradeDTO, error) {
	filter := domain.TradeFilter{
		TokenID: q.TokenID,
		Settled: q.Settled,
		Address: q.Address,
		OrderID: q.OrderID,
		From:    q.From,
		To:      q.To,
	}
	if q.Symbol != "" {
		token, err := s.tokens.GetBySymbol(ctx, q.Symbol)
		if err != nil {
			return nil, err
		}
		filter.TokenID = &token.ID
	}

	trades, err := s.trades.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(trades) == 0 {
		return []*TradeDTO{}, nil
	}

	legs, err := s.loadLegs(ctx, trades)
	if err != nil {
		return nil, err
	}

	dtos := make([]*TradeDTO, 0, len(trades))
	for _, t := range trades {
		dtos = append(dtos, &TradeDTO{
			ID:        t.ID,
			TokenID:   t.TokenID,
			Price:     t.Price,
			Quantity:  t.Quantity,
			Settled:   t.Settled,
			CreatedAt: t.CreatedAt,
			Maker:     legs[t.MakerOrderID],
			Taker:     legs[t.TakerOrderID],
		})
	}
	return dtos, nil
}

// Tokens 交易对目录
func (s *MarketDataQueryService) Tokens(ctx context.Context) ([]*domain.Token, error) {
	return s.tokens.List(ctx)
}

// SymbolInfo 图表端交易对描述
func (s *MarketDataQueryService) SymbolInfo(symbol string) *SymbolInfoDTO {
	return &SymbolInfoDTO{
		Name:       symbol,
		Timezone:   "Asia/Singapore",
		PriceScale: 1,
		Session:    "24x7",
		SupportedResolutions: []string{
			"1", "5", "15", "30", "60", "1D", "1W",
		},
	}
}

func (s *MarketDataQueryService) loadLegs(ctx context.Context, trades []*domain.Trade) (map[uint64]*TradeLegDTO, error) {
	idSet := make(map[uint64]bool, len(trades)*2)
	ids := make([]uint64, 0, len(trades)*2)
	for _, t := range trades {
		for _, id := range []uint64{t.MakerOrderID, t.TakerOrderID} {
			if !idSet[id] {
				idSet[id] = true
				ids = append(ids, id)
			}
		}
	}

	orders, err := s.orders.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	legs := make(map[uint64]*TradeLegDTO, len(orders))
	for _, o := range orders {
		legs[o.ID] = &TradeLegDTO{
			OrderID:           o.ID,
			Side:              o.Side,
			Price:             o.Price,
			Address:           o.Address,
			RemainingQuantity: o.RemainingQuantity,
			OriginQuantity:    o.OriginQuantity,
		}
	}
	return legs, nil
}
