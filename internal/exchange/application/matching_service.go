package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/domain"
	"github.com/privx-exchange/privx-exchange-backend/pkg/metrics"
)

// MatchingService 撮合引擎组件。
// 每轮按交易对独立撮合：把全部待撮合订单按 ID 升序重放进一个全新构建的
// 价格-时间优先订单簿，产生的成交与订单状态更新原子落地。
// 簿不跨周期持久，崩溃后直接从已提交的存储状态重建。
type MatchingService struct {
	tokens    domain.TokenRepository
	orders    domain.OrderRepository
	trades    domain.TradeRepository
	publisher domain.TradePublisher
	interval  time.Duration
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewMatchingService 创建撮合引擎组件，publisher 可为 nil（不发布事件）
func NewMatchingService(
	tokens domain.TokenRepository,
	orders domain.OrderRepository,
	trades domain.TradeRepository,
	publisher domain.TradePublisher,
	interval time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) *MatchingService {
	return &MatchingService{
		tokens:    tokens,
		orders:    orders,
		trades:    trades,
		publisher: publisher,
		interval:  interval,
		metrics:   m,
		logger:    logger,
	}
}

// Run 以固定间隔轮询，直到 ctx 取消
func (s *MatchingService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.RunCycle(ctx); err != nil {
			s.logger.ErrorContext(ctx, "matching cycle failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunCycle 对每个交易对独立执行一轮撮合，单个交易对失败不影响其它交易对
func (s *MatchingService) RunCycle(ctx context.Context) error {
	tokens, err := s.tokens.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tokens: %w", err)
	}

	if s.metrics != nil {
		s.metrics.MatchCyclesTotal.Inc()
	}

	var firstErr error
	for _, token := range tokens {
		if err := s.MatchToken(ctx, token); err != nil {
			s.logger.ErrorContext(ctx, "token matching failed",
				"token_id", token.ID, "symbol", token.Symbol, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// MatchToken 撮合一个交易对：零成交的轮次不产生任何写入
func (s *MatchingService) MatchToken(ctx context.Context, token *domain.Token) error {
	pending, err := s.orders.ListPending(ctx, token.ID)
	if err != nil {
		return fmt.Errorf("failed to load pending orders: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	book := domain.NewOrderBook()
	byID := make(map[uint64]*domain.Order, len(pending))
	touched := make(map[uint64]bool)
	now := time.Now()

	var trades []*domain.Trade
	for _, order := range pending {
		byID[order.ID] = order
		for _, fill := range book.Submit(order) {
			trades = append(trades, &domain.Trade{
				TokenID:      token.ID,
				Price:        fill.Price,
				Quantity:     fill.Quantity,
				MakerOrderID: fill.MakerOrderID,
				TakerOrderID: fill.TakerOrderID,
				CreatedAt:    now,
			})
			touched[fill.MakerOrderID] = true
			touched[fill.TakerOrderID] = true
		}
	}
	if len(trades) == 0 {
		return nil
	}

	// pending 本身按 ID 升序，过滤即可保持确定的更新顺序
	updated := make([]*domain.Order, 0, len(touched))
	for _, order := range pending {
		if touched[order.ID] {
			updated = append(updated, order)
		}
	}

	if err := s.trades.CommitMatch(ctx, updated, trades); err != nil {
		return fmt.Errorf("failed to commit match cycle: %w", err)
	}

	if s.metrics != nil {
		s.metrics.TradesMatchedTotal.Add(float64(len(trades)))
	}
	s.logger.InfoContext(ctx, "match cycle committed",
		"symbol", token.Symbol, "trades", len(trades), "orders_touched", len(updated))

	s.publishTrades(ctx, token, trades)
	return nil
}

// publishTrades 事务提交后尽力发布成交事件，失败只记日志
func (s *MatchingService) publishTrades(ctx context.Context, token *domain.Token, trades []*domain.Trade) {
	if s.publisher == nil {
		return
	}

	events := make([]domain.TradeMatchedEvent, 0, len(trades))
	for _, t := range trades {
		events = append(events, domain.TradeMatchedEvent{
			TradeID:      t.ID,
			TokenID:      t.TokenID,
			Symbol:       token.Symbol,
			Price:        t.Price,
			Quantity:     t.Quantity,
			MakerOrderID: t.MakerOrderID,
			TakerOrderID: t.TakerOrderID,
			OccurredAt:   t.CreatedAt,
		})
	}
	if err := s.publisher.PublishTradeMatched(ctx, events); err != nil {
		s.logger.WarnContext(ctx, "failed to publish trade events",
			"symbol", token.Symbol, "count", len(events), "error", err)
	}
}
