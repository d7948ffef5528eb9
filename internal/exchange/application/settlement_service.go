package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/domain"
	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/infrastructure/settlement"
	"github.com/privx-exchange/privx-exchange-backend/pkg/metrics"
)

// SettlementClient 链上结算调用接口
type SettlementClient interface {
	Execute(ctx context.Context, req settlement.ExecuteRequest) error
}

// SettlementService 结算桥组件。
// 每轮只处理最早的一笔未结算成交（严格按 ID 先进先出），保证链上结算顺序
// 与链下撮合顺序一致；失败的成交留在队头，下一轮重试。
type SettlementService struct {
	trades     domain.TradeRepository
	orders     domain.OrderRepository
	tokens     domain.TokenRepository
	client     SettlementClient
	programID  string
	privateKey string
	fee        int64
	interval   time.Duration
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewSettlementService 创建结算桥组件
func NewSettlementService(
	trades domain.TradeRepository,
	orders domain.OrderRepository,
	tokens domain.TokenRepository,
	client SettlementClient,
	programID, privateKey string,
	fee int64,
	interval time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) *SettlementService {
	return &SettlementService{
		trades:     trades,
		orders:     orders,
		tokens:     tokens,
		client:     client,
		programID:  programID,
		privateKey: privateKey,
		fee:        fee,
		interval:   interval,
		metrics:    m,
		logger:     logger,
	}
}

// Run 以固定短间隔轮询，直到 ctx 取消
func (s *SettlementService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.RunCycle(ctx); err != nil {
			s.logger.ErrorContext(ctx, "settlement cycle failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunCycle 结算队头的一笔成交，没有待结算成交时直接返回
func (s *SettlementService) RunCycle(ctx context.Context) error {
	trade, err := s.trades.OldestUnsettled(ctx)
	if err != nil {
		return fmt.Errorf("failed to load unsettled trade: %w", err)
	}
	if trade == nil {
		return nil
	}

	token, err := s.tokens.GetByID(ctx, trade.TokenID)
	if err != nil {
		return fmt.Errorf("trade %d: %w", trade.ID, err)
	}

	maker, err := s.orders.Get(ctx, trade.MakerOrderID)
	if err != nil {
		return fmt.Errorf("trade %d maker leg: %w", trade.ID, err)
	}

	buyOrderID, sellOrderID := trade.TakerOrderID, trade.MakerOrderID
	if maker.Side == domain.OrderSideBid {
		buyOrderID, sellOrderID = trade.MakerOrderID, trade.TakerOrderID
	}

	req := settlement.ExecuteRequest{
		ProgramID:       s.programID,
		ProgramFunction: token.SettleFunction,
		Inputs: []string{
			fmt.Sprintf("%du64", buyOrderID),
			fmt.Sprintf("%du64", sellOrderID),
		},
		PrivateKey: s.privateKey,
		Fee:        s.fee,
	}

	if err := s.client.Execute(ctx, req); err != nil {
		if s.metrics != nil {
			s.metrics.SettlementFailuresTotal.Inc()
		}
		return fmt.Errorf("failed to settle trade %d: %w", trade.ID, err)
	}

	if err := s.trades.MarkSettled(ctx, trade.ID); err != nil {
		return fmt.Errorf("failed to mark trade %d settled: %w", trade.ID, err)
	}

	if s.metrics != nil {
		s.metrics.TradesSettledTotal.Inc()
	}
	s.logger.InfoContext(ctx, "trade settled",
		"trade_id", trade.ID, "symbol", token.Symbol,
		"buy_order_id", buyOrderID, "sell_order_id", sellOrderID)
	return nil
}
