// Package application 四个轮询组件与读侧查询服务
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/domain"
	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/infrastructure/ledger"
	"github.com/privx-exchange/privx-exchange-backend/pkg/metrics"
)

// LedgerClient 账本节点访问接口
type LedgerClient interface {
	LatestHeight(ctx context.Context) (int64, error)
	Blocks(ctx context.Context, start, end int64) ([]ledger.Block, error)
}

// orderRoute 链上函数名到交易对与方向的映射
type orderRoute struct {
	tokenID uint64
	side    domain.OrderSide
}

// IngestionService 区块摄取组件。
// 轮询账本高度，分页拉取落后的区块，把链上交易意图解码为待撮合订单并推进水位。
type IngestionService struct {
	ledger    LedgerClient
	blocks    domain.BlockRepository
	tokens    domain.TokenRepository
	programID string
	batchSize int64
	interval  time.Duration
	metrics   *metrics.Metrics
	logger    *slog.Logger

	// 交易对目录不可变，首轮加载后缓存
	routes map[string]orderRoute
}

// NewIngestionService 创建区块摄取组件
func NewIngestionService(
	ledgerClient LedgerClient,
	blocks domain.BlockRepository,
	tokens domain.TokenRepository,
	programID string,
	batchSize int64,
	interval time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) *IngestionService {
	return &IngestionService{
		ledger:    ledgerClient,
		blocks:    blocks,
		tokens:    tokens,
		programID: programID,
		batchSize: batchSize,
		interval:  interval,
		metrics:   m,
		logger:    logger,
	}
}

// Run 以固定间隔轮询，直到 ctx 取消。
// 任何失败只中止当轮，水位保持不变，下一轮无条件重试。
func (s *IngestionService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.RunCycle(ctx); err != nil {
			s.logger.ErrorContext(ctx, "block ingestion cycle failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunCycle 执行一轮摄取：追平账本最新高度
func (s *IngestionService) RunCycle(ctx context.Context) error {
	if s.routes == nil {
		routes, err := s.loadRoutes(ctx)
		if err != nil {
			return fmt.Errorf("failed to load token catalog: %w", err)
		}
		s.routes = routes
	}

	tip, err := s.ledger.LatestHeight(ctx)
	if err != nil {
		return err
	}
	local, err := s.blocks.Watermark(ctx)
	if err != nil {
		return err
	}

	for local < tip {
		start := local + 1
		end := min(start+s.batchSize, tip+1)

		blocks, err := s.ledger.Blocks(ctx, start, end)
		if err != nil {
			return err
		}
		if len(blocks) == 0 {
			return fmt.Errorf("ledger returned no blocks for [%d, %d)", start, end)
		}

		for i := range blocks {
			block := &blocks[i]
			orders, err := s.decodeBlock(block)
			if err != nil {
				return fmt.Errorf("failed to decode block %d: %w", block.Height(), err)
			}

			err = s.blocks.SaveBlock(ctx, &domain.Block{
				Height:    block.Height(),
				CreatedAt: block.Timestamp(),
			}, orders)
			if err != nil {
				return fmt.Errorf("failed to save block %d: %w", block.Height(), err)
			}

			local = block.Height()
			if s.metrics != nil {
				s.metrics.BlocksIngestedTotal.Inc()
				s.metrics.OrdersCreatedTotal.Add(float64(len(orders)))
				s.metrics.WatermarkHeight.Set(float64(local))
			}
			if len(orders) > 0 {
				s.logger.InfoContext(ctx, "block ingested",
					"height", block.Height(), "orders", len(orders))
			}
		}
	}
	return nil
}

// decodeBlock 把区块内被监控程序的已接受转移解码为订单
func (s *IngestionService) decodeBlock(block *ledger.Block) ([]*domain.Order, error) {
	var orders []*domain.Order
	for _, tx := range block.Transactions {
		if !tx.Accepted() {
			continue
		}
		for _, transition := range tx.Transaction.Execution.Transitions {
			if transition.Program != s.programID {
				continue
			}
			route, ok := s.routes[transition.Function]
			if !ok {
				continue
			}
			if len(transition.Finalize) != 3 {
				return nil, fmt.Errorf("transition %s: want 3 finalize outputs, got %d",
					transition.Function, len(transition.Finalize))
			}

			quantity, err := ledger.ParseU64(transition.Finalize[1])
			if err != nil {
				return nil, err
			}
			price, err := ledger.ParseU64(transition.Finalize[2])
			if err != nil {
				return nil, err
			}

			orders = append(orders, &domain.Order{
				TokenID:           route.tokenID,
				Side:              route.side,
				Kind:              domain.OrderKindLimit,
				Price:             decimal.NewFromInt(price),
				RemainingQuantity: quantity,
				OriginQuantity:    quantity,
				Notional:          decimal.Zero,
				Status:            domain.OrderStatusTodo,
				Address:           transition.Finalize[0],
				Height:            block.Height(),
				CreatedAt:         block.Timestamp(),
				UpdatedAt:         block.Timestamp(),
			})
		}
	}
	return orders, nil
}

func (s *IngestionService) loadRoutes(ctx context.Context) (map[string]orderRoute, error) {
	tokens, err := s.tokens.List(ctx)
	if err != nil {
		return nil, err
	}
	routes := make(map[string]orderRoute, len(tokens)*2)
	for _, t := range tokens {
		routes[t.SellFunction] = orderRoute{tokenID: t.ID, side: domain.OrderSideAsk}
		routes[t.BuyFunction] = orderRoute{tokenID: t.ID, side: domain.OrderSideBid}
	}
	return routes, nil
}
