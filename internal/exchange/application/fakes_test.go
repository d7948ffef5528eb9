package application

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/domain"
	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/infrastructure/ledger"
	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/infrastructure/settlement"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore 内存仓储，同时实现四个仓储接口
type memStore struct {
	tokens []*domain.Token
	blocks []*domain.Block
	orders []*domain.Order
	trades []*domain.Trade

	nextOrderID uint64
	nextTradeID uint64

	commitCalls int
	failHeight  int64
}

func newMemStore(tokens ...*domain.Token) *memStore {
	return &memStore{tokens: tokens, nextOrderID: 1, nextTradeID: 1, failHeight: -1}
}

func (m *memStore) Seed(ctx context.Context, tokens []*domain.Token) error {
	m.tokens = append(m.tokens, tokens...)
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id uint64) (*domain.Token, error) {
	for _, t := range m.tokens {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, domain.ErrTokenNotFound
}

func (m *memStore) GetBySymbol(ctx context.Context, symbol string) (*domain.Token, error) {
	for _, t := range m.tokens {
		if t.Symbol == symbol {
			return t, nil
		}
	}
	return nil, domain.ErrTokenNotFound
}

func (m *memStore) List(ctx context.Context) ([]*domain.Token, error) {
	return m.tokens, nil
}

func (m *memStore) Watermark(ctx context.Context) (int64, error) {
	watermark := int64(-1)
	for _, b := range m.blocks {
		if b.Height > watermark {
			watermark = b.Height
		}
	}
	return watermark, nil
}

func (m *memStore) SaveBlock(ctx context.Context, block *domain.Block, orders []*domain.Order) error {
	if block.Height == m.failHeight {
		return errors.New("simulated save failure")
	}
	m.blocks = append(m.blocks, block)
	for _, o := range orders {
		o.ID = m.nextOrderID
		m.nextOrderID++
		m.orders = append(m.orders, o)
	}
	return nil
}

func (m *memStore) Get(ctx context.Context, id uint64) (*domain.Order, error) {
	for _, o := range m.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (m *memStore) ListByIDs(ctx context.Context, ids []uint64) ([]*domain.Order, error) {
	want := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []*domain.Order
	for _, o := range m.orders {
		if want[o.ID] {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memStore) ListPending(ctx context.Context, tokenID uint64) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range m.orders {
		if o.TokenID == tokenID && o.Status == domain.OrderStatusTodo {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memStore) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range m.orders {
		if filter.TokenID != nil && o.TokenID != *filter.TokenID {
			continue
		}
		if filter.Side != "" && o.Side != filter.Side {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.Address != "" && o.Address != filter.Address {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *memStore) CommitMatch(ctx context.Context, orders []*domain.Order, trades []*domain.Trade) error {
	m.commitCalls++
	for _, t := range trades {
		t.ID = m.nextTradeID
		m.nextTradeID++
		m.trades = append(m.trades, t)
	}
	return nil
}

func (m *memStore) OldestUnsettled(ctx context.Context) (*domain.Trade, error) {
	for _, t := range m.trades {
		if !t.Settled {
			return t, nil
		}
	}
	return nil, nil
}

func (m *memStore) MarkSettled(ctx context.Context, id uint64) error {
	for _, t := range m.trades {
		if t.ID == id {
			t.Settled = true
			return nil
		}
	}
	return errors.New("trade not found")
}

func (m *memStore) ListTrades(ctx context.Context, filter domain.TradeFilter) ([]*domain.Trade, error) {
	var out []*domain.Trade
	for _, t := range m.trades {
		if filter.TokenID != nil && t.TokenID != *filter.TokenID {
			continue
		}
		if filter.Settled != nil && t.Settled != *filter.Settled {
			continue
		}
		if filter.OrderID != nil && t.MakerOrderID != *filter.OrderID && t.TakerOrderID != *filter.OrderID {
			continue
		}
		if filter.From != nil && t.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && t.CreatedAt.After(*filter.To) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// orderRepoView / tradeRepoView 让 memStore 同时满足两个都带 List 方法的接口
type orderRepoView struct{ *memStore }

func (v orderRepoView) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	return v.ListOrders(ctx, filter)
}

type tradeRepoView struct{ *memStore }

func (v tradeRepoView) List(ctx context.Context, filter domain.TradeFilter) ([]*domain.Trade, error) {
	return v.ListTrades(ctx, filter)
}

// fakeLedger 内存账本，记录每次 Blocks 调用的区间
type fakeLedger struct {
	tip    int64
	blocks map[int64]ledger.Block
	calls  [][2]int64
}

func (f *fakeLedger) LatestHeight(ctx context.Context) (int64, error) {
	return f.tip, nil
}

func (f *fakeLedger) Blocks(ctx context.Context, start, end int64) ([]ledger.Block, error) {
	f.calls = append(f.calls, [2]int64{start, end})
	var out []ledger.Block
	for h := start; h < end; h++ {
		block, ok := f.blocks[h]
		if !ok {
			block = ledger.Block{}
			block.Header.Metadata.Height = h
			block.Header.Metadata.Timestamp = 1685600000 + h*15
		}
		out = append(out, block)
	}
	return out, nil
}

// fakeSettlement 记录结算调用，可注入失败
type fakeSettlement struct {
	requests []settlement.ExecuteRequest
	fail     bool
}

func (f *fakeSettlement) Execute(ctx context.Context, req settlement.ExecuteRequest) error {
	if f.fail {
		return errors.New("simulated settlement failure")
	}
	f.requests = append(f.requests, req)
	return nil
}

// fakePublisher 记录发布的成交事件
type fakePublisher struct {
	events []domain.TradeMatchedEvent
	fail   bool
}

func (f *fakePublisher) PublishTradeMatched(ctx context.Context, events []domain.TradeMatchedEvent) error {
	if f.fail {
		return errors.New("simulated publish failure")
	}
	f.events = append(f.events, events...)
	return nil
}
