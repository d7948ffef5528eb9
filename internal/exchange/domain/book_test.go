package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func limitOrder(id uint64, side OrderSide, price string, quantity int64) *Order {
	return &Order{
		ID:                id,
		TokenID:           1,
		Side:              side,
		Kind:              OrderKindLimit,
		Price:             decimal.RequireFromString(price),
		RemainingQuantity: quantity,
		OriginQuantity:    quantity,
		Notional:          decimal.Zero,
		Status:            OrderStatusTodo,
	}
}

func marketOrder(id uint64, side OrderSide, quantity int64) *Order {
	o := limitOrder(id, side, "0", quantity)
	o.Kind = OrderKindMarket
	return o
}

func replay(orders []*Order) []Fill {
	book := NewOrderBook()
	var fills []Fill
	for _, o := range orders {
		fills = append(fills, book.Submit(o)...)
	}
	return fills
}

func TestOrderBook_PartialFill(t *testing.T) {
	ask := limitOrder(1, OrderSideAsk, "100", 5)
	bid := limitOrder(2, OrderSideBid, "100", 3)

	fills := replay([]*Order{ask, bid})

	if len(fills) != 1 {
		t.Fatalf("len(fills) = %d, want 1", len(fills))
	}
	f := fills[0]
	if f.MakerOrderID != 1 || f.TakerOrderID != 2 {
		t.Errorf("fill = maker %d taker %d, want maker 1 taker 2", f.MakerOrderID, f.TakerOrderID)
	}
	if !f.Price.Equal(decimal.RequireFromString("100")) {
		t.Errorf("fill price = %s, want 100", f.Price)
	}
	if f.Quantity != 3 {
		t.Errorf("fill quantity = %d, want 3", f.Quantity)
	}

	if ask.RemainingQuantity != 2 || ask.Status != OrderStatusTodo {
		t.Errorf("ask = qty %d status %s, want qty 2 status todo", ask.RemainingQuantity, ask.Status)
	}
	if bid.RemainingQuantity != 0 || bid.Status != OrderStatusDone {
		t.Errorf("bid = qty %d status %s, want qty 0 status done", bid.RemainingQuantity, bid.Status)
	}
}

func TestOrderBook_MakerPriceWins(t *testing.T) {
	// 卖一 100、卖二 101，买单限价 101 吃穿两档，成交价逐档取挂单价
	orders := []*Order{
		limitOrder(1, OrderSideAsk, "101", 2),
		limitOrder(2, OrderSideAsk, "100", 2),
		limitOrder(3, OrderSideBid, "101", 3),
	}

	fills := replay(orders)

	if len(fills) != 2 {
		t.Fatalf("len(fills) = %d, want 2", len(fills))
	}
	if fills[0].MakerOrderID != 2 || !fills[0].Price.Equal(decimal.RequireFromString("100")) || fills[0].Quantity != 2 {
		t.Errorf("fills[0] = maker %d price %s qty %d, want maker 2 price 100 qty 2",
			fills[0].MakerOrderID, fills[0].Price, fills[0].Quantity)
	}
	if fills[1].MakerOrderID != 1 || !fills[1].Price.Equal(decimal.RequireFromString("101")) || fills[1].Quantity != 1 {
		t.Errorf("fills[1] = maker %d price %s qty %d, want maker 1 price 101 qty 1",
			fills[1].MakerOrderID, fills[1].Price, fills[1].Quantity)
	}
	if orders[2].RemainingQuantity != 0 || orders[2].Status != OrderStatusDone {
		t.Errorf("taker = qty %d status %s, want qty 0 status done",
			orders[2].RemainingQuantity, orders[2].Status)
	}
}

func TestOrderBook_TimePriority(t *testing.T) {
	// 同价位先到先成交
	orders := []*Order{
		limitOrder(1, OrderSideAsk, "100", 1),
		limitOrder(2, OrderSideAsk, "100", 1),
		limitOrder(3, OrderSideBid, "100", 1),
	}

	fills := replay(orders)

	if len(fills) != 1 {
		t.Fatalf("len(fills) = %d, want 1", len(fills))
	}
	if fills[0].MakerOrderID != 1 {
		t.Errorf("maker = %d, want 1 (earlier order first)", fills[0].MakerOrderID)
	}
}

func TestOrderBook_NoCross(t *testing.T) {
	orders := []*Order{
		limitOrder(1, OrderSideAsk, "101", 5),
		limitOrder(2, OrderSideBid, "100", 5),
	}

	fills := replay(orders)

	if len(fills) != 0 {
		t.Fatalf("len(fills) = %d, want 0", len(fills))
	}
	if orders[0].Status != OrderStatusTodo || orders[1].Status != OrderStatusTodo {
		t.Errorf("statuses = %s/%s, want todo/todo", orders[0].Status, orders[1].Status)
	}
}

func TestOrderBook_MarketOrder(t *testing.T) {
	book := NewOrderBook()
	ask := limitOrder(1, OrderSideAsk, "100", 2)
	bid := marketOrder(2, OrderSideBid, 5)

	book.Submit(ask)
	fills := book.Submit(bid)

	if len(fills) != 1 {
		t.Fatalf("len(fills) = %d, want 1", len(fills))
	}
	if !fills[0].Price.Equal(decimal.RequireFromString("100")) || fills[0].Quantity != 2 {
		t.Errorf("fill = price %s qty %d, want price 100 qty 2", fills[0].Price, fills[0].Quantity)
	}
	if bid.RemainingQuantity != 3 || bid.Status != OrderStatusTodo {
		t.Errorf("market bid = qty %d status %s, want qty 3 status todo", bid.RemainingQuantity, bid.Status)
	}

	// 市价单剩余量不挂簿，后续卖单不会与其成交
	if extra := book.Submit(limitOrder(3, OrderSideAsk, "99", 3)); len(extra) != 0 {
		t.Errorf("market leftover matched %d fills, want 0", len(extra))
	}
}

func TestOrderBook_Deterministic(t *testing.T) {
	build := func() []*Order {
		return []*Order{
			limitOrder(1, OrderSideAsk, "100", 5),
			limitOrder(2, OrderSideBid, "101", 2),
			limitOrder(3, OrderSideAsk, "99", 4),
			limitOrder(4, OrderSideBid, "100", 6),
			limitOrder(5, OrderSideBid, "98", 3),
		}
	}

	first := replay(build())
	second := replay(build())

	if len(first) != len(second) {
		t.Fatalf("fill counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].MakerOrderID != second[i].MakerOrderID ||
			first[i].TakerOrderID != second[i].TakerOrderID ||
			!first[i].Price.Equal(second[i].Price) ||
			first[i].Quantity != second[i].Quantity {
			t.Errorf("fills[%d] differ: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestOrderBook_QuantityConservation(t *testing.T) {
	orders := []*Order{
		limitOrder(1, OrderSideAsk, "100", 7),
		limitOrder(2, OrderSideAsk, "101", 4),
		limitOrder(3, OrderSideBid, "101", 6),
		limitOrder(4, OrderSideBid, "100", 3),
	}

	fills := replay(orders)

	var matched int64
	for _, f := range fills {
		matched += f.Quantity
	}
	for _, o := range orders {
		if o.FilledQuantity()+o.RemainingQuantity != o.OriginQuantity {
			t.Errorf("order %d: filled %d + remaining %d != origin %d",
				o.ID, o.FilledQuantity(), o.RemainingQuantity, o.OriginQuantity)
		}
		if o.RemainingQuantity < 0 {
			t.Errorf("order %d: negative remaining %d", o.ID, o.RemainingQuantity)
		}
	}

	var askFilled, bidFilled int64
	for _, o := range orders {
		if o.Side == OrderSideAsk {
			askFilled += o.FilledQuantity()
		} else {
			bidFilled += o.FilledQuantity()
		}
	}
	if askFilled != matched || bidFilled != matched {
		t.Errorf("filled ask %d / bid %d, want both %d", askFilled, bidFilled, matched)
	}
}

func TestOrder_AverageFillPrice(t *testing.T) {
	o := limitOrder(1, OrderSideBid, "101", 3)
	o.ApplyFill(decimal.RequireFromString("100"), 2)
	o.ApplyFill(decimal.RequireFromString("101"), 1)

	want := decimal.RequireFromString("100.5")
	if got := o.AverageFillPrice(); !got.Round(4).Equal(want.Round(4)) {
		t.Errorf("AverageFillPrice() = %s, want %s", got, want)
	}

	untouched := limitOrder(2, OrderSideAsk, "100", 5)
	if got := untouched.AverageFillPrice(); !got.IsZero() {
		t.Errorf("AverageFillPrice() = %s, want 0", got)
	}
}
