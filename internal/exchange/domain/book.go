package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Fill 一笔撮合产生的成交
type Fill struct {
	MakerOrderID uint64
	TakerOrderID uint64
	Price        decimal.Decimal
	Quantity     int64
}

// priceLevel 同一价格档位下的订单队列，按订单 ID 先后保证时间优先 (FIFO)
type priceLevel struct {
	price decimal.Decimal
	queue []*Order
}

// OrderBook 价格-时间优先订单簿。
// 每轮撮合从存储快照重建，不跨周期持久；同一快照重放必然得到相同的成交序列。
type OrderBook struct {
	// 卖盘，价格升序，最优价在前
	asks []*priceLevel
	// 买盘，价格降序，最优价在前
	bids []*priceLevel
}

// NewOrderBook 创建空订单簿
func NewOrderBook() *OrderBook {
	return &OrderBook{}
}

// Submit 将一笔进单与对手盘撮合，直接在订单上累计成交。
// 成交价始终取挂单方限价；有剩余的限价单留在簿内供后续进单吃掉，
// 市价单的剩余量不挂簿。
func (b *OrderBook) Submit(order *Order) []Fill {
	var fills []Fill
	if order.Side == OrderSideBid {
		fills = b.match(order, &b.asks, func(makerPrice decimal.Decimal) bool {
			return order.Kind == OrderKindMarket || makerPrice.LessThanOrEqual(order.Price)
		})
		if order.RemainingQuantity > 0 && order.Kind == OrderKindLimit {
			insertLevel(&b.bids, order, false)
		}
	} else {
		fills = b.match(order, &b.bids, func(makerPrice decimal.Decimal) bool {
			return order.Kind == OrderKindMarket || makerPrice.GreaterThanOrEqual(order.Price)
		})
		if order.RemainingQuantity > 0 && order.Kind == OrderKindLimit {
			insertLevel(&b.asks, order, true)
		}
	}
	return fills
}

func (b *OrderBook) match(taker *Order, opposing *[]*priceLevel, crosses func(decimal.Decimal) bool) []Fill {
	var fills []Fill
	for taker.RemainingQuantity > 0 && len(*opposing) > 0 {
		level := (*opposing)[0]
		if !crosses(level.price) {
			break
		}

		for taker.RemainingQuantity > 0 && len(level.queue) > 0 {
			maker := level.queue[0]
			quantity := min(taker.RemainingQuantity, maker.RemainingQuantity)

			maker.ApplyFill(level.price, quantity)
			taker.ApplyFill(level.price, quantity)
			fills = append(fills, Fill{
				MakerOrderID: maker.ID,
				TakerOrderID: taker.ID,
				Price:        level.price,
				Quantity:     quantity,
			})

			if maker.RemainingQuantity == 0 {
				level.queue = level.queue[1:]
			}
		}

		if len(level.queue) == 0 {
			*opposing = (*opposing)[1:]
		}
	}
	return fills
}

// insertLevel 将订单插入己方盘口，维持价格排序与档位内 FIFO
func insertLevel(levels *[]*priceLevel, order *Order, asc bool) {
	idx := sort.Search(len(*levels), func(i int) bool {
		cmp := (*levels)[i].price.Cmp(order.Price)
		if asc {
			return cmp >= 0
		}
		return cmp <= 0
	})

	if idx < len(*levels) && (*levels)[idx].price.Equal(order.Price) {
		(*levels)[idx].queue = append((*levels)[idx].queue, order)
		return
	}

	*levels = append(*levels, nil)
	copy((*levels)[idx+1:], (*levels)[idx:])
	(*levels)[idx] = &priceLevel{price: order.Price, queue: []*Order{order}}
}
