package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DepthLevel 盘口一个价格档位的聚合
type DepthLevel struct {
	// 档位价格
	Price decimal.Decimal `json:"price"`
	// 档位挂单量
	Quantity int64 `json:"quantity"`
	// 从最优价起的累计挂单量
	CumulativeQuantity int64 `json:"cumulative_quantity"`
	// 从最优价起的累计名义金额
	CumulativeNotional decimal.Decimal `json:"cumulative_notional"`
}

// Depth 盘口深度快照
type Depth struct {
	Symbol string `json:"symbol"`
	// 卖盘，价格升序
	Asks []DepthLevel `json:"asks"`
	// 买盘，价格降序
	Bids []DepthLevel `json:"bids"`
}

// BuildDepth 将待撮合订单聚合为盘口深度。
// 订单需按 ID 升序传入以保证结果稳定。
func BuildDepth(symbol string, orders []*Order) Depth {
	asks := map[string]*DepthLevel{}
	bids := map[string]*DepthLevel{}
	var askPrices, bidPrices []decimal.Decimal

	for _, o := range orders {
		if o.Status != OrderStatusTodo || o.RemainingQuantity <= 0 {
			continue
		}
		side := asks
		if o.Side == OrderSideBid {
			side = bids
		}
		key := o.Price.String()
		level, ok := side[key]
		if !ok {
			level = &DepthLevel{Price: o.Price}
			side[key] = level
			if o.Side == OrderSideBid {
				bidPrices = append(bidPrices, o.Price)
			} else {
				askPrices = append(askPrices, o.Price)
			}
		}
		level.Quantity += o.RemainingQuantity
	}

	sortPrices(askPrices, true)
	sortPrices(bidPrices, false)

	return Depth{
		Symbol: symbol,
		Asks:   accumulate(asks, askPrices),
		Bids:   accumulate(bids, bidPrices),
	}
}

func sortPrices(prices []decimal.Decimal, asc bool) {
	sort.Slice(prices, func(i, j int) bool {
		if asc {
			return prices[i].LessThan(prices[j])
		}
		return prices[i].GreaterThan(prices[j])
	})
}

func accumulate(levels map[string]*DepthLevel, prices []decimal.Decimal) []DepthLevel {
	out := make([]DepthLevel, 0, len(prices))
	var cumQty int64
	cumNotional := decimal.Zero
	for _, p := range prices {
		level := levels[p.String()]
		cumQty += level.Quantity
		cumNotional = cumNotional.Add(p.Mul(decimal.NewFromInt(level.Quantity)))
		level.CumulativeQuantity = cumQty
		level.CumulativeNotional = cumNotional
		out = append(out, *level)
	}
	return out
}

// Candle 一个固定时长区间的 OHLCV
type Candle struct {
	// 区间起始时间（Unix 秒）
	Time int64 `json:"time"`
	// 开盘价（区间首笔成交）
	Open decimal.Decimal `json:"open"`
	// 最高价
	High decimal.Decimal `json:"high"`
	// 最低价
	Low decimal.Decimal `json:"low"`
	// 收盘价（区间末笔成交）
	Close decimal.Decimal `json:"close"`
	// 成交量
	Volume int64 `json:"volume"`
}

// BuildCandles 将成交序列按固定时长分桶为 OHLCV。
// trades 需按成交时间升序；空桶继承前一桶收盘价（成交量为 0），序列内无空洞。
// to 为零值时序列止于最后一笔成交所在桶，否则向前填充到 to 所在桶。
func BuildCandles(trades []*Trade, to time.Time, bucket time.Duration) []Candle {
	if len(trades) == 0 || bucket <= 0 {
		return nil
	}

	start := trades[0].CreatedAt.Truncate(bucket)
	end := trades[len(trades)-1].CreatedAt.Truncate(bucket)
	if !to.IsZero() {
		if t := to.Truncate(bucket); t.After(end) {
			end = t
		}
	}

	var candles []Candle
	var lastClose decimal.Decimal
	i := 0
	for ts := start; !ts.After(end); ts = ts.Add(bucket) {
		next := ts.Add(bucket)
		c := Candle{Time: ts.Unix()}
		filled := false

		for i < len(trades) && trades[i].CreatedAt.Before(next) {
			p := trades[i].Price
			if !filled {
				c.Open, c.High, c.Low = p, p, p
				filled = true
			} else {
				if p.GreaterThan(c.High) {
					c.High = p
				}
				if p.LessThan(c.Low) {
					c.Low = p
				}
			}
			c.Close = p
			c.Volume += trades[i].Quantity
			i++
		}

		if !filled {
			c.Open, c.High, c.Low, c.Close = lastClose, lastClose, lastClose, lastClose
		}
		lastClose = c.Close
		candles = append(candles, c)
	}
	return candles
}

// Summary 24 小时滚动聚合
type Summary struct {
	// 成交额 Σ price×quantity
	Volume24h decimal.Decimal `json:"volume_24h"`
	// 成交量
	Quantity24h int64 `json:"quantity_24h"`
	// 区间最高价
	High24h decimal.Decimal `json:"high_24h"`
	// 区间最低价
	Low24h decimal.Decimal `json:"low_24h"`
}

// BuildSummary 聚合一组成交的成交额、成交量与最高/最低价
func BuildSummary(trades []*Trade) Summary {
	s := Summary{Volume24h: decimal.Zero, High24h: decimal.Zero, Low24h: decimal.Zero}
	for _, t := range trades {
		s.Volume24h = s.Volume24h.Add(t.Price.Mul(decimal.NewFromInt(t.Quantity)))
		s.Quantity24h += t.Quantity
		if s.High24h.IsZero() || t.Price.GreaterThan(s.High24h) {
			s.High24h = t.Price
		}
		if s.Low24h.IsZero() || t.Price.LessThan(s.Low24h) {
			s.Low24h = t.Price
		}
	}
	return s
}
