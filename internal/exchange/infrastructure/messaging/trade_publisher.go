// Package messaging 成交事件的 Kafka 发布实现
package messaging

import (
	"context"
	"strconv"

	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/domain"
	"github.com/privx-exchange/privx-exchange-backend/pkg/mq"
)

// TradePublisher 将撮合成交事件发布到 Kafka
type TradePublisher struct {
	producer *mq.KafkaProducer
	topic    string
}

// NewTradePublisher 创建成交事件发布器
func NewTradePublisher(producer *mq.KafkaProducer, topic string) *TradePublisher {
	return &TradePublisher{producer: producer, topic: topic}
}

// PublishTradeMatched 发布一轮撮合产生的全部成交事件。
// 以交易对 ID 作为消息 key，保证同一交易对的事件有序
func (p *TradePublisher) PublishTradeMatched(ctx context.Context, events []domain.TradeMatchedEvent) error {
	if len(events) == 0 {
		return nil
	}

	keys := make([]string, 0, len(events))
	values := make([]interface{}, 0, len(events))
	for _, e := range events {
		keys = append(keys, strconv.FormatUint(e.TokenID, 10))
		values = append(values, e)
	}
	return p.producer.SendMessages(ctx, p.topic, keys, values)
}
