// internal/service/order/infrastructure/kafka_publisher.go
package infrastructure

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"vertex/internal/pkg/mq"
	"vertex/internal/service/order/application"
	"vertex/internal/service/order/domain"
)

// KafkaEventPublisher 把 OrderPlaced 事件发到 Kafka。
// 以 UserID 作 key，同一用户的订单事件保持分区内有序。
type KafkaEventPublisher struct {
	writer *kafka.Writer
}

var _ application.EventPublisher = (*KafkaEventPublisher)(nil)

func NewKafkaEventPublisher(writer *kafka.Writer) *KafkaEventPublisher {
	return &KafkaEventPublisher{writer: writer}
}

func (p *KafkaEventPublisher) PublishOrderPlaced(ctx context.Context, event *domain.OrderPlaced) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal order placed event")
	}
	return errors.Wrap(mq.ProduceMessage(ctx, p.writer, []byte(event.UserID), payload), "produce order placed event")
}
