// internal/service/inventory/infrastructure/kafka_alert_publisher.go
package infrastructure

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"vertex/internal/pkg/mq"
	"vertex/internal/service/inventory/application"
)

// KafkaAlertPublisher 把低库存告警发到 Kafka。
type KafkaAlertPublisher struct {
	writer *kafka.Writer
}

var _ application.AlertPublisher = (*KafkaAlertPublisher)(nil)

func NewKafkaAlertPublisher(writer *kafka.Writer) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{writer: writer}
}

func (p *KafkaAlertPublisher) PublishLowStock(ctx context.Context, alert application.LowStockAlert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return errors.Wrap(err, "marshal low-stock alert")
	}
	key := []byte(strconv.FormatUint(alert.ProductID, 10))
	return errors.Wrap(mq.ProduceMessage(ctx, p.writer, key, payload), "produce low-stock alert")
}
