package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/config"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/entities"

	"github.com/segmentio/kafka-go"
)

// Event — запись аудита одной смены статуса. Trigger позволяет отличать
// таймауты от решений мерчанта в аналитике.
type Event struct {
	OrderID string           `json:"order_id"`
	From    entities.Status  `json:"from"`
	To      entities.Status  `json:"to"`
	Trigger entities.Trigger `json:"trigger"`
	At      time.Time        `json:"at"`
}

type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewKafkaPublisher(logger *slog.Logger, cfg config.Kafka) *KafkaPublisher {
	return &KafkaPublisher{
		logger: logger.With(slog.String("component", "audit")),
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: cfg.BatchTimeout,
		},
	}
}

// Publish пишет событие с ключом по заказу, чтобы события одного заказа
// попадали в одну партицию и сохраняли порядок.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(e.OrderID),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish audit event: %w", err)
	}

	p.logger.DebugContext(ctx, "audit event published",
		slog.String("order_id", e.OrderID),
		slog.String("to", string(e.To)),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
