package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/example/order-service/internal/config"
	"github.com/example/order-service/internal/domain"
	"github.com/example/order-service/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher emits an order-created event for every persisted order. Publish
// failures are reported to the caller but the caller treats them as
// non-fatal: the order is already saved.
type Publisher struct {
	writer  Writer
	logger  *zap.Logger
	metrics observability.Metrics
}

func NewPublisher(cfg config.Kafka, logger *zap.Logger, metrics observability.Metrics) *Publisher {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return NewPublisherWithWriter(writer, logger, metrics)
}

func NewPublisherWithWriter(writer Writer, logger *zap.Logger, metrics observability.Metrics) *Publisher {
	return &Publisher{
		writer:  writer,
		logger:  logger,
		metrics: metrics,
	}
}

func (p *Publisher) OrderCreated(ctx context.Context, order *domain.Order) error {
	value, err := json.Marshal(order)
	if err != nil {
		return err
	}

	start := time.Now()
	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(strconv.FormatInt(order.OrderID, 10)),
		Value: value,
		Time:  time.Now(),
	})
	durMs := float64(time.Since(start).Microseconds()) / 1000.0
	p.metrics.ObservePublish(durMs, err == nil)
	if err != nil {
		p.logger.Error("order event publish failed",
			zap.Int64("order_id", order.OrderID),
			zap.Error(err),
		)
		return err
	}

	p.logger.Debug("order event published",
		zap.Int64("order_id", order.OrderID),
		zap.Int("value_bytes", len(value)),
		zap.Float64("publish_ms", durMs),
	)
	return nil
}

func (p *Publisher) Close() error { return p.writer.Close() }
