package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/product-catalog/internal/config"
	"github.com/tuanvumaihuynh/product-catalog/internal/model"
	"github.com/tuanvumaihuynh/product-catalog/internal/storage/mq"
	"github.com/tuanvumaihuynh/product-catalog/pkg/msgheader"
	"github.com/tuanvumaihuynh/product-catalog/pkg/ptr"
)

var _ Notifier = (*KafkaNotifier)(nil)

// KafkaNotifier publishes product events to one topic per event type.
// Each publish is bounded by cfg.PublishTimeout. Failures are returned in
// the receipt and left to the caller to log.
type KafkaNotifier struct {
	cfg      config.Notifier
	logger   *slog.Logger
	producer mq.Producer
	newID    func() string
}

func NewKafkaNotifier(cfg config.Notifier, logger *slog.Logger, producer mq.Producer) *KafkaNotifier {
	return &KafkaNotifier{
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "kafka_notifier")),
		producer: producer,
		newID:    uuid.NewString,
	}
}

func (n *KafkaNotifier) NotifyProductCreated(ctx context.Context, product model.Product) Receipt {
	return n.publish(ctx, TypeProductCreated, n.cfg.ProductCreatedTopic, product)
}

func (n *KafkaNotifier) NotifyProductUpdated(ctx context.Context, product model.Product) Receipt {
	return n.publish(ctx, TypeProductUpdated, n.cfg.ProductUpdatedTopic, product)
}

func (n *KafkaNotifier) publish(ctx context.Context, typ Type, topic string, product model.Product) Receipt {
	receipt := Receipt{
		Type:      typ,
		Topic:     topic,
		MessageID: n.newID(),
	}

	payload, err := json.Marshal(product)
	if err != nil {
		receipt.Err = fmt.Errorf("marshal product: %w", err)
		return receipt
	}

	productID := strconv.FormatInt(product.ID, 10)
	headers := msgheader.Build(ctx, map[string]string{
		HeaderMessageID:   receipt.MessageID,
		HeaderEventType:   string(typ),
		HeaderProductID:   productID,
		HeaderProductName: product.Name,
	})

	produceCtx := ctx
	if n.cfg.PublishTimeout > 0 {
		var cancel context.CancelFunc
		produceCtx, cancel = context.WithTimeout(ctx, n.cfg.PublishTimeout)
		defer cancel()
	}

	if err := n.producer.Produce(produceCtx, mq.ProduceMsg{
		Topic:        topic,
		Headers:      headers,
		Payload:      payload,
		PartitionKey: ptr.New(productID),
	}); err != nil {
		receipt.Err = fmt.Errorf("produce %s: %w", topic, err)
		return receipt
	}

	n.logger.InfoContext(ctx, "published product event",
		slog.String("event_type", string(typ)),
		slog.String("topic", topic),
		slog.String("message_id", receipt.MessageID),
		slog.Int64("product_id", product.ID),
	)

	return receipt
}
