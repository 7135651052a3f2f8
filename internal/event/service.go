package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/product-catalog/internal/config"
	"github.com/tuanvumaihuynh/product-catalog/internal/model"
	"github.com/tuanvumaihuynh/product-catalog/internal/storage/mq"
)

// Service tails the product event topics and logs what it receives.
type Service struct {
	cfg        config.Notifier
	logger     *slog.Logger
	mqConsumer mq.Consumer
}

// New creates a new event service.
func New(
	cfg config.Notifier,
	logger *slog.Logger,
	mqConsumer mq.Consumer,
) *Service {
	return &Service{
		cfg:        cfg,
		logger:     logger.With(slog.String("service", "event")),
		mqConsumer: mqConsumer,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	topics := map[string]Type{
		s.cfg.ProductCreatedTopic: TypeProductCreated,
		s.cfg.ProductUpdatedTopic: TypeProductUpdated,
	}

	for topic, typ := range topics {
		if err := s.mqConsumer.RegisterHandler(topic, func(ctx context.Context, msg mq.Message) error {
			return s.handleProductEvent(ctx, typ, msg)
		}); err != nil {
			return nil, fmt.Errorf("register %s handler: %w", typ, err)
		}
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

func (s *Service) handleProductEvent(ctx context.Context, typ Type, msg mq.Message) error {
	var product model.Product
	if err := json.Unmarshal(msg.Payload, &product); err != nil {
		return fmt.Errorf("unmarshal %s event: %w", typ, err)
	}

	s.logger.InfoContext(ctx, "handling product event",
		slog.String("event_type", string(typ)),
		slog.String("topic", msg.Topic),
		slog.String("message_id", msg.Headers[HeaderMessageID]),
		slog.Int64("product_id", product.ID),
		slog.String("product_name", product.Name),
		slog.String("sku", product.Sku),
	)

	return nil
}
