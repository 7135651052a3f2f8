package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/product-catalog/internal/model"
)

var _ Notifier = (*LogNotifier)(nil)

// LogNotifier records product events in the log without any external I/O.
// It is used when no event channel is configured; the only failure it can
// report is an unencodable product.
type LogNotifier struct {
	logger  *slog.Logger
	marshal func(any) ([]byte, error)
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{
		logger:  logger.With(slog.String("component", "log_notifier")),
		marshal: json.Marshal,
	}
}

func (n *LogNotifier) NotifyProductCreated(ctx context.Context, product model.Product) Receipt {
	return n.record(ctx, TypeProductCreated, product)
}

func (n *LogNotifier) NotifyProductUpdated(ctx context.Context, product model.Product) Receipt {
	return n.record(ctx, TypeProductUpdated, product)
}

func (n *LogNotifier) record(ctx context.Context, typ Type, product model.Product) Receipt {
	receipt := Receipt{
		Type:      typ,
		MessageID: uuid.NewString(),
	}

	body, err := n.marshal(product)
	if err != nil {
		receipt.Err = fmt.Errorf("marshal product: %w", err)
		return receipt
	}

	n.logger.InfoContext(ctx, "product event recorded",
		slog.String("event_type", string(typ)),
		slog.String("message_id", receipt.MessageID),
		slog.Int64("product_id", product.ID),
		slog.String("product_name", product.Name),
		slog.String("body", string(body)),
	)

	return receipt
}
