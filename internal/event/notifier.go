package event

import (
	"context"

	"github.com/tuanvumaihuynh/product-catalog/internal/model"
)

// Type names the kind of a product event.
type Type string

const (
	TypeProductCreated Type = "ProductCreated"
	TypeProductUpdated Type = "ProductUpdated"
)

// Message header keys attached to every product event.
const (
	HeaderMessageID   = "messageId"
	HeaderEventType   = "eventType"
	HeaderProductID   = "productId"
	HeaderProductName = "productName"
)

// Receipt is the outcome of a single notification. Err is set when the
// event could not be delivered; callers decide whether that matters.
type Receipt struct {
	Type      Type
	Topic     string
	MessageID string
	Err       error
}

// Failed reports whether the notification was not delivered.
func (r Receipt) Failed() bool {
	return r.Err != nil
}

// Notifier announces product mutations to the outside world.
type Notifier interface {
	NotifyProductCreated(ctx context.Context, product model.Product) Receipt
	NotifyProductUpdated(ctx context.Context, product model.Product) Receipt
}
