package msgheader

import (
	"context"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/tuanvumaihuynh/product-catalog/pkg/correlationid"
)

// Build creates a headers map with trace context and correlation ID injected from context.
// Extra entries are copied on top and win over injected ones.
func Build(ctx context.Context, extra map[string]string) map[string]string {
	headers := make(map[string]string, len(extra)+3)

	propagator := otel.GetTextMapPropagator()
	propagator.Inject(ctx, propagation.MapCarrier(headers))

	if correlationID, ok := correlationid.FromContext(ctx); ok {
		headers[correlationid.Header] = correlationID
	}

	for k, v := range extra {
		headers[k] = v
	}

	return headers
}

// FromRecord converts Kafka record headers into a map. Later duplicates win.
func FromRecord(rec *kgo.Record) map[string]string {
	headers := make(map[string]string, len(rec.Headers))
	for _, h := range rec.Headers {
		headers[h.Key] = string(h.Value)
	}
	return headers
}

// ExtractContext extracts trace context and correlation ID from headers map and injects them into context.
func ExtractContext(ctx context.Context, headers map[string]string) context.Context {
	propagator := otel.GetTextMapPropagator()
	ctx = propagator.Extract(ctx, propagation.MapCarrier(headers))

	if correlationID, ok := headers[correlationid.Header]; ok {
		ctx = correlationid.NewContext(ctx, correlationID)
	}

	return ctx
}
