package event

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-catalog/internal/config"
	"github.com/tuanvumaihuynh/product-catalog/internal/model"
	"github.com/tuanvumaihuynh/product-catalog/internal/storage/mq"
	"github.com/tuanvumaihuynh/product-catalog/pkg/correlationid"
)

type fakeProducer struct {
	msgs []mq.ProduceMsg
	err  error
}

func (p *fakeProducer) Produce(_ context.Context, msg mq.ProduceMsg) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *fakeProducer) Ping(context.Context) error { return p.err }

// stalledProducer never hears back from the broker and only returns once
// its context ends.
type stalledProducer struct{}

func (stalledProducer) Produce(ctx context.Context, _ mq.ProduceMsg) error {
	<-ctx.Done()
	return ctx.Err()
}

func (stalledProducer) Ping(context.Context) error { return nil }

var testCfg = config.Notifier{
	Enabled:             true,
	ProductCreatedTopic: "product-created",
	ProductUpdatedTopic: "product-updated",
	PublishTimeout:      time.Second,
}

func testProduct() model.Product {
	return model.Product{
		ID:            7,
		Name:          "Widget",
		Price:         decimal.RequireFromString("9.99"),
		Color:         "Red",
		Sku:           "W-1",
		StockQuantity: 5,
		CreatedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestKafkaNotifier(t *testing.T) {
	t.Run("Should publish created event with headers and key", func(t *testing.T) {
		producer := &fakeProducer{}
		n := NewKafkaNotifier(testCfg, discardLogger(), producer)
		n.newID = func() string { return "msg-1" }

		ctx := correlationid.NewContext(context.Background(), "corr-1")
		receipt := n.NotifyProductCreated(ctx, testProduct())

		require.False(t, receipt.Failed())
		assert.Equal(t, TypeProductCreated, receipt.Type)
		assert.Equal(t, "product-created", receipt.Topic)
		assert.Equal(t, "msg-1", receipt.MessageID)

		require.Len(t, producer.msgs, 1)
		msg := producer.msgs[0]
		assert.Equal(t, "product-created", msg.Topic)
		require.NotNil(t, msg.PartitionKey)
		assert.Equal(t, "7", *msg.PartitionKey)
		assert.Equal(t, "msg-1", msg.Headers[HeaderMessageID])
		assert.Equal(t, "7", msg.Headers[HeaderProductID])
		assert.Equal(t, "Widget", msg.Headers[HeaderProductName])
		assert.Equal(t, "ProductCreated", msg.Headers[HeaderEventType])
		assert.Equal(t, "corr-1", msg.Headers[correlationid.Header])

		var body map[string]any
		require.NoError(t, json.Unmarshal(msg.Payload, &body))
		assert.Equal(t, "W-1", body["sku"])
		assert.Equal(t, 9.99, body["price"])
	})

	t.Run("Should route updated event to its own topic", func(t *testing.T) {
		producer := &fakeProducer{}
		n := NewKafkaNotifier(testCfg, discardLogger(), producer)

		receipt := n.NotifyProductUpdated(context.Background(), testProduct())

		require.False(t, receipt.Failed())
		require.Len(t, producer.msgs, 1)
		assert.Equal(t, "product-updated", producer.msgs[0].Topic)
		assert.NotEmpty(t, receipt.MessageID)
	})

	t.Run("Should surface produce failure in the receipt", func(t *testing.T) {
		brokerErr := errors.New("broker unavailable")
		n := NewKafkaNotifier(testCfg, discardLogger(), &fakeProducer{err: brokerErr})

		receipt := n.NotifyProductCreated(context.Background(), testProduct())

		assert.True(t, receipt.Failed())
		assert.ErrorIs(t, receipt.Err, brokerErr)
	})

	t.Run("Should leave failure logging to the caller", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		n := NewKafkaNotifier(testCfg, logger, &fakeProducer{err: errors.New("broker unavailable")})

		receipt := n.NotifyProductUpdated(context.Background(), testProduct())

		require.True(t, receipt.Failed())
		assert.Empty(t, buf.String())
	})

	t.Run("Should give up when the broker does not answer in time", func(t *testing.T) {
		cfg := testCfg
		cfg.PublishTimeout = 50 * time.Millisecond
		n := NewKafkaNotifier(cfg, discardLogger(), stalledProducer{})

		start := time.Now()
		receipt := n.NotifyProductCreated(context.Background(), testProduct())

		assert.Less(t, time.Since(start), 2*time.Second)
		require.True(t, receipt.Failed())
		assert.ErrorIs(t, receipt.Err, context.DeadlineExceeded)
		assert.Equal(t, "product-created", receipt.Topic)
	})
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	created := n.NotifyProductCreated(context.Background(), testProduct())
	updated := n.NotifyProductUpdated(context.Background(), testProduct())

	assert.False(t, created.Failed())
	assert.False(t, updated.Failed())
	assert.Equal(t, TypeProductUpdated, updated.Type)
	assert.Contains(t, buf.String(), `"product_name":"Widget"`)
	assert.Contains(t, buf.String(), `"event_type":"ProductCreated"`)
}

func TestLogNotifierMarshalFailure(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))
	encodeErr := errors.New("unsupported value")
	n.marshal = func(any) ([]byte, error) { return nil, encodeErr }

	receipt := n.NotifyProductCreated(context.Background(), testProduct())

	require.True(t, receipt.Failed())
	assert.ErrorIs(t, receipt.Err, encodeErr)
	assert.Empty(t, buf.String())
}
