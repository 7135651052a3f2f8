package mq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/tuanvumaihuynh/product-catalog/pkg/ptr"
)

func TestBuildProduceRecord(t *testing.T) {
	rec := buildProduceRecord(ProduceMsg{
		Topic:        "product-created",
		Headers:      map[string]string{"productId": "1"},
		Payload:      []byte(`{"id":1}`),
		PartitionKey: ptr.New("1"),
	})

	assert.Equal(t, "product-created", rec.Topic)
	assert.Equal(t, []byte("1"), rec.Key)
	assert.Equal(t, []byte(`{"id":1}`), rec.Value)
	assert.Equal(t, []kgo.RecordHeader{{Key: "productId", Value: []byte("1")}}, rec.Headers)

	noKey := buildProduceRecord(ProduceMsg{Topic: "t"})
	assert.Nil(t, noKey.Key)
	assert.Empty(t, noKey.Headers)
}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage(&kgo.Record{
		Topic:   "product-updated",
		Key:     []byte("7"),
		Value:   []byte(`{}`),
		Headers: []kgo.RecordHeader{{Key: "messageId", Value: []byte("m-1")}},
	})

	assert.Equal(t, Message{
		Topic:   "product-updated",
		Key:     "7",
		Headers: map[string]string{"messageId": "m-1"},
		Payload: []byte(`{}`),
	}, msg)
}
