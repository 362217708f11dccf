package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Envelope(t *testing.T) {
	ev := New(OrderCreated, map[string]any{"order_id": 5})

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, OrderCreated, ev.Type)
	assert.False(t, ev.OccurredAt.IsZero())

	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "order_created", decoded["type"])
	assert.EqualValues(t, 5, decoded["payload"].(map[string]any)["order_id"])
}

func TestEmit_Recorder(t *testing.T) {
	rec := &Recorder{}
	Emit(context.Background(), rec, TopicProducts, "7", New(ProductCreated, nil))
	Emit(context.Background(), nil, TopicProducts, "7", New(ProductCreated, nil))

	got := rec.Events()
	require.Len(t, got, 1)
	assert.Equal(t, TopicProducts, got[0].Topic)
	assert.Equal(t, "7", got[0].Key)
	assert.Equal(t, []string{ProductCreated}, rec.Types())
}

func TestNewPublisher(t *testing.T) {
	_, isNop := NewPublisher(nil).(Nop)
	assert.True(t, isNop)

	p := NewPublisher([]string{"localhost:9092"})
	_, isKafka := p.(*KafkaPublisher)
	assert.True(t, isKafka)
	require.NoError(t, p.Close())
}
