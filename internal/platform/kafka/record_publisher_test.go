package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_bot/internal/feature/post/domain/entity"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestRecordPublisher_Append(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	p := &RecordPublisher{w: w}
	ts := time.Date(2025, 1, 15, 15, 0, 0, 0, time.UTC)

	rec := entity.PostRecord{
		CycleID:       "cycle-1",
		Timestamp:     ts,
		Symbol:        "AAPL",
		Kind:          entity.KindPhoto,
		Price:         decimal.RequireFromString("153.00"),
		PercentChange: 2,
		Caption:       "AAPL at $153.00",
		Status:        entity.StatusSuccess,
	}
	require.NoError(t, p.Append(context.Background(), rec))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "AAPL", string(msg.Key))
	assert.Equal(t, ts, msg.Time)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "cycle-1", got["cycle_id"])
	assert.Equal(t, "photo", got["kind"])
	assert.Equal(t, "153", got["price"])
	assert.Equal(t, "success", got["status"])
	assert.NotContains(t, got, "error_message")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestRecordPublisher_Append_WriteError(t *testing.T) {
	t.Parallel()

	p := &RecordPublisher{w: &fakeWriter{err: errors.New("broker unavailable")}}
	err := p.Append(context.Background(), entity.PostRecord{Symbol: "AAPL"})
	assert.EqualError(t, err, "broker unavailable")
}

func TestNewRecordPublisher_DefaultTopic(t *testing.T) {
	t.Parallel()

	p := NewRecordPublisher(Config{Brokers: []string{"localhost:9092"}})
	w, ok := p.w.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, DefaultTopic, w.Topic)
}
