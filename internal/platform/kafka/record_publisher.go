// Package kafka streams post records to a Kafka topic for downstream auditing.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"stock_bot/internal/feature/post/domain/entity"
)

// DefaultTopic はPostRecordを流すトピック名です。
const DefaultTopic = "stock_bot.posts"

// Config はKafkaライターの設定を保持します。
type Config struct {
	Brokers []string
	Topic   string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// RecordPublisher はPostRecordを1件ずつJSONメッセージとして送信します。キーは銘柄コードです。
type RecordPublisher struct {
	w messageWriter
}

// NewRecordPublisher は同期書き込みのkafka.Writerを生成します。
func NewRecordPublisher(cfg Config) *RecordPublisher {
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	return &RecordPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}
}

// Append はレコードを送信します。
func (p *RecordPublisher) Append(ctx context.Context, rec entity.PostRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal post record: %w", err)
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(rec.Symbol),
		Value: b,
		Time:  rec.Timestamp,
	})
}

// Close はライターを閉じ、未送信のメッセージをフラッシュします。
func (p *RecordPublisher) Close() error {
	return p.w.Close()
}
