package kafka

import (
	"Mosaic/internal/api/config"
	"context"
	"fmt"
	log "log/slog"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

const (
	EventMediaRegistered = "media.registered"
	EventMediaDeleted    = "media.deleted"
	EventPostRemoved     = "post.removed"
)

// Event 媒体与帖子生命周期事件
type Event struct {
	Type         string    `json:"type"`
	AccountID    uint64    `json:"account_id"`
	PostID       uint64    `json:"post_id"`
	MediaID      uint64    `json:"media_id,omitempty"`
	ProviderPath string    `json:"provider_path,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher 事件发布，失败只记录日志，不影响主流程
type Publisher interface {
	Publish(ctx context.Context, event *Event)
	Close() error
}

type SaramaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher kafka.enable 关闭时返回空实现
func NewPublisher(cfg config.KafkaConfig) (Publisher, error) {
	if !cfg.Enable {
		return NopPublisher{}, nil
	}
	producer, err := sarama.NewSyncProducer(cfg.Brokers, newSaramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return NewSaramaPublisher(producer, cfg.Topic), nil
}

func NewSaramaPublisher(producer sarama.SyncProducer, topic string) *SaramaPublisher {
	return &SaramaPublisher{producer: producer, topic: topic}
}

func (s *SaramaPublisher) Publish(ctx context.Context, event *Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.ErrorContext(ctx, "marshal event failed", "type", event.Type, "err", err)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(event.PostID, 10)),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(event.Type)},
		},
	}
	partition, offset, err := s.producer.SendMessage(msg)
	if err != nil {
		log.WarnContext(ctx, "publish event failed", "type", event.Type, "post_id", event.PostID, "err", err)
		return
	}
	log.InfoContext(ctx, "event published", "type", event.Type, "partition", partition, "offset", offset)
}

func (s *SaramaPublisher) Close() error {
	return s.producer.Close()
}

// NopPublisher 未启用 Kafka 时使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *Event) {}

func (NopPublisher) Close() error { return nil }
