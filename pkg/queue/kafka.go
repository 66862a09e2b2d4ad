package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type KafkaProducer struct {
	writer *kafka.Writer
}

type KafkaConsumer struct {
	reader *kafka.Reader
}

func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
		Async:    false,
	}

	return &KafkaProducer{writer: writer}
}

func NewKafkaConsumer(brokers []string, topic, groupID string) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: 1 * time.Second,
		StartOffset:    kafka.FirstOffset,
	})

	return &KafkaConsumer{reader: reader}
}

func (p *KafkaProducer) Publish(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	return p.writer.WriteMessages(ctx, message)
}

// Subscribe reads raw messages and hands them to the handler until the
// context is canceled. Handler errors are the handler's problem to log; a
// failed message is skipped, not retried.
func (c *KafkaConsumer) Subscribe(ctx context.Context, handler func(key string, value []byte) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			message, err := c.reader.ReadMessage(ctx)
			if err != nil {
				return fmt.Errorf("failed to read message: %w", err)
			}
			if err := handler(string(message.Key), message.Value); err != nil {
				continue
			}
		}
	}
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}

type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventUserFollowed   EventType = "user_followed"
	EventPostCreated    EventType = "post_created"
	EventPostUpdated    EventType = "post_updated"
	EventPostDeleted    EventType = "post_deleted"
	EventPostLiked      EventType = "post_liked"
	EventCommentCreated EventType = "comment_created"
)

// Event is the envelope for every message on the social events topic.
// ActorID is the user the event should be attributed to.
type Event struct {
	Type      EventType `json:"type"`
	ActorID   uint      `json:"actor_id"`
	PostID    uint      `json:"post_id,omitempty"`
	TargetID  uint      `json:"target_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
