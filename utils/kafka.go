package utils

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

var kafkaWriter *kafka.Writer

// NotificationMessage is the payload carried on the notification bus.
// Producers are the event and approval workflows; the consumer in the
// notification package materializes these into in-app notifications.
type NotificationMessage struct {
	Type      string `json:"type"`    // event_submitted, event_approved, event_rejected
	ForRole   string `json:"forRole"` // target role name, empty when UserID is set
	UserID    uint   `json:"userId"`  // target recipient, 0 for role broadcasts
	EventID   uint   `json:"eventId"`
	EventName string `json:"eventName"`
	Message   string `json:"message"`
}

// InitializeKafka sets up the shared writer. Kafka being unreachable is not
// fatal: notifications degrade to direct writes.
func InitializeKafka() {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		log.Println("ℹ️ KAFKA_BROKERS not set, notification bus disabled")
		return
	}

	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "event-notifications"
	}

	kafkaWriter = &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	log.Printf("✅ Kafka writer initialized (topic: %s)", topic)
}

// IsKafkaEnabled reports whether the bus writer is available.
func IsKafkaEnabled() bool {
	return kafkaWriter != nil
}

// PublishNotification writes a message to the bus. Best-effort: errors are
// logged, never propagated to the caller's primary operation.
func PublishNotification(msg NotificationMessage) {
	if kafkaWriter == nil {
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("⚠️ Kafka payload marshal failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := kafkaWriter.WriteMessages(ctx, kafka.Message{Value: payload}); err != nil {
		log.Printf("⚠️ Kafka publish failed: %v", err)
	}
}

// NewKafkaReader returns a reader on the notification topic for the consumer.
func NewKafkaReader() *kafka.Reader {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		return nil
	}

	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "event-notifications"
	}

	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(brokers, ","),
		Topic:    topic,
		GroupID:  "notification-service",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}
