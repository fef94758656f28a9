// pkg/kafka/user_producer.go
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"user-service/internal/usecase"

	"github.com/IBM/sarama"
)

const (
	TopicUserRegistration = "user.registration"
)

// RegistrationEventProducer publishes registration analytics events.
type RegistrationEventProducer struct {
	producer sarama.SyncProducer
}

func NewRegistrationEventProducer(brokers []string) (*RegistrationEventProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	return &RegistrationEventProducer{producer: producer}, nil
}

// PublishRegistration sends a registration event to Kafka, partitioned by
// request ID.
func (p *RegistrationEventProducer) PublishRegistration(ctx context.Context, msg *usecase.RegistrationEventMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	kafkaMsg := &sarama.ProducerMessage{
		Topic: TopicUserRegistration,
		Key:   sarama.StringEncoder(msg.RequestID),
		Value: sarama.ByteEncoder(data),
	}

	if _, _, err := p.producer.SendMessage(kafkaMsg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (p *RegistrationEventProducer) Close() error {
	return p.producer.Close()
}
