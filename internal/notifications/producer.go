package notifications

import (
	"context"
	"fmt"
	"time"

	"playpark/internal/shared/config"
	"playpark/pkg/logger"

	"github.com/IBM/sarama"
)

// KafkaDispatcher publishes SMS notifications to Kafka for asynchronous
// delivery by the consumer workers.
type KafkaDispatcher struct {
	producer    sarama.SyncProducer
	topic       string
	countryCode string
	logger      *logger.Logger
}

func NewKafkaDispatcher(cfg config.KafkaConfig, smsCfg config.SMSConfig, log *logger.Logger) (*KafkaDispatcher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Timeout = 10 * time.Second
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1

	// Hash partitioner keeps each recipient's messages ordered
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &KafkaDispatcher{
		producer:    producer,
		topic:       cfg.SMSTopic,
		countryCode: smsCfg.CountryCode,
		logger:      log,
	}, nil
}

func (d *KafkaDispatcher) EnqueueSMS(ctx context.Context, phone, message string) error {
	notification := NewSMSNotification(phone, message, d.countryCode)
	notification.Status = SMSStatusQueued
	notification.UpdatedAt = time.Now()

	payload, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal sms notification: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: d.topic,
		Key:   sarama.StringEncoder(notification.GetPartitionKey()),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("notification_id"), Value: []byte(notification.ID.String())},
			{Key: []byte("created_at"), Value: []byte(notification.CreatedAt.Format(time.RFC3339))},
		},
		Timestamp: notification.CreatedAt,
	}

	partition, offset, err := d.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to publish sms notification: %w", err)
	}

	d.logger.InfoWithContext(ctx, "sms notification queued", map[string]interface{}{
		"notification_id": notification.ID.String(),
		"partition":       partition,
		"offset":          offset,
	})
	return nil
}

func (d *KafkaDispatcher) Close() error {
	if d.producer != nil {
		if err := d.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}
