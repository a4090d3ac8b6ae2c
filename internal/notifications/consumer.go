package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"playpark/internal/shared/config"
	"playpark/pkg/logger"

	"github.com/IBM/sarama"
)

// Consumer drains the SMS topic and delivers messages via the gateway.
type Consumer interface {
	Start(ctx context.Context, numWorkers int) error
	Stop() error
}

type kafkaConsumer struct {
	consumerGroup sarama.ConsumerGroup
	topics        []string
	sender        SMSSender
	logger        *logger.Logger
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

func NewKafkaConsumer(cfg config.KafkaConfig, sender SMSSender, log *logger.Logger) (Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = 30 * time.Second
	saramaConfig.Consumer.Group.Heartbeat.Interval = 3 * time.Second
	saramaConfig.Consumer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroup, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &kafkaConsumer{
		consumerGroup: consumerGroup,
		topics:        []string{cfg.SMSTopic},
		sender:        sender,
		logger:        log,
	}, nil
}

func (c *kafkaConsumer) Start(ctx context.Context, numWorkers int) error {
	ctx, c.cancel = context.WithCancel(ctx)

	go c.handleErrors()

	for i := 0; i < numWorkers; i++ {
		c.wg.Add(1)
		go func(workerID int) {
			defer c.wg.Done()
			c.runWorker(ctx, workerID)
		}(i)
	}
	return nil
}

func (c *kafkaConsumer) runWorker(ctx context.Context, workerID int) {
	handler := &smsHandler{sender: c.sender, logger: c.logger, workerID: workerID}

	for {
		select {
		case <-ctx.Done():
			return
		default:
			if err := c.consumerGroup.Consume(ctx, c.topics, handler); err != nil {
				c.logger.ErrorWithContext(ctx, "consumer worker error", err, map[string]interface{}{
					"worker": workerID,
				})
				time.Sleep(time.Second)
			}
		}
	}
}

func (c *kafkaConsumer) handleErrors() {
	for err := range c.consumerGroup.Errors() {
		c.logger.ErrorWithContext(context.Background(), "consumer group error", err, nil)
	}
}

func (c *kafkaConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	if err := c.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

type smsHandler struct {
	sender   SMSSender
	logger   *logger.Logger
	workerID int
}

func (h *smsHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *smsHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *smsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}
			h.process(session.Context(), message)
			// Delivery is best-effort: failed sends are logged and the
			// offset advances, never redelivered into a retry storm
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *smsHandler) process(ctx context.Context, message *sarama.ConsumerMessage) {
	var notification SMSNotification
	if err := json.Unmarshal(message.Value, &notification); err != nil {
		h.logger.ErrorWithContext(ctx, "failed to unmarshal sms notification", err, map[string]interface{}{
			"worker": h.workerID,
			"offset": message.Offset,
		})
		return
	}

	if err := h.sender.Send(ctx, notification.Phone, notification.Message); err != nil {
		h.logger.ErrorWithContext(ctx, "failed to deliver sms", err, map[string]interface{}{
			"worker":          h.workerID,
			"notification_id": notification.ID.String(),
		})
		return
	}

	h.logger.InfoWithContext(ctx, "sms delivered", map[string]interface{}{
		"worker":          h.workerID,
		"notification_id": notification.ID.String(),
	})
}
