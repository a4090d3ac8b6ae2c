package notifications

import (
	"context"

	"playpark/pkg/logger"
)

// Dispatcher enqueues outbound SMS notifications. Delivery is best-effort:
// callers log failures and move on, they never roll back on a send error.
type Dispatcher interface {
	EnqueueSMS(ctx context.Context, phone, message string) error
	Close() error
}

// logDispatcher is the fallback when Kafka is disabled: notifications are
// logged instead of delivered, which keeps local development broker-free.
type logDispatcher struct {
	logger      *logger.Logger
	countryCode string
}

func NewLogDispatcher(log *logger.Logger, countryCode string) Dispatcher {
	return &logDispatcher{logger: log, countryCode: countryCode}
}

func (d *logDispatcher) EnqueueSMS(ctx context.Context, phone, message string) error {
	d.logger.InfoWithContext(ctx, "sms dispatch (log only)", map[string]interface{}{
		"phone":   NormalizePhone(phone, d.countryCode),
		"message": message,
	})
	return nil
}

func (d *logDispatcher) Close() error {
	return nil
}
