package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"FlockCheck/internal/cache"
	"FlockCheck/internal/model"
	"FlockCheck/pkg/errors"
	"FlockCheck/pkg/logger"
	"FlockCheck/pkg/metrics"
	"FlockCheck/pkg/sms"
	"FlockCheck/storage/mq"
)

// StartPagerPageConsumer delivers pager pages to guardians by SMS.
// Message ids are claimed in Redis before sending so broker redeliveries do
// not page the same guardian twice.
func StartPagerPageConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.PagerPageMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal pager page message: %w", err)
		}

		claimed, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
			// Claim check failed; carry on and risk a duplicate page rather
			// than dropping the message.
		} else if !claimed {
			logger.Logger.Info("Message already processed or being processed, skipping",
				zap.String("message_id", msg.MessageID),
				zap.Int64("attendance_id", msg.AttendanceID),
			)
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}

		logger.Logger.Info("Processing pager page",
			zap.String("message_id", msg.MessageID),
			zap.Int64("attendance_id", msg.AttendanceID),
			zap.Int("pager_number", msg.PagerNumber),
		)

		_, err = sms.SendPage(ctx, msg.GuardianPhone, msg.PagerNumber, msg.LocationName)
		if err != nil {
			if sms.IsNonRetryable(err) {
				// Bad template or signature config; retrying cannot help.
				metrics.RecordPagerPage(ctx, "failed")
				if markErr := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); markErr != nil {
					logger.Logger.Warn("Failed to mark failed page as processed",
						zap.String("message_id", msg.MessageID),
						zap.Error(markErr),
					)
				}
				return &errors.SkipMessageError{Reason: fmt.Sprintf("Non-retryable SMS failure: %v", err)}
			}

			cache.UnmarkMessageProcessing(ctx, msg.MessageID)
			return fmt.Errorf("failed to send page SMS: %w", err)
		}

		metrics.RecordPagerPage(ctx, "delivered")

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.PagerPageQueue,
		ConsumerTag:   "pager_page_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// StartAuditEventConsumer drains the audit queue into the structured log.
// This stands in for the external audit collaborator; the queue decouples it
// from the request path either way.
func StartAuditEventConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.AuditEventMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal audit event: %w", err)
		}

		logger.Logger.Info("audit",
			zap.String("event_key", msg.EventKey),
			zap.String("action", msg.Action),
			zap.Int64("actor_id", msg.ActorID),
			zap.String("actor_name", msg.ActorName),
			zap.String("target_entity", msg.TargetEntity),
			zap.Int64("target_id", msg.TargetID),
			zap.String("occurred_at", msg.OccurredAt),
			zap.Any("payload", msg.Payload),
		)

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.AuditEventQueue,
		ConsumerTag:   "audit_event_consumer",
		PrefetchCount: 50,
		Handler:       handler,
	})
}

// StartAllConsumers blocks until every consumer loop exits.
func StartAllConsumers(ctx context.Context) {
	var wg sync.WaitGroup

	consumers := []struct {
		name     string
		consumer func(context.Context) error
	}{
		{"pager_page", StartPagerPageConsumer},
		{"audit_event", StartAuditEventConsumer},
	}

	for _, c := range consumers {
		wg.Add(1)
		go func(name string, consumer func(context.Context) error) {
			defer wg.Done()

			logger.Logger.Info("Starting consumer",
				zap.String("consumer_name", name),
			)

			if err := consumer(ctx); err != nil {
				logger.Logger.Error("Consumer exited with error",
					zap.String("consumer_name", name),
					zap.Error(err),
				)
			}
		}(c.name, c.consumer)
	}

	wg.Wait()
}
