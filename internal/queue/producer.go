package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"FlockCheck/internal/audit"
	"FlockCheck/internal/model"
	"FlockCheck/pkg/logger"
	"FlockCheck/storage/mq"
)

// Publisher pushes pager pages onto the broker for the worker to deliver.
type Publisher struct{}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) PublishPagerPage(ctx context.Context, msg model.PagerPageMessage) error {
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}
	if msg.RequestedAt == "" {
		msg.RequestedAt = time.Now().Format(time.RFC3339)
	}

	err := mq.PublishMessage(
		mq.PagerExchange,
		mq.PagerPageRoutingKey,
		msg,
	)
	if err != nil {
		logger.Logger.Error("Failed to publish pager page message",
			zap.String("message_id", msg.MessageID),
			zap.Int64("attendance_id", msg.AttendanceID),
			zap.Int("pager_number", msg.PagerNumber),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published pager page message",
		zap.String("message_id", msg.MessageID),
		zap.Int64("attendance_id", msg.AttendanceID),
		zap.Int("pager_number", msg.PagerNumber),
	)

	return nil
}

// PublishAuditEvent forwards one audit trail entry to the events exchange.
func PublishAuditEvent(msg model.AuditEventMessage) error {
	if msg.EventKey == "" {
		msg.EventKey = uuid.NewString()
	}
	if msg.OccurredAt == "" {
		msg.OccurredAt = time.Now().Format(time.RFC3339)
	}

	routingKey := fmt.Sprintf("audit.event.%s", msg.Action)

	err := mq.PublishMessage(
		mq.EventExchange,
		routingKey,
		msg,
	)
	if err != nil {
		logger.Logger.Error("Failed to publish audit event",
			zap.String("event_key", msg.EventKey),
			zap.String("action", msg.Action),
			zap.Int64("actor_id", msg.ActorID),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// MQSink implements audit.Sink over the events exchange, with the structured
// log as fallback. Audit recording must never fail the guarded action, so
// publish failures are logged and swallowed.
type MQSink struct{}

func (MQSink) Record(ctx context.Context, e audit.Entry) {
	msg := model.AuditEventMessage{
		Action:       e.Action,
		ActorID:      e.ActorID,
		ActorName:    e.ActorName,
		TargetEntity: e.TargetEntity,
		TargetID:     e.TargetID,
		Payload:      e.Details,
		OccurredAt:   time.Now().Format(time.RFC3339),
	}

	if err := PublishAuditEvent(msg); err != nil {
		logger.Logger.Warn("Audit event dropped to log fallback",
			zap.String("action", e.Action),
			zap.Int64("actor_id", e.ActorID),
			zap.Int64("target_id", e.TargetID),
			zap.Any("details", e.Details),
		)
	}
}
