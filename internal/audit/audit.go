package audit

import (
	"context"

	"go.uber.org/zap"
)

// Entry is one append-only audit trail record. Every privileged action
// (capacity override, pickup override, label reprint, supervisor logout)
// produces one.
type Entry struct {
	Action       string
	ActorID      int64
	ActorName    string
	TargetEntity string
	TargetID     int64
	Details      map[string]interface{}
}

// Sink receives audit entries. The real sink forwards to the external
// audit-log collaborator; recording must never fail the guarded action.
type Sink interface {
	Record(ctx context.Context, e Entry)
}

// ZapSink writes audit entries to the structured log. Used as a local
// fallback and in development.
type ZapSink struct {
	Logger *zap.Logger
}

func (s *ZapSink) Record(ctx context.Context, e Entry) {
	s.Logger.Info("audit",
		zap.String("action", e.Action),
		zap.Int64("actor_id", e.ActorID),
		zap.String("actor_name", e.ActorName),
		zap.String("target_entity", e.TargetEntity),
		zap.Int64("target_id", e.TargetID),
		zap.Any("details", e.Details),
	)
}

// NopSink discards entries. Test use only.
type NopSink struct{}

func (NopSink) Record(ctx context.Context, e Entry) {}
