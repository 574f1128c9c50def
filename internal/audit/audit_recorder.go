// Package audit emits audit events through the transactional outbox. The
// core does not store audit history; the sink consumes the topic.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Vishal6374/hr-harmony-sub000/internal/events"
	"github.com/Vishal6374/hr-harmony-sub000/internal/messaging/kafka"
	"github.com/Vishal6374/hr-harmony-sub000/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Entry struct {
	Action     string
	ActorID    string
	CompanyID  string
	EntityType string
	EntityID   string
	Detail     map[string]any
}

//go:generate mockgen -source=audit_recorder.go -destination=mock/audit_recorder_mock.go -package=mock
type Recorder interface {
	// Record enqueues the event inside the caller's transaction so the
	// audit trail commits or rolls back with the mutation it describes.
	Record(ctx context.Context, tx *sql.Tx, entry Entry) error
}

type recorder struct {
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewRecorder(outbox kafka.OutboxRepository, logger ...*zap.Logger) Recorder {
	l := zap.L().Named("audit.recorder")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit.recorder")
	}
	return &recorder{outbox: outbox, logger: l}
}

func (r *recorder) Record(ctx context.Context, tx *sql.Tx, entry Entry) error {
	evt := events.AuditEvent{
		EventType:  "audit.recorded",
		Action:     entry.Action,
		ActorID:    entry.ActorID,
		CompanyID:  entry.CompanyID,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Detail:     entry.Detail,
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	outboxEvent := kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: entry.EntityType,
		AggregateID:   entry.EntityID,
		EventType:     evt.EventType,
		Topic:         events.AuditTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}

	repo := r.outbox
	if tx != nil {
		repo = r.outbox.WithTx(tx)
	}
	if err := repo.Create(ctx, outboxEvent); err != nil {
		r.logger.Error("enqueue audit event failed",
			zap.String("action", entry.Action),
			zap.String("entity_id", entry.EntityID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
