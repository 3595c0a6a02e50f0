package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/admin-api/internal/model"
	"github.com/salonhq/admin-api/internal/repository"
)

const eventExpiry = 24 * time.Hour

// Emitter writes booking lifecycle events to the outbox table. The
// worker's outbox processor publishes them to the broker; writes here
// share the caller's transaction boundary with the booking rows.
type Emitter struct {
	outboxRepo repository.OutboxRepository
}

func NewEmitter(outboxRepo repository.OutboxRepository) *Emitter {
	return &Emitter{outboxRepo: outboxRepo}
}

func (e *Emitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payloadJSON,
		Status:    string(model.OutboxStatusPending),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := e.outboxRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}

	return nil
}

// CleanupProcessedEvents removes processed events older than the
// retention window. Run periodically by the worker.
func (e *Emitter) CleanupProcessedEvents(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-eventExpiry)
	count, err := e.outboxRepo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup events: %w", err)
	}
	return count, nil
}
