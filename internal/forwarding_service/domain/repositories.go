package domain

import (
	"context"

	"github.com/google/uuid"
)

// AttemptRepository persists the local attempt audit trail.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *AttemptRecord) error
	ListByTarget(ctx context.Context, targetID uuid.UUID, offset, limit int) ([]*AttemptRecord, error)
}
