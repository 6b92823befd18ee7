package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rentalops/telephony_services/internal/forwarding_service/domain"
)

type pgAttemptRepository struct {
	db *pgxpool.Pool
}

// NewPgAttemptRepository creates the PostgreSQL implementation of AttemptRepository.
func NewPgAttemptRepository(db *pgxpool.Pool) domain.AttemptRepository {
	return &pgAttemptRepository{db: db}
}

func (r *pgAttemptRepository) Create(ctx context.Context, attempt *domain.AttemptRecord) error {
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO forwarding_attempts (id, target_id, carrier, transition, outcome,
		                                 code, failure_reason, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		attempt.ID, attempt.TargetID, attempt.Carrier, attempt.Transition, attempt.Outcome,
		attempt.Code, attempt.FailureReason, attempt.ActorID, attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert forwarding attempt: %w", err)
	}
	return nil
}

func (r *pgAttemptRepository) ListByTarget(ctx context.Context, targetID uuid.UUID, offset, limit int) ([]*domain.AttemptRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, target_id, carrier, transition, outcome, code, failure_reason, actor_id, created_at
		FROM forwarding_attempts
		WHERE target_id = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, targetID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query forwarding attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*domain.AttemptRecord
	for rows.Next() {
		a := &domain.AttemptRecord{}
		if err := rows.Scan(
			&a.ID, &a.TargetID, &a.Carrier, &a.Transition, &a.Outcome,
			&a.Code, &a.FailureReason, &a.ActorID, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan forwarding attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating forwarding attempts: %w", err)
	}
	return attempts, nil
}
