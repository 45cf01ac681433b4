package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"raffler/domain/entities"
)

const drawColumns = `id, scheduled_at, finalized, first_prize, second_prize, third_prize,
	rule_set, finalized_at, created_at`

// DrawRepository implements draw data access
type DrawRepository struct {
	q Queryer
}

// NewDrawRepository creates a draw repository on a handle or transaction
func NewDrawRepository(q Queryer) *DrawRepository {
	return &DrawRepository{q: q}
}

// GetByID retrieves a draw by its ID
func (r *DrawRepository) GetByID(ctx context.Context, id int64) (*entities.Draw, error) {
	var draw entities.Draw
	err := r.q.GetContext(ctx, &draw, `SELECT `+drawColumns+` FROM draws WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draw by ID %d: %w", id, err)
	}
	return &draw, nil
}

// GetByIDForUpdate retrieves a draw inside the current write transaction.
// Transactions begin IMMEDIATE, so the database write lock is already held.
func (r *DrawRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Draw, error) {
	return r.GetByID(ctx, id)
}

// Create inserts a new unfinalized draw
func (r *DrawRepository) Create(ctx context.Context, draw *entities.Draw) error {
	createdAt := time.Now().UTC()
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO draws (scheduled_at, created_at) VALUES (?, ?)`,
		formatTime(draw.ScheduledAt), formatTime(createdAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create draw: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read draw ID: %w", err)
	}
	draw.ID = id
	draw.CreatedAt = createdAt
	return nil
}

// Finalize stores the winning numbers and the finalized flag in one statement
func (r *DrawRepository) Finalize(ctx context.Context, draw *entities.Draw) error {
	numbers, ok := draw.WinningNumbers()
	if !ok {
		return fmt.Errorf("draw %d has no winning numbers to store", draw.ID)
	}

	query := `
		UPDATE draws
		SET finalized = 1,
		    first_prize = ?,
		    second_prize = ?,
		    third_prize = ?,
		    rule_set = ?,
		    finalized_at = ?
		WHERE id = ?
	`

	result, err := r.q.ExecContext(ctx, query,
		numbers.First,
		numbers.Second,
		numbers.Third,
		draw.RuleSet,
		formatNullTime(draw.FinalizedAt),
		draw.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize draw %d: %w", draw.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finalize draw %d: %w", draw.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("draw with ID %d not found", draw.ID)
	}
	return nil
}

// ListFinalized returns finalized draws, most recent first
func (r *DrawRepository) ListFinalized(ctx context.Context) ([]*entities.Draw, error) {
	var draws []*entities.Draw
	err := r.q.SelectContext(ctx, &draws, `SELECT `+drawColumns+`
		FROM draws
		WHERE finalized = 1
		ORDER BY scheduled_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get finalized draws: %w", err)
	}
	return draws, nil
}

// ListPendingResults returns unfinalized draws scheduled at or before the given time
func (r *DrawRepository) ListPendingResults(ctx context.Context, before time.Time) ([]*entities.Draw, error) {
	var draws []*entities.Draw
	err := r.q.SelectContext(ctx, &draws, `SELECT `+drawColumns+`
		FROM draws
		WHERE finalized = 0
		  AND scheduled_at <= ?
		ORDER BY scheduled_at ASC, id ASC`, formatTime(before))
	if err != nil {
		return nil, fmt.Errorf("failed to get pending draws: %w", err)
	}
	return draws, nil
}
